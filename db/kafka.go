package db

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/twmb/franz-go/pkg/kgo"
)

const DefaultKafkaTopic = "pairdist.result"

// Results are published CBOR-encoded, keyed by run id.  The client is thread-safe.

type Kafka struct {
	client *kgo.Client
	topic  string
}

var _ = Sink((*Kafka)(nil))

// The client connects lazily, so an unreachable broker shows up as an error from Store.

func OpenKafka(broker, topic string) (*Kafka, error) {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	cl, err := kgo.NewClient(kgo.SeedBrokers(broker))
	if err != nil {
		return nil, err
	}
	return &Kafka{client: cl, topic: topic}, nil
}

func newRecord(topic string, r *Result) (*kgo.Record, error) {
	payload, err := cbor.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(r.RunId),
		Value: payload,
	}, nil
}

func (k *Kafka) Store(cx context.Context, r *Result) error {
	rec, err := newRecord(k.topic, r)
	if err != nil {
		return err
	}
	if err := k.client.ProduceSync(cx, rec).FirstErr(); err != nil {
		return fmt.Errorf("%s: Failed to publish result: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	k.client.Close()
	return nil
}
