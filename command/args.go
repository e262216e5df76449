package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"

	. "pairdist/common"
	"pairdist/db"
	"pairdist/status"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -v and -verbose

type VerboseArgs struct {
	Verbose bool
}

func (va *VerboseArgs) Add(fs *flag.FlagSet) {
	fs.BoolVar(&va.Verbose, "v", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&va.Verbose, "verbose", false, "Print verbose diagnostics to stderr")
}

func (va *VerboseArgs) Validate() error {
	if va.Verbose {
		Log.LowerLevelTo(status.LogLevelInfo)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -fmt, the output format.  The first of the allowed formats is the default.

type FormatArgs struct {
	Fmt     string
	allowed []string
}

func NewFormatArgs(allowed ...string) FormatArgs {
	return FormatArgs{Fmt: allowed[0], allowed: allowed}
}

func (fa *FormatArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&fa.Fmt, "fmt", fa.allowed[0],
		"Output `format`, one of "+strings.Join(fa.allowed, ", "))
}

func (fa *FormatArgs) Validate() error {
	if !slices.Contains(fa.allowed, fa.Fmt) {
		return fmt.Errorf("Bad -fmt value %q, allowed are %s", fa.Fmt, strings.Join(fa.allowed, ", "))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Where results are stored after reporting.  All of these may be defaulted from the [store]
// section of the config file.

type SinkArgs struct {
	HistoryDir  string
	DatabaseURI string
	KafkaBroker string
	KafkaTopic  string
}

func (sa *SinkArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&sa.HistoryDir, "history-dir", "", "Store results in the history database in `directory`")
	fs.StringVar(&sa.DatabaseURI, "database-uri", "", "Store results in the PostgreSQL database at `uri`")
	fs.StringVar(&sa.KafkaBroker, "kafka-broker", "", "Publish results to the Kafka broker at `host:port`")
	fs.StringVar(&sa.KafkaTopic, "kafka-topic", "",
		"Publish results on `topic` [default: "+db.DefaultKafkaTopic+"]")
}

func (sa *SinkArgs) Validate() error {
	ApplyDefault(&sa.HistoryDir, StoreHistoryDir)
	ApplyDefault(&sa.DatabaseURI, StoreDatabaseURI)
	ApplyDefault(&sa.KafkaBroker, StoreKafkaBroker)
	ApplyDefault(&sa.KafkaTopic, StoreKafkaTopic)
	if sa.KafkaTopic != "" && sa.KafkaBroker == "" {
		return errors.New("-kafka-topic requires -kafka-broker")
	}
	return nil
}

func (sa *SinkArgs) OpenSinks(cx context.Context) (db.Sinks, error) {
	return db.OpenSinks(cx, sa.HistoryDir, sa.DatabaseURI, sa.KafkaBroker, sa.KafkaTopic)
}
