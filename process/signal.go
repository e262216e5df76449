package process

import (
	"os"
	"os/signal"
)

// Deliver the signals on the returned channel until stop is called.  While this is active the
// signals do not have their default effect.

func NotifySignals(signals ...os.Signal) (incoming <-chan os.Signal, stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	return ch, func() { signal.Stop(ch) }
}
