package monitor

import (
	"os"
	"os/signal"

	"go.uber.org/atomic"
)

// StopFlag is set once to end the poll loop. The loop only looks at it at the
// top of a cycle.
type StopFlag struct {
	stopped *atomic.Bool
}

// NewStopFlag returns an unset flag
func NewStopFlag() *StopFlag {
	return &StopFlag{stopped: atomic.NewBool(false)}
}

// Stop sets the flag
func (s *StopFlag) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop was called
func (s *StopFlag) Stopped() bool {
	return s.stopped.Load()
}

// NotifyOnSignals sets the flag when one of sigs arrives. The handler does
// nothing else. The returned func stops the notification.
func NotifyOnSignals(stop *StopFlag, sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case <-ch:
			stop.Stop()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
