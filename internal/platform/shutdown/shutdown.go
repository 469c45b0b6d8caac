package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupted is the conventional status for a process ended by SIGINT.
const ExitInterrupted = 130

// NotifyContext returns a context cancelled on the first SIGINT or SIGTERM.
// A second signal calls force, which defaults to exiting with
// ExitInterrupted; reads blocked on a terminal never see the cancellation.
// stop releases the signal handler.
func NotifyContext(parent context.Context, force func()) (ctx context.Context, stop func()) {
	if force == nil {
		force = func() { os.Exit(ExitInterrupted) }
	}
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigs:
			cancel()
		case <-done:
			return
		}
		select {
		case <-sigs:
			force()
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(done)
			cancel()
		})
	}
}
