package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// interruptSignals cancel a running export. SIGTERM is never delivered on
// Windows, where only os.Interrupt applies.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// notifyContext returns a context canceled on the first interrupt signal,
// so the browser is shut down before the process exits.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, interruptSignals...)
}
