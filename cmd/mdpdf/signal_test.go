package main

// Notes:
// - notifyContext: only the context plumbing is tested. Real signal delivery
//   is platform specific and not exercised here.

import (
	"context"
	"testing"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("not canceled until stop", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatalf("ctx.Err() = %v before stop, want nil", ctx.Err())
		}
		stop()
		<-ctx.Done()
	})

	t.Run("follows parent cancellation", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
	})
}
