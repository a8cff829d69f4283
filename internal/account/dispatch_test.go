package account

import (
	"context"
	"encoding/hex"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDispatcherDeliversAndDrains(t *testing.T) {
	d := newNotifyDispatcher(DispatchConfig{
		BufferSize:  8,
		DropIfFull:  true,
		SendTimeout: time.Second,
	}, zerolog.Nop())

	var delivered atomic.Int32
	for i := 0; i < 5; i++ {
		d.Emit("test", "a@b.com", func(context.Context) error {
			delivered.Add(1)
			return nil
		})
	}

	d.Close()
	if got := delivered.Load(); got != 5 {
		t.Fatalf("delivered = %d, want 5", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}

func TestDispatcherSwallowsSendErrors(t *testing.T) {
	d := newNotifyDispatcher(DispatchConfig{
		BufferSize:  1,
		DropIfFull:  true,
		SendTimeout: time.Second,
	}, zerolog.Nop())

	d.Emit("test", "a@b.com", func(context.Context) error {
		return errors.New("smtp down")
	})
	d.Close() // must not panic or propagate
}

func TestDispatcherCloseNotWedgedBySlowSend(t *testing.T) {
	d := newNotifyDispatcher(DispatchConfig{
		BufferSize:  4,
		DropIfFull:  true,
		SendTimeout: 20 * time.Millisecond,
	}, zerolog.Nop())

	// A send that only returns when its context expires must not stall
	// the worker past the send timeout, and Close must still drain.
	for i := 0; i < 3; i++ {
		d.Emit("test", "a@b.com", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	}

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a slow send; per-delivery timeout not enforced")
	}
}

func TestDispatcherEmitAfterCloseIsNoOp(t *testing.T) {
	d := newNotifyDispatcher(DispatchConfig{
		BufferSize:  1,
		DropIfFull:  true,
		SendTimeout: time.Second,
	}, zerolog.Nop())
	d.Close()

	var delivered atomic.Int32
	d.Emit("test", "a@b.com", func(context.Context) error {
		delivered.Add(1)
		return nil
	})
	if delivered.Load() != 0 {
		t.Fatal("emit after close must not deliver")
	}
}

func TestOpaqueTokenLengthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := newOpaqueToken(20)
		if err != nil {
			t.Fatalf("newOpaqueToken: %v", err)
		}
		if len(token) != 40 {
			t.Fatalf("token length = %d, want 40", len(token))
		}
		if _, err := hex.DecodeString(token); err != nil {
			t.Fatalf("token %q is not hex", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
