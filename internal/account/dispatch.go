package account

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// notification is one queued outbound email. The send closure captures
// the notifier call so the worker stays kind-agnostic.
type notification struct {
	id    string
	kind  string
	email string
	send  func(ctx context.Context) error
}

// notifyDispatcher delivers notifications off the request path: a
// buffered channel feeds a single worker goroutine. Delivery failures are
// logged and never propagated; committed state is never rolled back
// because an email did not go out.
type notifyDispatcher struct {
	cfg       DispatchConfig
	log       zerolog.Logger
	ch        chan notification
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newNotifyDispatcher(cfg DispatchConfig, log zerolog.Logger) *notifyDispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &notifyDispatcher{
		cfg:  cfg,
		log:  log,
		ch:   make(chan notification, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *notifyDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.ch:
			d.deliver(n)
		case <-d.done:
			// Drain whatever is already queued, then stop.
			for {
				select {
				case n := <-d.ch:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *notifyDispatcher) deliver(n notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := n.send(ctx); err != nil {
		d.log.Error().
			Err(err).
			Str("notification_id", n.id).
			Str("kind", n.kind).
			Str("email", n.email).
			Msg("notification delivery failed")
		return
	}
	d.log.Debug().
		Str("notification_id", n.id).
		Str("kind", n.kind).
		Msg("notification delivered")
}

// Emit queues a notification. With DropIfFull set, a full buffer drops
// the notification and bumps the counter instead of blocking the request.
func (d *notifyDispatcher) Emit(kind, email string, send func(ctx context.Context) error) {
	if d == nil || d.closed.Load() {
		return
	}

	n := notification{
		id:    uuid.NewString(),
		kind:  kind,
		email: email,
		send:  send,
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- n:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- n:
	case <-d.done:
	}
}

// Dropped reports notifications discarded due to a full buffer.
func (d *notifyDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Close stops the worker after draining queued notifications.
func (d *notifyDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}
