package account

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/AelaNieve/appsalon/internal/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens before the first request.
type Builder struct {
	config  Config
	store   UserStore
	breach  BreachIndex
	notify  Notifier
	clock   Clock
	logger  zerolog.Logger
	hasher  *password.Argon2
	built   bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the user record store. Required.
func (b *Builder) WithStore(s UserStore) *Builder {
	b.store = s
	return b
}

// WithBreachIndex sets the breach-password index. Optional: without one
// the breach rule is skipped entirely.
func (b *Builder) WithBreachIndex(idx BreachIndex) *Builder {
	b.breach = idx
	return b
}

// WithNotifier sets the outbound email sender. Required.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notify = n
	return b
}

// WithClock overrides the time source. Defaults to the system clock.
func (b *Builder) WithClock(c Clock) *Builder {
	b.clock = c
	return b
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithPasswordHasher overrides the argon2id hasher. Defaults to
// [password.Default].
func (b *Builder) WithPasswordHasher(h *password.Argon2) *Builder {
	b.hasher = h
	return b
}

// Build validates the configuration and wiring and returns the engine.
// A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("user store required")
	}
	if b.notify == nil {
		return nil, errors.New("notifier required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock()
	}

	hasher := b.hasher
	if hasher == nil {
		h, err := password.Default()
		if err != nil {
			return nil, err
		}
		hasher = h
	}

	b.built = true

	e := &Engine{
		config:   cfg,
		store:    b.store,
		notify:   b.notify,
		clock:    clock,
		log:      b.logger,
		hasher:   hasher,
		policy:   newPolicyEvaluator(cfg.Password, b.breach, b.logger),
		throttle: newRegistrationThrottle(cfg.Throttle, clock),
		dispatch: newNotifyDispatcher(cfg.Dispatch, b.logger),
	}
	return e, nil
}
