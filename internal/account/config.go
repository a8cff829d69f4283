package account

import (
	"errors"
	"time"
)

// Config holds engine tuning. Configure before [Builder.Build]; treat as
// immutable afterwards.
type Config struct {
	Password PasswordPolicyConfig
	Tokens   TokenConfig
	Lockout  LockoutConfig
	Throttle ThrottleConfig
	Dispatch DispatchConfig
}

// PasswordPolicyConfig drives the policy evaluator. Rules apply in fixed
// order; the first failure wins.
type PasswordPolicyConfig struct {
	MinLength    int
	SpecialChars string
	// MaxRepeat is the longest allowed run of identical characters.
	MaxRepeat int
	// RunLength is the length of ascending numeric/alphabetic runs that
	// get rejected.
	RunLength int
	// ForbiddenPatterns are substrings rejected case-insensitively.
	// Typically loaded from configuration at startup.
	ForbiddenPatterns []string
}

// TokenConfig sizes the opaque tokens and sets the deletion/reset TTL.
// Verification tokens never expire by design: email delivery may be
// slow, and an unconsumed verification token blocks nothing.
type TokenConfig struct {
	VerificationBytes int
	DeletionBytes     int
	ResetBytes        int
	DeletionTTL       time.Duration
	ResetTTL          time.Duration
}

// LockoutConfig controls the consecutive-failure lockout.
type LockoutConfig struct {
	// Threshold is the failure count at which the account locks. The
	// login that brings the counter exactly to Threshold triggers the
	// one-time blocked notification.
	Threshold int
}

// ThrottleConfig controls the per-address registration throttle.
type ThrottleConfig struct {
	Window  time.Duration
	Ceiling int
}

// DispatchConfig sizes the fire-and-forget notification dispatcher.
type DispatchConfig struct {
	BufferSize int
	// DropIfFull drops notifications instead of blocking the request
	// when the buffer is full.
	DropIfFull bool
	// SendTimeout bounds a single delivery attempt.
	SendTimeout time.Duration
}

// DefaultConfig returns the production defaults: the policy and limits
// the application ships with.
func DefaultConfig() Config {
	return Config{
		Password: PasswordPolicyConfig{
			MinLength:    16,
			SpecialChars: `!@#$%^&*(),.?":{}|<>`,
			MaxRepeat:    3,
			RunLength:    3,
		},
		Tokens: TokenConfig{
			VerificationBytes: 15,
			DeletionBytes:     20,
			ResetBytes:        20,
			DeletionTTL:       time.Hour,
			ResetTTL:          time.Hour,
		},
		Lockout: LockoutConfig{
			Threshold: 6,
		},
		Throttle: ThrottleConfig{
			Window:  15 * time.Minute,
			Ceiling: 5,
		},
		Dispatch: DispatchConfig{
			BufferSize:  64,
			DropIfFull:  true,
			SendTimeout: 10 * time.Second,
		},
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Password.MinLength < 1 {
		return errors.New("password min length must be positive")
	}
	if c.Password.SpecialChars == "" {
		return errors.New("special character set must not be empty")
	}
	if c.Password.MaxRepeat < 1 {
		return errors.New("max repeat must be positive")
	}
	if c.Password.RunLength < 2 {
		return errors.New("run length must be at least 2")
	}
	if c.Tokens.VerificationBytes < 15 || c.Tokens.DeletionBytes < 15 || c.Tokens.ResetBytes < 15 {
		return errors.New("tokens must carry at least 15 bytes of entropy")
	}
	if c.Tokens.DeletionTTL <= 0 || c.Tokens.ResetTTL <= 0 {
		return errors.New("deletion and reset TTLs must be positive")
	}
	if c.Lockout.Threshold < 1 {
		return errors.New("lockout threshold must be positive")
	}
	if c.Throttle.Window <= 0 || c.Throttle.Ceiling < 1 {
		return errors.New("throttle window and ceiling must be positive")
	}
	if c.Dispatch.BufferSize < 1 {
		return errors.New("dispatch buffer size must be positive")
	}
	if c.Dispatch.SendTimeout <= 0 {
		return errors.New("dispatch send timeout must be positive")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.Password.ForbiddenPatterns = append([]string(nil), c.Password.ForbiddenPatterns...)
	return out
}
