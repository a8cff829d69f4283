package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Register runs the full registration flow: throttle gate, field
// validation, password policy, and account creation with a verification
// token. The verification email is dispatched fire-and-forget after the
// record is committed.
//
// Registration is enumeration-safe: an already-taken email produces the
// same successful result as a fresh one, with no account created and no
// email sent. The throttle is an independent, earlier gate and is the
// only path to a distinct (rate-limited) outcome.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	if e == nil || e.store == nil {
		return RegisterResult{}, ErrEngineNotReady
	}

	if !e.throttle.Allow(req.ClientAddr) {
		e.log.Warn().Str("client_addr", req.ClientAddr).Msg("registration throttled")
		return RegisterResult{}, ErrRateLimited
	}

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	switch {
	case name == "":
		return RegisterResult{}, fmt.Errorf("%w: name is required", ErrValidation)
	case email == "":
		return RegisterResult{}, fmt.Errorf("%w: email is required", ErrValidation)
	case req.Password == "" || strings.TrimSpace(req.Password) == "":
		return RegisterResult{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if res := e.policy.Evaluate(ctx, req.Password); !res.Valid {
		return RegisterResult{}, fmt.Errorf("%w: %s", ErrPasswordPolicy, res.Reason)
	}

	// The attempt passed the gate and carried well-formed input; it
	// counts against the window whether or not a record gets created.
	e.throttle.Record(req.ClientAddr)

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	token, err := newOpaqueToken(e.config.Tokens.VerificationBytes)
	if err != nil {
		return RegisterResult{}, err
	}

	user := &UserRecord{
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		VerificationToken: token,
	}

	if err := e.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrStoreDuplicate) {
			// Same response as success so the email space cannot be
			// probed through registration.
			e.log.Info().Str("email", email).Msg("registration for existing email, no-op")
			return RegisterResult{}, nil
		}
		return RegisterResult{}, err
	}

	e.dispatch.Emit("verification", email, func(ctx context.Context) error {
		return e.notify.SendVerification(ctx, name, email, token)
	})

	e.log.Info().Str("email", email).Msg("account registered, verification pending")
	return RegisterResult{Created: true}, nil
}
