package account

import (
	"context"
	"errors"
	"fmt"
)

// Login authenticates a credential pair under the lockout policy.
//
// Every failure — unknown email, unverified account, wrong password, or
// locked account — returns [ErrLoginFailed] so an outside observer cannot
// distinguish account states. Lock state is decided from the counter
// before the password check; once the counter reaches the threshold the
// account cannot self-unlock by retrying, even with the correct password.
// Recovery happens through a successful password reset, which zeroes the
// counter.
func (e *Engine) Login(ctx context.Context, email, pw string) (*LoginResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || pw == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	if !user.Verified {
		return nil, ErrLoginFailed
	}

	// Locked accounts reject before the password is even compared, with
	// the same generic error as a wrong password.
	if user.FailedLoginCount >= e.config.Lockout.Threshold {
		e.log.Warn().Str("email", email).Msg("login attempt on locked account")
		return nil, ErrLoginFailed
	}

	ok, err := e.hasher.Verify(pw, user.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		count, incErr := e.store.IncrementFailedLogins(ctx, user.ID)
		if incErr != nil {
			e.log.Error().Err(incErr).Str("email", email).Msg("failed to persist login failure count")
		} else if count == e.config.Lockout.Threshold {
			// Exactly reaching the threshold fires the one-time blocked
			// notification. Later attempts only hit the lock check above.
			e.dispatch.Emit("account_blocked", email, func(ctx context.Context) error {
				return e.notify.SendAccountBlocked(ctx, user.Name, user.Email)
			})
			e.log.Warn().Str("email", email).Int("failures", count).Msg("account locked after consecutive failures")
		}
		return nil, ErrLoginFailed
	}

	if user.FailedLoginCount > 0 {
		if err := e.store.ResetFailedLogins(ctx, user.ID); err != nil {
			e.log.Error().Err(err).Str("email", email).Msg("failed to reset login failure count")
		}
	}

	return &LoginResult{
		Name:  user.Name,
		Email: user.Email,
		Admin: user.Admin,
	}, nil
}
