package account

import (
	"context"
	"errors"
	"fmt"
)

// ForgotPassword starts the reset flow for email.
//
// Unknown addresses succeed silently so the email space cannot be probed.
// While an unexpired reset token is pending, repeat requests re-send the
// same token instead of minting a new one.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			e.log.Info().Str("email", email).Msg("password recovery for unknown email, no-op")
			return nil
		}
		return err
	}

	now := e.clock.Now()
	if user.ResetToken != "" && user.ResetExpiry.After(now) {
		e.emitRecoveryEmail(user.Name, user.Email, user.ResetToken)
		return nil
	}

	token, err := newOpaqueToken(e.config.Tokens.ResetBytes)
	if err != nil {
		return err
	}

	expiry := now.Add(e.config.Tokens.ResetTTL)
	if err := e.store.SetToken(ctx, user.ID, TokenReset, token, expiry, user.ResetToken); err != nil {
		if errors.Is(err, ErrStoreConflict) {
			if winner, findErr := e.store.FindByEmail(ctx, email); findErr == nil &&
				winner.ResetToken != "" && winner.ResetExpiry.After(now) {
				e.emitRecoveryEmail(winner.Name, winner.Email, winner.ResetToken)
				return nil
			}
		}
		return err
	}

	e.emitRecoveryEmail(user.Name, user.Email, token)
	e.log.Info().Str("email", email).Msg("password recovery issued")
	return nil
}

func (e *Engine) emitRecoveryEmail(name, email, token string) {
	e.dispatch.Emit("password_recovery", email, func(ctx context.Context) error {
		return e.notify.SendPasswordRecovery(ctx, name, email, token)
	})
}

// ResetPassword consumes a reset token and installs a new password. The
// new password passes the full policy evaluator: a recovered account must
// not end up weaker than a registered one. A successful reset clears the
// failed-login counter, so recovery via email implicitly unlocks a locked
// account.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	switch {
	case token == "":
		return fmt.Errorf("%w: token is required", ErrValidation)
	case newPassword == "":
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := e.store.FindByToken(ctx, TokenReset, token)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if !user.ResetExpiry.After(e.clock.Now()) {
		if err := e.store.ClearToken(ctx, user.ID, TokenReset, token); err != nil &&
			!errors.Is(err, ErrStoreConflict) && !errors.Is(err, ErrStoreNotFound) {
			return err
		}
		return ErrTokenExpired
	}

	if res := e.policy.Evaluate(ctx, newPassword); !res.Valid {
		return fmt.Errorf("%w: %s", ErrPasswordPolicy, res.Reason)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := e.store.CompletePasswordReset(ctx, user.ID, token, hash); err != nil {
		if errors.Is(err, ErrStoreConflict) || errors.Is(err, ErrStoreNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	e.log.Info().Str("email", user.Email).Msg("password reset completed")
	return nil
}
