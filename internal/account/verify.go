package account

import (
	"context"
	"errors"
	"fmt"
)

// VerifyAccount consumes a verification token: the account is marked
// verified exactly once and the token cleared in the same update.
// Verification tokens carry no expiry; they stay valid until consumed
// because email delivery may be arbitrarily delayed.
func (e *Engine) VerifyAccount(ctx context.Context, token string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	user, err := e.store.FindByToken(ctx, TokenVerification, token)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if err := e.store.MarkVerified(ctx, user.ID, token); err != nil {
		if errors.Is(err, ErrStoreConflict) || errors.Is(err, ErrStoreNotFound) {
			// Consumed by a concurrent request; same generic outcome.
			return ErrTokenNotFound
		}
		return err
	}

	e.log.Info().Str("email", user.Email).Msg("account verified")
	return nil
}
