package account

import (
	"context"
	"errors"
	"fmt"
)

// RequestAccountDeletion starts the deletion flow for email.
//
// An unverified account short-circuits: it is deleted on the spot with no
// token — an unconfirmed registration is simply discarded. A verified
// account gets a deletion token with a one-hour expiry and a confirmation
// email; while an unexpired token is pending, repeat requests re-send the
// same token instead of minting a new one.
func (e *Engine) RequestAccountDeletion(ctx context.Context, email string) (DeletionRequestResult, error) {
	if e == nil || e.store == nil {
		return DeletionRequestResult{}, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		return DeletionRequestResult{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return DeletionRequestResult{}, ErrUnknownEmail
		}
		return DeletionRequestResult{}, err
	}

	if !user.Verified {
		if err := e.store.Delete(ctx, user.ID); err != nil {
			return DeletionRequestResult{}, err
		}
		e.log.Info().Str("email", email).Msg("unverified account deleted immediately")
		return DeletionRequestResult{DeletedImmediately: true}, nil
	}

	now := e.clock.Now()
	if user.DeletionToken != "" && user.DeletionExpiry.After(now) {
		// Active token pending: idempotent no-op, re-send the same one.
		e.emitDeletionEmail(user.Name, user.Email, user.DeletionToken)
		return DeletionRequestResult{AlreadyPending: true}, nil
	}

	token, err := newOpaqueToken(e.config.Tokens.DeletionBytes)
	if err != nil {
		return DeletionRequestResult{}, err
	}

	// CAS on the previous value: an expired leftover is replaced, a
	// concurrently issued token is not.
	expiry := now.Add(e.config.Tokens.DeletionTTL)
	if err := e.store.SetToken(ctx, user.ID, TokenDeletion, token, expiry, user.DeletionToken); err != nil {
		if errors.Is(err, ErrStoreConflict) {
			if winner, findErr := e.store.FindByEmail(ctx, email); findErr == nil &&
				winner.DeletionToken != "" && winner.DeletionExpiry.After(now) {
				e.emitDeletionEmail(winner.Name, winner.Email, winner.DeletionToken)
				return DeletionRequestResult{AlreadyPending: true}, nil
			}
		}
		return DeletionRequestResult{}, err
	}

	e.emitDeletionEmail(user.Name, user.Email, token)
	e.log.Info().Str("email", email).Msg("deletion confirmation issued")
	return DeletionRequestResult{}, nil
}

func (e *Engine) emitDeletionEmail(name, email, token string) {
	e.dispatch.Emit("deletion_confirmation", email, func(ctx context.Context) error {
		return e.notify.SendDeletionConfirmation(ctx, name, email, token)
	})
}

// ConfirmAccountDeletion consumes a deletion token and deletes the
// account. Expiry is detected lazily here, not by a background sweep: a
// stale token is cleared from the record and reported expired.
func (e *Engine) ConfirmAccountDeletion(ctx context.Context, token string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	user, err := e.store.FindByToken(ctx, TokenDeletion, token)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if !user.DeletionExpiry.After(e.clock.Now()) {
		if err := e.store.ClearToken(ctx, user.ID, TokenDeletion, token); err != nil &&
			!errors.Is(err, ErrStoreConflict) && !errors.Is(err, ErrStoreNotFound) {
			return err
		}
		return ErrTokenExpired
	}

	if err := e.store.Delete(ctx, user.ID); err != nil {
		return err
	}

	e.log.Info().Str("email", user.Email).Msg("account deleted")
	return nil
}
