package account

import (
	"context"
	"time"
)

// TokenKind identifies one of the single-use token families carried on a
// user record.
type TokenKind int

const (
	// TokenVerification confirms ownership of the registration email.
	// It has no expiry: it stays valid until consumed.
	TokenVerification TokenKind = iota
	// TokenDeletion confirms an account deletion request. Expires.
	TokenDeletion
	// TokenReset authorizes a password reset. Expires.
	TokenReset
)

func (k TokenKind) String() string {
	switch k {
	case TokenVerification:
		return "verification"
	case TokenDeletion:
		return "deletion"
	case TokenReset:
		return "reset"
	default:
		return "unknown"
	}
}

// UserRecord is the engine's view of a stored user. The store owns the
// record lifecycle; the engine reads and mutates the security fields.
//
// A token field and its expiry are always set and cleared together. The
// verification token is the exception: it carries no expiry.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Admin        bool

	Verified         bool
	FailedLoginCount int

	VerificationToken string

	DeletionToken  string
	DeletionExpiry time.Time

	ResetToken  string
	ResetExpiry time.Time
}

// UserStore is the persistence contract the engine requires. Mutating
// methods are conditional updates: they match on the current token value
// (or its absence) so that concurrent requests racing on the same record
// cannot lose updates. Implementations signal a failed condition with
// [ErrStoreConflict] and a missing record with [ErrStoreNotFound].
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByToken(ctx context.Context, kind TokenKind, token string) (*UserRecord, error)

	// Create inserts a new record. A duplicate email yields
	// [ErrStoreDuplicate].
	Create(ctx context.Context, u *UserRecord) error
	Delete(ctx context.Context, id string) error

	// SetToken stamps token+expiry for the kind, conditional on the field
	// currently holding prev ("" for absent). Verification tokens take a
	// zero expiry.
	SetToken(ctx context.Context, id string, kind TokenKind, token string, expiry time.Time, prev string) error
	// ClearToken removes token+expiry for the kind, conditional on the
	// field currently holding token.
	ClearToken(ctx context.Context, id string, kind TokenKind, token string) error

	// MarkVerified flips verified to true and clears the verification
	// token, conditional on the token still being present.
	MarkVerified(ctx context.Context, id string, token string) error

	// CompletePasswordReset installs the new hash, clears the reset
	// token+expiry, and zeroes the failed-login counter in one update,
	// conditional on the reset token still being present.
	CompletePasswordReset(ctx context.Context, id string, token string, newHash string) error

	// IncrementFailedLogins atomically adds one to the counter and
	// returns the new value.
	IncrementFailedLogins(ctx context.Context, id string) (int, error)
	ResetFailedLogins(ctx context.Context, id string) error
}

// SuffixCount is one candidate row from a breach-index range query.
type SuffixCount struct {
	Suffix string
	Count  int
}

// BreachIndex queries a public breach-password corpus by digest prefix so
// the full password digest never leaves the process (k-anonymity). An
// error, including timeout, makes the evaluator fail open.
type BreachIndex interface {
	Lookup(ctx context.Context, prefix string) ([]SuffixCount, error)
}

// Notifier delivers the outbound account emails. The engine calls it only
// through the fire-and-forget dispatcher: errors are logged, never
// propagated, and committed state is never rolled back on failure.
type Notifier interface {
	SendVerification(ctx context.Context, name, email, token string) error
	SendDeletionConfirmation(ctx context.Context, name, email, token string) error
	SendPasswordRecovery(ctx context.Context, name, email, token string) error
	SendAccountBlocked(ctx context.Context, name, email string) error
}

// Clock supplies the current time for expiry comparisons and the
// registration throttle window. Injected so tests can drive it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// RegisterRequest carries the registration input. ClientAddr is the
// originating address used by the throttle, already resolved by the
// transport layer.
type RegisterRequest struct {
	Name       string
	Email      string
	Password   string
	ClientAddr string
}

// RegisterResult reports a registration outcome. The engine returns the
// same result whether or not the email was already taken; callers must
// not expose the difference.
type RegisterResult struct {
	// Created is false when the email already existed and the request
	// was a silent no-op. For internal logging only.
	Created bool
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Name  string
	Email string
	Admin bool
}

// DeletionRequestResult reports how a deletion request was handled.
type DeletionRequestResult struct {
	// DeletedImmediately is true when the account was unverified and
	// discarded without a confirmation token.
	DeletedImmediately bool
	// AlreadyPending is true when an unexpired deletion token already
	// existed; the pending token was re-sent instead of replaced.
	AlreadyPending bool
}
