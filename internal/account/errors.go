package account

import "errors"

var (
	// ErrEngineNotReady indicates a required dependency was not wired.
	ErrEngineNotReady = errors.New("account engine not ready")
	// ErrValidation indicates malformed caller input. Always wrapped with
	// a specific message safe to surface.
	ErrValidation = errors.New("invalid request")
	// ErrPasswordPolicy indicates the password failed a policy rule.
	// Wrapped with the specific rule message; this is the one failure
	// class that deliberately gives specific feedback.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrLoginFailed covers every login failure: unknown email,
	// unverified account, wrong password, and locked account. One error
	// for all four so lock state cannot be probed.
	ErrLoginFailed = errors.New("login failed")
	// ErrTokenNotFound indicates no account carries the presented token.
	// Transport layers must surface it with the same message as
	// [ErrTokenExpired].
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired indicates the token existed but its expiry passed;
	// the token fields have been cleared as a side effect.
	ErrTokenExpired = errors.New("token expired")
	// ErrRateLimited indicates the registration throttle rejected the
	// originating address.
	ErrRateLimited = errors.New("too many requests")
	// ErrUnknownEmail indicates a deletion request named an email with no
	// account. Deletion is the one flow that reports this distinctly.
	ErrUnknownEmail = errors.New("email not registered")
)

// Store contract sentinels. Implementations of [UserStore] return these;
// the engine maps them to the public taxonomy at the flow boundary.
var (
	// ErrStoreNotFound signals a lookup or conditional update matched no
	// record.
	ErrStoreNotFound = errors.New("user record not found")
	// ErrStoreDuplicate signals an insert hit the unique email index.
	ErrStoreDuplicate = errors.New("duplicate email")
	// ErrStoreConflict signals a conditional update lost a race: the
	// record exists but the expected field value no longer matches.
	ErrStoreConflict = errors.New("concurrent update conflict")
)
