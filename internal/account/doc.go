// Package account implements the account security engine behind the
// AppSalon authentication endpoints: registration with password policy
// enforcement and a per-address throttle, login with brute-force lockout,
// and single-use tokens for email verification, account deletion, and
// password reset.
//
// The engine owns policy and token lifecycle only. Persistence, outbound
// email, and the breach-password index are injected through the
// [UserStore], [Notifier], and [BreachIndex] interfaces and wired once via
// [Builder.Build]; after Build the engine is immutable and safe for
// concurrent use.
//
// # What this package must NOT do
//
//   - Expose store documents, SMTP details, or HTTP types in its API.
//   - Block a request on outbound email: notification delivery is
//     fire-and-forget through an internal dispatcher.
//   - Distinguish account states in login or token failures. Wrong
//     password, unknown email, unverified, and locked all surface the
//     same error.
package account
