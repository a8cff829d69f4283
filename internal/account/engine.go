package account

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/AelaNieve/appsalon/internal/password"
)

// Engine is the account security engine. Build one via [Builder.Build];
// its methods are safe for concurrent use.
type Engine struct {
	config   Config
	store    UserStore
	notify   Notifier
	clock    Clock
	log      zerolog.Logger
	hasher   *password.Argon2
	policy   *PolicyEvaluator
	throttle *registrationThrottle
	dispatch *notifyDispatcher
}

// Policy exposes the password policy evaluator, so transport layers can
// offer a pre-submit check against the same rules the engine enforces.
func (e *Engine) Policy() *PolicyEvaluator {
	return e.policy
}

// Close drains the notification dispatcher. Pending sends are attempted
// before Close returns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.dispatch.Close()
}

// NotificationsDropped reports how many notifications were discarded
// because the dispatch buffer was full.
func (e *Engine) NotificationsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.dispatch.Dropped()
}

// normalizeEmail canonicalizes an address for lookup and storage.
// Email identity is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
