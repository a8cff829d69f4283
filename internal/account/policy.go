package account

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Policy rule messages. These are the one failure class that surfaces
// specific feedback to the caller.
const (
	reasonTooShort     = "password must be at least 16 characters long"
	reasonNoUppercase  = "password must contain an uppercase letter"
	reasonNoLowercase  = "password must contain a lowercase letter"
	reasonNoDigit      = "password must contain a digit"
	reasonNoSpecial    = `password must contain a special character (e.g. !@#$%)`
	reasonRepeats      = "password must not repeat the same character 4 or more times in a row"
	reasonNumericRun   = `password must not contain an ascending numeric sequence (e.g. "123")`
	reasonAlphabetRun  = `password must not contain an ascending alphabetic sequence (e.g. "abc")`
	reasonCommon       = "password contains a pattern that is too common"
	reasonBreached     = "password appears in a public breach database"
)

const breachPrefixLen = 5

// PolicyResult is the outcome of a policy evaluation. Reason is empty
// when Valid is true.
type PolicyResult struct {
	Valid  bool
	Reason string
}

// PolicyEvaluator checks passwords against the fixed rule set. Rules
// apply in order and the first failure wins; the breach-index lookup runs
// last and fails open when the index is unreachable.
//
// The evaluator is stateless with respect to the user store: its only
// side effect is the single outbound range query.
type PolicyEvaluator struct {
	cfg    PasswordPolicyConfig
	breach BreachIndex
	log    zerolog.Logger

	forbidden []string // lowercased copies of cfg.ForbiddenPatterns
}

func newPolicyEvaluator(cfg PasswordPolicyConfig, breach BreachIndex, log zerolog.Logger) *PolicyEvaluator {
	forbidden := make([]string, 0, len(cfg.ForbiddenPatterns))
	for _, p := range cfg.ForbiddenPatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			forbidden = append(forbidden, p)
		}
	}
	return &PolicyEvaluator{
		cfg:       cfg,
		breach:    breach,
		log:       log,
		forbidden: forbidden,
	}
}

// Evaluate applies the rule set to password. The context bounds only the
// breach-index lookup.
func (p *PolicyEvaluator) Evaluate(ctx context.Context, pw string) PolicyResult {
	runes := []rune(pw)

	if len(runes) < p.cfg.MinLength {
		return PolicyResult{Reason: reasonTooShort}
	}
	if reason := p.checkCharacterClasses(runes); reason != "" {
		return PolicyResult{Reason: reason}
	}
	if hasRepeatRun(runes, p.cfg.MaxRepeat+1) {
		return PolicyResult{Reason: reasonRepeats}
	}
	if hasAscendingRun(runes, p.cfg.RunLength, unicode.IsDigit) {
		return PolicyResult{Reason: reasonNumericRun}
	}
	if hasAscendingRun([]rune(strings.ToLower(pw)), p.cfg.RunLength, isLowerLetter) {
		return PolicyResult{Reason: reasonAlphabetRun}
	}
	if p.matchesForbiddenPattern(pw) {
		return PolicyResult{Reason: reasonCommon}
	}
	if p.isBreached(ctx, pw) {
		return PolicyResult{Reason: reasonBreached}
	}

	return PolicyResult{Valid: true}
}

func (p *PolicyEvaluator) checkCharacterClasses(runes []rune) string {
	var upper, lower, digit, special bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
		if strings.ContainsRune(p.cfg.SpecialChars, r) {
			special = true
		}
	}
	switch {
	case !upper:
		return reasonNoUppercase
	case !lower:
		return reasonNoLowercase
	case !digit:
		return reasonNoDigit
	case !special:
		return reasonNoSpecial
	}
	return ""
}

func (p *PolicyEvaluator) matchesForbiddenPattern(pw string) bool {
	lower := strings.ToLower(pw)
	for _, pattern := range p.forbidden {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// isBreached runs the k-anonymity lookup: only the digest prefix leaves
// the process, and candidate suffixes are matched locally. Availability
// beats this defense-in-depth check, so any lookup failure is logged and
// treated as not breached.
func (p *PolicyEvaluator) isBreached(ctx context.Context, pw string) bool {
	if p.breach == nil {
		return false
	}

	sum := sha1.Sum([]byte(pw))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix := digest[:breachPrefixLen]
	suffix := digest[breachPrefixLen:]

	candidates, err := p.breach.Lookup(ctx, prefix)
	if err != nil {
		p.log.Error().Err(err).Msg("breach index lookup failed, allowing password")
		return false
	}

	for _, c := range candidates {
		if strings.EqualFold(c.Suffix, suffix) {
			return true
		}
	}
	return false
}

// hasRepeatRun reports whether runes contains n identical consecutive
// characters.
func hasRepeatRun(runes []rune, n int) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// hasAscendingRun reports whether runes contains n consecutive characters
// of the given class, each one greater than the previous.
func hasAscendingRun(runes []rune, n int, class func(rune) bool) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if class(runes[i]) && class(runes[i-1]) && runes[i] == runes[i-1]+1 {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func isLowerLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}
