package server

import (
	"strings"

	"github.com/contestapp/gateway/internal/config"
)

// MethodAny is the exemption wildcard matching every HTTP method.
const MethodAny = "ANY"

// ExemptionMatcher decides whether a request bypasses authentication.
// Rules are fixed at construction; matching is stateless and idempotent.
type ExemptionMatcher struct {
	rules []config.Exemption
}

// NewExemptionMatcher builds a matcher from the configured rules.
func NewExemptionMatcher(rules []config.Exemption) *ExemptionMatcher {
	// Copy so later mutation of the caller's slice cannot change behavior.
	owned := make([]config.Exemption, len(rules))
	copy(owned, rules)
	return &ExemptionMatcher{rules: owned}
}

// IsExempt reports whether any rule's path is a prefix of the request path
// with a matching method (case-insensitive, or the ANY wildcard). Rule order
// is irrelevant: the result is "any rule matches".
//
// Matching is a raw string prefix, so a rule for /member also exempts
// /membersomethingelse, not just /member/... . That reproduces the original
// filter's behavior; whether a rule should require a trailing slash or
// end-of-path boundary is an open item for the team, not something the
// gateway silently changes.
func (m *ExemptionMatcher) IsExempt(method, path string) bool {
	for _, rule := range m.rules {
		if strings.HasPrefix(path, rule.Path) &&
			(strings.EqualFold(rule.Method, method) || strings.EqualFold(rule.Method, MethodAny)) {
			return true
		}
	}
	return false
}
