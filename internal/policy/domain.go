// Package policy holds the domain and time-window rules evaluated by the gates.
package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

// InvalidEmailReason is shown to the end user when an address cannot be parsed.
const InvalidEmailReason = "Invalid email format. Please enter a valid email address."

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the text after the last '@' of a normalized address.
// It fails with an InvalidInputError when there is no '@' or the domain is empty.
func EmailDomain(email string) (string, error) {
	email = NormalizeEmail(email)
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return "", hookerr.InvalidInput(InvalidEmailReason)
	}
	domain := email[at+1:]
	if domain == "" {
		return "", hookerr.InvalidInput(InvalidEmailReason)
	}
	return domain, nil
}

// DomainSet is a case-insensitive set of exact email domains.
type DomainSet map[string]struct{}

// NewDomainSet builds a set, ignoring blanks.
func NewDomainSet(domains ...string) DomainSet {
	s := make(DomainSet, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			s[d] = struct{}{}
		}
	}
	return s
}

// Contains reports whether domain is a member.
func (s DomainSet) Contains(domain string) bool {
	_, ok := s[strings.ToLower(domain)]
	return ok
}

// Sorted returns the members in lexical order.
func (s DomainSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Mode selects how a DomainPolicy treats its members.
type Mode string

const (
	// ModeAllowList rejects every domain that is not a member.
	ModeAllowList Mode = "allowlist"
	// ModeBlockList rejects every domain that is a member.
	ModeBlockList Mode = "blocklist"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAllowList:
		return ModeAllowList, nil
	case ModeBlockList:
		return ModeBlockList, nil
	default:
		return "", fmt.Errorf("unknown domain policy mode %q (want allowlist or blocklist)", s)
	}
}

// DomainPolicy is a single allow-list or block-list rule.
type DomainPolicy struct {
	Mode    Mode
	Domains DomainSet
}

// Permits reports whether domain may proceed under the policy.
func (p DomainPolicy) Permits(domain string) bool {
	member := p.Domains.Contains(domain)
	if p.Mode == ModeAllowList {
		return member
	}
	return !member
}
