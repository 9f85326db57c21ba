package mail

import (
	"regexp"
	"strings"
)

// systemLocalParts matches local parts used by automated senders that must
// never receive an auto-reply.
var systemLocalParts = regexp.MustCompile(`^(no-?reply|donot-?reply|noreply|bounce|mailer-daemon|postmaster)$`)

// Blacklist filters senders that must not be processed: exact addresses,
// whole domains (including the company's own, to skip internal mail), and
// common system mailboxes.
type Blacklist struct {
	emails  map[string]struct{}
	domains map[string]struct{}
}

// NewBlacklist builds a Blacklist from exact addresses and domains; both
// are compared case-insensitively.
func NewBlacklist(emails, domains []string) *Blacklist {
	b := &Blacklist{
		emails:  make(map[string]struct{}, len(emails)),
		domains: make(map[string]struct{}, len(domains)),
	}
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			b.emails[e] = struct{}{}
		}
	}
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			b.domains[d] = struct{}{}
		}
	}
	return b
}

// Blocked reports whether the sender address must be ignored.
func (b *Blacklist) Blocked(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return true
	}

	if _, ok := b.emails[email]; ok {
		return true
	}

	local, domain, found := strings.Cut(email, "@")
	if !found {
		return false
	}
	if _, ok := b.domains[domain]; ok {
		return true
	}
	return systemLocalParts.MatchString(local)
}
