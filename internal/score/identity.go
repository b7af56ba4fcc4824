package score

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

const (
	mirrorBonus    = 40
	authorityBonus = 25
	nameBonus      = 15

	// minNameTokenLen ignores initials and short particles in name matching
	minNameTokenLen = 3
)

// MatchKind classifies how evidence ties a claim to the candidate
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchName
	MatchAuthority
	MatchMirror
)

func (k MatchKind) String() string {
	switch k {
	case MatchName:
		return "name"
	case MatchAuthority:
		return "authority"
	case MatchMirror:
		return "mirror"
	default:
		return "none"
	}
}

// IdentityMatch is the outcome of scanning an evidence list
type IdentityMatch struct {
	Kind  MatchKind
	Host  string // Evidence host for mirror and authority matches
	Bonus int
}

// Note returns the explanation suffix for the match, empty when none applies
func (m IdentityMatch) Note() string {
	switch m.Kind {
	case MatchMirror:
		return fmt.Sprintf(" [Mirror Match: %s]", m.Host)
	case MatchAuthority:
		return fmt.Sprintf(" [Verified Domain: %s]", m.Host)
	default:
		return ""
	}
}

// IdentityMatcher decides whether evidence belongs to the candidate
type IdentityMatcher struct {
	trusted []string
}

// NewIdentityMatcher creates a matcher for the given trusted platforms
func NewIdentityMatcher(trustedDomains []string) *IdentityMatcher {
	m := &IdentityMatcher{}
	for _, d := range trustedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			m.trusted = append(m.trusted, d)
		}
	}
	return m
}

type seed struct {
	domain string
	path   string
}

// Match scans evidence in order. Mirror and authority hits end the scan;
// a name hit is kept unless a stronger one follows.
func (m *IdentityMatcher) Match(evidence []model.Evidence, id model.Identity) IdentityMatch {
	seeds := seedsFrom(id.SocialLinks)
	names := nameTokens(id)

	var best IdentityMatch
	for _, e := range evidence {
		host, path := splitURL(strings.ToLower(e.URL))

		for _, s := range seeds {
			if hasDomain(host, s.domain) && strings.HasPrefix(path, s.path) {
				return IdentityMatch{Kind: MatchMirror, Host: host, Bonus: mirrorBonus}
			}
		}

		if m.Trusted(host) {
			return IdentityMatch{Kind: MatchAuthority, Host: host, Bonus: authorityBonus}
		}

		if best.Kind == MatchNone && containsAny(strings.ToLower(e.Snippet), names) {
			best = IdentityMatch{Kind: MatchName, Bonus: nameBonus}
		}
	}
	return best
}

// Trusted reports whether host is, or is a subdomain of, a trusted platform
func (m *IdentityMatcher) Trusted(host string) bool {
	for _, d := range m.trusted {
		if hasDomain(host, d) {
			return true
		}
	}
	return false
}

func hasDomain(host, domain string) bool {
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func seedsFrom(links []string) []seed {
	seeds := make([]seed, 0, len(links))
	for _, link := range links {
		link = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(link)), "/")
		if link == "" {
			continue
		}
		host, path := splitURL(link)
		if host == "" {
			continue
		}
		seeds = append(seeds, seed{domain: registeredDomain(host), path: path})
	}
	return seeds
}

// splitURL returns the host without port and the path without a trailing slash.
// Scheme-less links are read as https.
func splitURL(raw string) (string, string) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}
	return u.Hostname(), strings.TrimSuffix(u.Path, "/")
}

// registeredDomain keeps the last two labels of host
func registeredDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func nameTokens(id model.Identity) []string {
	var tokens []string
	for _, part := range strings.Fields(id.FirstName + " " + id.LastName) {
		if len([]rune(part)) >= minNameTokenLen {
			tokens = append(tokens, strings.ToLower(part))
		}
	}
	return tokens
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
