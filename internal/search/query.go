package search

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

const minHandleLen = 4

// NameVariants returns the formal name followed by "Handle Last" for each
// social link whose last path segment is longer than three characters.
func NameVariants(id model.Identity) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	add(id.FullName())

	for _, link := range id.SocialLinks {
		u, err := url.Parse(strings.ToLower(link))
		if err != nil {
			continue
		}
		path := strings.Trim(u.Path, "/")
		if path == "" {
			continue
		}
		segments := strings.Split(path, "/")
		handle := segments[len(segments)-1]
		if len([]rune(handle)) < minHandleLen {
			continue
		}
		add(strings.TrimSpace(capitalize(handle) + " " + id.LastName))
	}

	return names
}

// BroadQuery ORs the quoted name variants in front of the claim text
func BroadQuery(claim string, names []string) string {
	if len(names) == 0 {
		return claim
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = `"` + n + `"`
	}
	return fmt.Sprintf("(%s) %s", strings.Join(quoted, " OR "), claim)
}

// SiteQuery scopes the claim to the first social link that has both host and path
func SiteQuery(claim string, links []string) (string, bool) {
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		path := strings.Trim(u.Path, "/")
		if u.Host != "" && path != "" {
			return fmt.Sprintf(`site:%s "%s" %s`, u.Host, path, claim), true
		}
	}
	return "", false
}

// IncludeDomains returns the hosts of the social links, in order and without duplicates
func IncludeDomains(links []string) []string {
	var hosts []string
	seen := make(map[string]bool)
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Host == "" || seen[u.Host] {
			continue
		}
		seen[u.Host] = true
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// capitalize upper-cases the first rune and lower-cases the rest
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
