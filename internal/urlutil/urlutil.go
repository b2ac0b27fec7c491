package urlutil

import (
	"net/url"
	"strings"
)

// Placeholder marks where the search term goes in a site's URL template.
const Placeholder = "{q}"

// SearchURL substitutes every placeholder in template with the escaped
// query. Templates put the term in paths, query strings and fragments,
// so path escaping is used throughout; EANs pass through unchanged.
func SearchURL(template, query string) string {
	return strings.ReplaceAll(template, Placeholder, url.PathEscape(strings.TrimSpace(query)))
}

// Host returns the lowercased host of rawURL without a leading "www.".
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsHTTP reports whether rawURL is an absolute http(s) URL.
func IsHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
