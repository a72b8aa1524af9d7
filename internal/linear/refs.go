package linear

import (
	"net/url"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-\d+$`)

// IsIdentifier reports whether s looks like a team-scoped issue identifier
// such as ENG-123.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// identifierFromURL returns the identifier in
// https://linear.app/<workspace>/issue/<ID>[/<slug>], or "".
func identifierFromURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.Host != "linear.app" {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] != "issue" || !IsIdentifier(parts[2]) {
		return ""
	}
	return parts[2]
}

// IssueRef normalizes a user-supplied issue reference: URLs become their
// identifier, identifiers are upper-cased, anything else is passed through.
func IssueRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if id := identifierFromURL(ref); id != "" {
		return strings.ToUpper(id)
	}
	if IsIdentifier(ref) {
		return strings.ToUpper(ref)
	}
	return ref
}
