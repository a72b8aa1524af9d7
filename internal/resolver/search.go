package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// SearchFields lists the field:value qualifiers a search query accepts.
var SearchFields = []string{"assignee", "cycle", "label", "status", "team"}

// Query is a parsed search string. `"login page" crash -mobile team:ENG`
// has phrase "login page", text "crash", exclusion "mobile" and the team
// qualifier ENG.
type Query struct {
	Text       string
	Phrases    []string
	Exclusions []string
	Fields     map[string][]string
}

// ParseQuery splits a search string into free text, quoted phrases,
// -exclusions and field:value qualifiers. A backslash escapes the next
// character. Field names are lower-cased; unknown fields are kept for
// Filter to reject.
func ParseQuery(raw string) Query {
	q := Query{Fields: map[string][]string{}}

	var (
		words    []string
		cur      strings.Builder
		inQuotes bool
		escaped  bool
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, ch := range raw {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"' && inQuotes:
			if p := strings.TrimSpace(cur.String()); p != "" {
				q.Phrases = append(q.Phrases, p)
			}
			cur.Reset()
			inQuotes = false
		case ch == '"':
			flush()
			inQuotes = true
		case (ch == ' ' || ch == '\t') && !inQuotes:
			flush()
		default:
			cur.WriteRune(ch)
		}
	}
	if inQuotes {
		if p := strings.TrimSpace(cur.String()); p != "" {
			q.Phrases = append(q.Phrases, p)
		}
	} else {
		flush()
	}

	var text []string
	for _, w := range words {
		if strings.HasPrefix(w, "-") && len(w) > 1 {
			q.Exclusions = append(q.Exclusions, w[1:])
			continue
		}
		if name, value, ok := strings.Cut(w, ":"); ok && name != "" && value != "" {
			name = strings.ToLower(name)
			q.Fields[name] = append(q.Fields[name], value)
			continue
		}
		text = append(text, w)
	}
	q.Text = strings.Join(text, " ")
	return q
}

// Term is the full-text part sent to the server: free text and phrases.
func (q Query) Term() string {
	parts := make([]string, 0, len(q.Phrases)+1)
	if q.Text != "" {
		parts = append(parts, q.Text)
	}
	parts = append(parts, q.Phrases...)
	return strings.Join(parts, " ")
}

// Filter turns the field qualifiers into a Filter for ResolveFilter. The
// last value wins for single-valued fields; every label must match.
func (q Query) Filter(first int) (Filter, error) {
	f := Filter{First: first}
	names := make([]string, 0, len(q.Fields))
	for name := range q.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values := q.Fields[name]
		last := values[len(values)-1]
		switch name {
		case "assignee":
			f.Assignee = last
		case "cycle":
			f.Cycle = last
		case "label":
			f.Labels = append(f.Labels, values...)
		case "status":
			f.Status = last
		case "team":
			f.Team = last
		default:
			return Filter{}, fmt.Errorf("unknown search field %q (valid: %s)", name, strings.Join(SearchFields, ", "))
		}
	}
	return f, nil
}

// Excluded reports whether any exclusion appears in text, ignoring case.
func (q Query) Excluded(text string) bool {
	lower := strings.ToLower(text)
	for _, ex := range q.Exclusions {
		if strings.Contains(lower, strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

// FilterIssues drops issues whose title or description hits an exclusion.
func (q Query) FilterIssues(issues []linear.Issue) []linear.Issue {
	if len(q.Exclusions) == 0 {
		return issues
	}
	kept := make([]linear.Issue, 0, len(issues))
	for _, issue := range issues {
		if !q.Excluded(issue.Title) && !q.Excluded(issue.Description) {
			kept = append(kept, issue)
		}
	}
	return kept
}

// FilterProjects drops projects whose name hits an exclusion.
func (q Query) FilterProjects(projects []linear.Project) []linear.Project {
	if len(q.Exclusions) == 0 {
		return projects
	}
	kept := make([]linear.Project, 0, len(projects))
	for _, p := range projects {
		if !q.Excluded(p.Name) {
			kept = append(kept, p)
		}
	}
	return kept
}
