package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want resolver.Query
	}{
		{
			name: "plain words",
			raw:  "login  bug",
			want: resolver.Query{Text: "login bug", Fields: map[string][]string{}},
		},
		{
			name: "phrase and text",
			raw:  `"login system" other`,
			want: resolver.Query{Text: "other", Phrases: []string{"login system"}, Fields: map[string][]string{}},
		},
		{
			name: "exclusions",
			raw:  "login -mobile -tablet",
			want: resolver.Query{Text: "login", Exclusions: []string{"mobile", "tablet"}, Fields: map[string][]string{}},
		},
		{
			name: "fields",
			raw:  "Team:ENG label:bug label:p1 crash",
			want: resolver.Query{Text: "crash", Fields: map[string][]string{"team": {"ENG"}, "label": {"bug", "p1"}}},
		},
		{
			name: "escaped quote and unterminated phrase",
			raw:  `say \"hi "open ended`,
			want: resolver.Query{Text: `say "hi`, Phrases: []string{"open ended"}, Fields: map[string][]string{}},
		},
		{
			name: "lone dash and colon are text",
			raw:  "a - b: :c",
			want: resolver.Query{Text: "a - b: :c", Fields: map[string][]string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.ParseQuery(tt.raw))
		})
	}
}

func TestQueryTerm(t *testing.T) {
	assert.Equal(t, "crash login page", resolver.ParseQuery(`crash "login page" team:ENG -ios`).Term())
	assert.Empty(t, resolver.ParseQuery("status:todo").Term())
}

func TestQueryFilter(t *testing.T) {
	q := resolver.ParseQuery("team:ENG status:todo status:done assignee:me label:bug label:p1 cycle:current")
	f, err := q.Filter(10)
	require.NoError(t, err)
	assert.Equal(t, resolver.Filter{
		Assignee: "me",
		Status:   "done",
		Team:     "ENG",
		Labels:   []string{"bug", "p1"},
		Cycle:    "current",
		First:    10,
	}, f)

	_, err = resolver.ParseQuery("priority:1").Filter(10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown search field "priority"`)
}

func TestQueryFilterResolves(t *testing.T) {
	r := resolver.New(newFakeDirectory(), nil)
	f, err := resolver.ParseQuery("crash team:eng status:wip label:bug").Filter(5)
	require.NoError(t, err)

	resolved, err := r.ResolveFilter(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "team-eng", resolved.TeamID)
	assert.Equal(t, "st-progress", resolved.StateID)
	assert.Equal(t, []string{"lbl-bug"}, resolved.LabelIDs)
	assert.Equal(t, 5, resolved.First)
}

func TestQueryExclusions(t *testing.T) {
	q := resolver.ParseQuery("login -Mobile")
	issues := []linear.Issue{
		{Identifier: "ENG-1", Title: "Login broken on mobile"},
		{Identifier: "ENG-2", Title: "Login slow", Description: "Desktop only"},
		{Identifier: "ENG-3", Title: "Login", Description: "MOBILE Safari"},
	}
	kept := q.FilterIssues(issues)
	require.Len(t, kept, 1)
	assert.Equal(t, "ENG-2", kept[0].Identifier)

	projects := q.FilterProjects([]linear.Project{{Name: "Mobile login"}, {Name: "Web login"}})
	assert.Equal(t, []linear.Project{{Name: "Web login"}}, projects)

	none := resolver.ParseQuery("login")
	assert.Len(t, none.FilterIssues(issues), 3)
}
