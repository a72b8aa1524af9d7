package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchIssuesAndProjects(t *testing.T) {
	h := newHarness(t)

	res := h.runAuthed("search", "login team:eng -mobile", "--format", "json")
	require.Equal(t, 0, res.code, res.stderr)

	calls := h.fake.find("SearchIssues")
	require.Len(t, calls, 1)
	assert.Equal(t, "login", calls[0].Variables["term"])
	assert.Equal(t, "team-eng", nested(t, calls[0].Variables["filter"], "team", "id", "eq"))
	assert.EqualValues(t, defaultSearchLimit, calls[0].Variables["first"])
	assert.Equal(t, false, calls[0].Variables["includeArchived"])

	projectCalls := h.fake.find("SearchProjects")
	require.Len(t, projectCalls, 1)
	assert.Equal(t, "login", projectCalls[0].Variables["term"])

	var got searchResults
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "ENG-1", got.Issues[0].Identifier)
	require.Len(t, got.Projects, 1, "excluded project must be dropped")
	assert.Equal(t, "Login revamp", got.Projects[0].Name)
}

func TestSearchTable(t *testing.T) {
	h := newHarness(t)

	res := h.runAuthed("search", `"login fails"`, "--include-archived")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Issues\n")
	assert.Contains(t, res.stdout, "Login fails on Safari")
	assert.Contains(t, res.stdout, "Projects\n")
	assert.Contains(t, res.stdout, "Mobile login")

	calls := h.fake.find("SearchIssues")
	require.Len(t, calls, 1)
	assert.Equal(t, "login fails", calls[0].Variables["term"])
	assert.Equal(t, true, calls[0].Variables["includeArchived"])
}

func TestSearchQualifiersOnlyListsIssues(t *testing.T) {
	h := newHarness(t)

	res := h.runAuthed("search", "team:ENG status:todo", "--format", "json")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Empty(t, h.fake.find("SearchIssues"))
	assert.Empty(t, h.fake.find("SearchProjects"))
	calls := h.fake.find("Issues")
	require.Len(t, calls, 1)
	assert.Equal(t, "st-todo", nested(t, calls[0].Variables["filter"], "state", "id", "eq"))
}

func TestSearchIssuesOnly(t *testing.T) {
	h := newHarness(t)

	res := h.runAuthed("search", "login", "--issues-only", "-n", "3")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "Projects")
	assert.Empty(t, h.fake.find("SearchProjects"))
	calls := h.fake.find("SearchIssues")
	require.Len(t, calls, 1)
	assert.EqualValues(t, 3, calls[0].Variables["first"])
}

func TestSearchRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown field", []string{"search", "priority:1 crash"}, `unknown search field "priority"`},
		{"empty", []string{"search", "  "}, "search query is empty"},
		{"projects need words", []string{"search", "team:ENG", "--projects-only"}, "project search needs words"},
		{"both only flags", []string{"search", "x", "--issues-only", "--projects-only"}, "mutually exclusive"},
		{"limit too large", []string{"search", "x", "--limit", "101"}, "--limit must be between 1 and 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res := h.runAuthed(tt.args...)
			assert.Equal(t, exitError, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Zero(t, h.fake.total())
		})
	}
}

func TestMyWork(t *testing.T) {
	h := newHarness(t)

	res := h.runAuthed("my-work", "--format", "json", "-n", "5")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Len(t, h.fake.find("Viewer"), 1)
	calls := h.fake.find("Issues")
	require.Len(t, calls, 2)
	var assigned, created int
	for _, c := range calls {
		filter := c.Variables["filter"].(map[string]any)
		assert.EqualValues(t, 5, c.Variables["first"])
		if _, ok := filter["assignee"]; ok {
			assert.Equal(t, "user-me", nested(t, filter, "assignee", "id", "eq"))
			assigned++
		}
		if _, ok := filter["creator"]; ok {
			assert.Equal(t, "user-me", nested(t, filter, "creator", "id", "eq"))
			created++
		}
	}
	assert.Equal(t, 1, assigned)
	assert.Equal(t, 1, created)

	var got myWork
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got.Assigned, 1)
	require.Len(t, got.Created, 1)
	assert.Equal(t, "ENG-1", got.Assigned[0].Identifier)
}

func TestMyWorkTable(t *testing.T) {
	h := newHarness(t)
	h.fake.set("Issues", `{"issues": {"nodes": [], "pageInfo": {"hasNextPage": false}}}`)

	res := h.runAuthed("my-work")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Assigned to you\nNo issues found.\n\nCreated by you\nNo issues found.\n")
}
