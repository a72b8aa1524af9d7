package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
)

func TestResolveFilter(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)
	f := resolver.Filter{
		Assignee: "me",
		Status:   "in progress",
		Team:     "ENG",
		Labels:   []string{"bug", "docs"},
		Cycle:    "current",
		First:    500,
	}

	got, err := r.ResolveFilter(context.Background(), f)
	require.NoError(t, err)

	want := resolver.ResolvedFilter{
		AssigneeID: "user-me",
		TeamID:     "team-eng",
		StateID:    "st-progress",
		LabelIDs:   []string{"lbl-bug", "lbl-docs"},
		CycleID:    "cyc-42",
		First:      linear.MaxPageSize,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveFilter mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFilterDeterministic(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)
	f := resolver.Filter{Assignee: "me", Status: "done", Team: "eng", Labels: []string{"feature"}}

	first, err := r.ResolveFilter(context.Background(), f)
	require.NoError(t, err)
	calls := dir.TotalCalls()

	second, err := r.ResolveFilter(context.Background(), f)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second resolution differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, calls, dir.TotalCalls(), "second resolution should be served from the cache")

	fresh, err := resolver.New(newFakeDirectory(), nil).ResolveFilter(context.Background(), f)
	require.NoError(t, err)
	if diff := cmp.Diff(first, fresh); diff != "" {
		t.Errorf("fresh resolver differs (-first +fresh):\n%s", diff)
	}
}

func TestResolveFilterEmpty(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)

	got, err := r.ResolveFilter(context.Background(), resolver.Filter{})
	require.NoError(t, err)
	assert.Equal(t, resolver.ResolvedFilter{First: linear.DefaultPageSize}, got)
	assert.Empty(t, got.IssueFilter())
	assert.Zero(t, dir.TotalCalls())
}

func TestResolveFilterStatusWithoutTeam(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)

	got, err := r.ResolveFilter(context.Background(), resolver.Filter{Status: "in-progress"})
	require.NoError(t, err)
	assert.Equal(t, "In Progress", got.StateName)
	assert.Empty(t, got.StateID)

	got, err = r.ResolveFilter(context.Background(), resolver.Filter{Status: "open"})
	require.NoError(t, err)
	assert.Equal(t, linear.StateTypeUnstarted, got.StateType)
	assert.Empty(t, got.StateName)
	assert.Zero(t, dir.TotalCalls())
}

func TestResolveFilterCycleWithoutTeam(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)

	_, err := r.ResolveFilter(context.Background(), resolver.Filter{Cycle: "current", Assignee: "me"})
	assert.True(t, errors.Is(err, resolver.ErrCycleNeedsTeam))
	assert.Zero(t, dir.TotalCalls())
}

func TestResolveFilterPropagatesNotFound(t *testing.T) {
	r := resolver.New(newFakeDirectory(), nil)

	got, err := r.ResolveFilter(context.Background(), resolver.Filter{Team: "ENG", Status: "robot", Labels: []string{"bug"}})
	requireNotFound(t, err, "status", "robot")
	assert.Equal(t, resolver.ResolvedFilter{}, got)

	_, err = r.ResolveFilter(context.Background(), resolver.Filter{Team: "nope"})
	requireNotFound(t, err, "team", "nope")
}

func TestResolvedFilterIssueFilter(t *testing.T) {
	tests := []struct {
		name string
		in   resolver.ResolvedFilter
		want linear.IssueFilter
	}{
		{
			name: "ids",
			in: resolver.ResolvedFilter{
				AssigneeID: "u1",
				TeamID:     "t1",
				StateID:    "s1",
				LabelIDs:   []string{"l1"},
				CycleID:    "c1",
			},
			want: linear.IssueFilter{
				"assignee": map[string]any{"id": map[string]any{"eq": "u1"}},
				"team":     map[string]any{"id": map[string]any{"eq": "t1"}},
				"state":    map[string]any{"id": map[string]any{"eq": "s1"}},
				"labels":   map[string]any{"some": map[string]any{"id": map[string]any{"eq": "l1"}}},
				"cycle":    map[string]any{"id": map[string]any{"eq": "c1"}},
			},
		},
		{
			name: "unassigned",
			in:   resolver.ResolvedFilter{Unassigned: true},
			want: linear.IssueFilter{"assignee": map[string]any{"null": true}},
		},
		{
			name: "assignee name",
			in:   resolver.ResolvedFilter{AssigneeName: "ada"},
			want: linear.IssueFilter{"assignee": map[string]any{"or": []any{
				map[string]any{"name": map[string]any{"eqIgnoreCase": "ada"}},
				map[string]any{"displayName": map[string]any{"eqIgnoreCase": "ada"}},
				map[string]any{"email": map[string]any{"eqIgnoreCase": "ada"}},
			}}},
		},
		{
			name: "state name",
			in:   resolver.ResolvedFilter{StateName: "In Progress"},
			want: linear.IssueFilter{"state": map[string]any{"name": map[string]any{"eqIgnoreCase": "In Progress"}}},
		},
		{
			name: "state type",
			in:   resolver.ResolvedFilter{StateType: "unstarted"},
			want: linear.IssueFilter{"state": map[string]any{"type": map[string]any{"eq": "unstarted"}}},
		},
		{
			name: "labels are and-combined",
			in:   resolver.ResolvedFilter{LabelIDs: []string{"l1", "l2"}},
			want: linear.IssueFilter{"and": []any{
				map[string]any{"labels": map[string]any{"some": map[string]any{"id": map[string]any{"eq": "l1"}}}},
				map[string]any{"labels": map[string]any{"some": map[string]any{"id": map[string]any{"eq": "l2"}}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.in.IssueFilter()); diff != "" {
				t.Errorf("IssueFilter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveUpdate(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)
	title := "New title"

	issue, input, err := r.ResolveUpdate(context.Background(), "eng-1", resolver.Update{
		Title:    &title,
		Assignee: "alan",
		Status:   "done",
		Labels:   []string{"bug", "feature"},
		Project:  "public api",
	})
	require.NoError(t, err)
	assert.Equal(t, "issue-1", issue.ID)

	require.NotNil(t, input.Title)
	assert.Equal(t, "New title", *input.Title)
	require.NotNil(t, input.AssigneeID)
	assert.Equal(t, "user-alan", *input.AssigneeID)
	require.NotNil(t, input.StateID)
	assert.Equal(t, "st-done", *input.StateID)
	assert.Equal(t, []string{"lbl-bug", "lbl-feature"}, input.LabelIDs)
	require.NotNil(t, input.ProjectID)
	assert.Equal(t, "proj-api", *input.ProjectID)
	assert.False(t, input.Unassign)
}

func TestResolveUpdateUnassign(t *testing.T) {
	r := resolver.New(newFakeDirectory(), nil)

	_, input, err := r.ResolveUpdate(context.Background(), "ENG-1", resolver.Update{Assignee: "none"})
	require.NoError(t, err)
	assert.True(t, input.Unassign)
	assert.Nil(t, input.AssigneeID)
	assert.False(t, input.Empty())
}

func TestResolveUpdateRemoveProject(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)

	_, input, err := r.ResolveUpdate(context.Background(), "ENG-1", resolver.Update{Project: "None"})
	require.NoError(t, err)
	assert.True(t, input.NoProject)
	assert.Nil(t, input.ProjectID)
	assert.False(t, input.Empty())
	assert.Zero(t, dir.Calls("Projects"))
}

func TestResolveUpdateErrors(t *testing.T) {
	r := resolver.New(newFakeDirectory(), nil)

	_, _, err := r.ResolveUpdate(context.Background(), "ENG-404", resolver.Update{Status: "done"})
	requireNotFound(t, err, "issue", "ENG-404")

	_, input, err := r.ResolveUpdate(context.Background(), "ENG-1", resolver.Update{Status: "robot", Assignee: "me"})
	requireNotFound(t, err, "status", "robot")
	assert.True(t, input.Empty())
}

func TestResolveCreate(t *testing.T) {
	r := resolver.New(newFakeDirectory(), nil)

	input, err := r.ResolveCreate(context.Background(), resolver.Create{
		Team:     "Engineering",
		Title:    "Crash on start",
		Priority: 2,
		Assignee: "me",
		Status:   "todo",
		Labels:   []string{"bug"},
		Project:  "CLI Rewrite",
		Cycle:    "42",
	})
	require.NoError(t, err)

	want := linear.IssueCreateInput{
		TeamID:     "team-eng",
		Title:      "Crash on start",
		Priority:   2,
		StateID:    "st-todo",
		AssigneeID: "user-me",
		LabelIDs:   []string{"lbl-bug"},
		ProjectID:  "proj-cli",
		CycleID:    "cyc-42",
	}
	if diff := cmp.Diff(want, input); diff != "" {
		t.Errorf("ResolveCreate mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCreateRequiresTitleAndTeam(t *testing.T) {
	dir := newFakeDirectory()
	r := resolver.New(dir, nil)

	_, err := r.ResolveCreate(context.Background(), resolver.Create{Team: "ENG", Title: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")

	_, err = r.ResolveCreate(context.Background(), resolver.Create{Title: "Something"})
	assert.True(t, errors.Is(err, resolver.ErrTeamRequired))
	assert.Zero(t, dir.TotalCalls())
}
