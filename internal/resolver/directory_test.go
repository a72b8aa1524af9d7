package resolver_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// fakeDirectory serves canned data and counts calls per method.
type fakeDirectory struct {
	mu    sync.Mutex
	calls map[string]int

	viewer          *linear.User
	teams           []linear.Team
	states          map[string][]linear.State
	labels          map[string][]linear.Label
	workspaceLabels []linear.Label
	cycles          map[string][]linear.Cycle
	users           []linear.User
	projects        []linear.Project
	issues          map[string]*linear.Issue

	// failures makes the next n calls of a method fail with the error.
	failures map[string][]error
	delay    time.Duration
	gate     chan struct{}
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		calls:  map[string]int{},
		viewer: &linear.User{ID: "user-me", Name: "Ada Lovelace", Email: "ada@example.com"},
		teams: []linear.Team{
			{ID: "team-eng", Key: "ENG", Name: "Engineering"},
			{ID: "team-des", Key: "DES", Name: "Design"},
		},
		states: map[string][]linear.State{
			"team-eng": {
				{ID: "st-backlog", Name: "Backlog", Type: linear.StateTypeBacklog, Position: 0},
				{ID: "st-todo", Name: "Todo", Type: linear.StateTypeUnstarted, Position: 1},
				{ID: "st-progress", Name: "In Progress", Type: linear.StateTypeStarted, Position: 2},
				{ID: "st-done", Name: "Done", Type: linear.StateTypeCompleted, Position: 3},
				{ID: "st-canceled", Name: "Canceled", Type: linear.StateTypeCanceled, Position: 4},
			},
			"team-des": {
				{ID: "des-shipped", Name: "Shipped", Type: linear.StateTypeCompleted, Position: 3},
				{ID: "des-ready", Name: "Ready", Type: linear.StateTypeUnstarted, Position: 1},
				{ID: "des-idea", Name: "Idea", Type: linear.StateTypeUnstarted, Position: 0},
			},
		},
		labels: map[string][]linear.Label{
			"team-eng": {
				{ID: "lbl-bug", Name: "Bug"},
				{ID: "lbl-feature", Name: "Feature"},
				{ID: "lbl-docs", Name: "Docs"},
			},
		},
		workspaceLabels: []linear.Label{
			{ID: "ws-security", Name: "Security"},
		},
		cycles: map[string][]linear.Cycle{
			"team-eng": {
				{ID: "cyc-41", Number: 41, Name: "Sprint 41"},
				{ID: "cyc-42", Number: 42, Name: "Sprint 42", IsActive: true},
				{ID: "cyc-43", Number: 43},
			},
		},
		users: []linear.User{
			{ID: "user-ada", Name: "Ada Lovelace", Email: "ada@example.com"},
			{ID: "user-alan", Name: "Alan Turing", DisplayName: "alan", Email: "alan@example.com"},
			{ID: "user-alan2", Name: "Alan Kay", DisplayName: "alan.k", Email: "kay@example.com"},
			{ID: "user-sam1", Name: "Sam", Email: "sam@one.example"},
			{ID: "user-sam2", Name: "Sam", Email: "sam@two.example"},
		},
		projects: []linear.Project{
			{ID: "proj-cli", Name: "CLI Rewrite"},
			{ID: "proj-api", Name: "Public API"},
		},
		issues: map[string]*linear.Issue{
			"ENG-1": {ID: "issue-1", Identifier: "ENG-1", Team: &linear.Team{ID: "team-eng", Key: "ENG"}},
		},
		failures: map[string][]error{},
	}
}

func (f *fakeDirectory) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls[method]++
	var err error
	if errs := f.failures[method]; len(errs) > 0 {
		err, f.failures[method] = errs[0], errs[1:]
	}
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return linear.NewCancelled(ctx.Err())
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if ctx.Err() != nil {
		return linear.NewCancelled(ctx.Err())
	}
	return err
}

func (f *fakeDirectory) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeDirectory) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeDirectory) Viewer(ctx context.Context) (*linear.User, error) {
	if err := f.enter(ctx, "Viewer"); err != nil {
		return nil, err
	}
	return f.viewer, nil
}

func (f *fakeDirectory) Teams(ctx context.Context) ([]linear.Team, error) {
	if err := f.enter(ctx, "Teams"); err != nil {
		return nil, err
	}
	return f.teams, nil
}

func (f *fakeDirectory) TeamStates(ctx context.Context, teamID string) ([]linear.State, error) {
	if err := f.enter(ctx, "TeamStates"); err != nil {
		return nil, err
	}
	return f.states[teamID], nil
}

func (f *fakeDirectory) TeamLabels(ctx context.Context, teamID string) ([]linear.Label, error) {
	if err := f.enter(ctx, "TeamLabels"); err != nil {
		return nil, err
	}
	return f.labels[teamID], nil
}

func (f *fakeDirectory) WorkspaceLabels(ctx context.Context) ([]linear.Label, error) {
	if err := f.enter(ctx, "WorkspaceLabels"); err != nil {
		return nil, err
	}
	return f.workspaceLabels, nil
}

func (f *fakeDirectory) TeamCycles(ctx context.Context, teamID string) ([]linear.Cycle, error) {
	if err := f.enter(ctx, "TeamCycles"); err != nil {
		return nil, err
	}
	return f.cycles[teamID], nil
}

func (f *fakeDirectory) SearchUsers(ctx context.Context, query string) ([]linear.User, error) {
	if err := f.enter(ctx, "SearchUsers"); err != nil {
		return nil, err
	}
	var out []linear.User
	for _, u := range f.users {
		if containsFold(u.Name, query) || containsFold(u.DisplayName, query) || containsFold(u.Email, query) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeDirectory) Projects(ctx context.Context) ([]linear.Project, error) {
	if err := f.enter(ctx, "Projects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeDirectory) Issue(ctx context.Context, ref string) (*linear.Issue, error) {
	if err := f.enter(ctx, "Issue"); err != nil {
		return nil, err
	}
	issue, ok := f.issues[linear.IssueRef(ref)]
	if !ok {
		return nil, linear.NewNotFound("issue", ref, nil)
	}
	return issue, nil
}

func containsFold(s, substr string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
