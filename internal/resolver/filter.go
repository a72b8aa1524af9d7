package resolver

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// Filter holds human-typed issue filter values. Empty fields are ignored;
// an empty Filter matches every issue, bounded by First.
type Filter struct {
	Assignee string
	Status   string
	Team     string
	Labels   []string
	Cycle    string
	First    int
}

// ResolvedFilter is a Filter with every value replaced by a canonical ID,
// an explicit sentinel, or a name the server matches itself. It is never
// modified after ResolveFilter returns it.
type ResolvedFilter struct {
	AssigneeID   string
	Unassigned   bool
	AssigneeName string
	TeamID       string
	StateID      string
	StateName    string
	StateType    string
	LabelIDs     []string
	CycleID      string
	First        int
}

// IssueFilter builds the GraphQL IssueFilter for f. Labels are AND-combined.
func (f ResolvedFilter) IssueFilter() linear.IssueFilter {
	filter := linear.IssueFilter{}

	switch {
	case f.Unassigned:
		filter["assignee"] = map[string]any{"null": true}
	case f.AssigneeID != "":
		filter["assignee"] = map[string]any{"id": map[string]any{"eq": f.AssigneeID}}
	case f.AssigneeName != "":
		filter["assignee"] = map[string]any{"or": []any{
			map[string]any{"name": map[string]any{"eqIgnoreCase": f.AssigneeName}},
			map[string]any{"displayName": map[string]any{"eqIgnoreCase": f.AssigneeName}},
			map[string]any{"email": map[string]any{"eqIgnoreCase": f.AssigneeName}},
		}}
	}

	if f.TeamID != "" {
		filter["team"] = map[string]any{"id": map[string]any{"eq": f.TeamID}}
	}

	switch {
	case f.StateID != "":
		filter["state"] = map[string]any{"id": map[string]any{"eq": f.StateID}}
	case f.StateName != "":
		filter["state"] = map[string]any{"name": map[string]any{"eqIgnoreCase": f.StateName}}
	case f.StateType != "":
		filter["state"] = map[string]any{"type": map[string]any{"eq": f.StateType}}
	}

	switch len(f.LabelIDs) {
	case 0:
	case 1:
		filter["labels"] = labelFilter(f.LabelIDs[0])
	default:
		and := make([]any, len(f.LabelIDs))
		for i, id := range f.LabelIDs {
			and[i] = map[string]any{"labels": labelFilter(id)}
		}
		filter["and"] = and
	}

	if f.CycleID != "" {
		filter["cycle"] = map[string]any{"id": map[string]any{"eq": f.CycleID}}
	}
	return filter
}

func labelFilter(id string) map[string]any {
	return map[string]any{"some": map[string]any{"id": map[string]any{"eq": id}}}
}

// ErrCycleNeedsTeam is returned when a cycle filter has no team to scope it.
var ErrCycleNeedsTeam = errors.New("--cycle requires a team: pass --team or set default_team")

// ResolveFilter resolves f in two phases: team and assignee concurrently,
// then status, labels and cycle concurrently (they are scoped by the team).
// The first failure cancels the rest and is returned.
func (r *Resolver) ResolveFilter(ctx context.Context, f Filter) (ResolvedFilter, error) {
	out := ResolvedFilter{First: linear.ClampPageSize(f.First)}
	if f.Cycle != "" && f.Team == "" && !IsRawID(f.Cycle) {
		return ResolvedFilter{}, ErrCycleNeedsTeam
	}

	g, gctx := errgroup.WithContext(ctx)
	if f.Team != "" {
		g.Go(func() error {
			team, err := r.Team(gctx, f.Team)
			if err != nil {
				return err
			}
			out.TeamID = team.ID
			return nil
		})
	}
	if f.Assignee != "" {
		g.Go(func() error {
			a, err := r.Assignee(gctx, f.Assignee)
			if err != nil {
				return err
			}
			out.AssigneeID, out.Unassigned, out.AssigneeName = a.ID, a.Unassigned, a.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ResolvedFilter{}, err
	}

	g, gctx = errgroup.WithContext(ctx)
	if f.Status != "" {
		g.Go(func() error {
			if out.TeamID == "" {
				out.StateName, out.StateType = statusWithoutTeam(f.Status)
				return nil
			}
			state, err := r.Status(gctx, out.TeamID, f.Status)
			if err != nil {
				return err
			}
			out.StateID = state.ID
			return nil
		})
	}
	var labelIDs []string
	if len(f.Labels) > 0 {
		g.Go(func() error {
			ids, err := r.Labels(gctx, out.TeamID, f.Labels)
			labelIDs = ids
			return err
		})
	}
	if f.Cycle != "" {
		g.Go(func() error {
			cycle, err := r.Cycle(gctx, out.TeamID, f.Cycle)
			if err != nil {
				return err
			}
			out.CycleID = cycle.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ResolvedFilter{}, err
	}
	out.LabelIDs = labelIDs
	return out, nil
}

// statusWithoutTeam normalizes a status for server-side matching when no
// team's workflow is available.
func statusWithoutTeam(raw string) (name, stateType string) {
	if strings.EqualFold(strings.TrimSpace(raw), "open") {
		return "", linear.StateTypeUnstarted
	}
	return NormalizeStatus(raw), ""
}

// Labels resolves label names concurrently, preserving their order. The
// first name that does not resolve fails the whole call.
func (r *Resolver) Labels(ctx context.Context, teamID string, names []string) ([]string, error) {
	ids := make([]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			label, err := r.Label(gctx, teamID, name)
			if err != nil {
				return err
			}
			ids[i] = label.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Update holds human-typed issue changes. Empty strings and nil slices leave
// the field unchanged. Assignee "unassigned" or "none" clears the assignee
// and Project "none" removes the issue from its project.
type Update struct {
	Title       *string
	Description *string
	Priority    *int
	Assignee    string
	Status      string
	Labels      []string
	Project     string
}

// ResolveUpdate fetches the target issue (its team scopes status and label
// names), then resolves the changed fields concurrently.
func (r *Resolver) ResolveUpdate(ctx context.Context, ref string, u Update) (*linear.Issue, linear.IssueUpdateInput, error) {
	input := linear.IssueUpdateInput{
		Title:       u.Title,
		Description: u.Description,
		Priority:    u.Priority,
	}

	issue, err := r.dir.Issue(ctx, ref)
	if err != nil {
		return nil, input, err
	}
	teamID := ""
	if issue.Team != nil {
		teamID = issue.Team.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	if u.Assignee != "" {
		g.Go(func() error {
			switch strings.ToLower(strings.TrimSpace(u.Assignee)) {
			case "unassigned", "none":
				input.Unassign = true
				return nil
			}
			user, err := r.User(gctx, u.Assignee)
			if err != nil {
				return err
			}
			input.AssigneeID = &user.ID
			return nil
		})
	}
	if u.Status != "" {
		g.Go(func() error {
			state, err := r.Status(gctx, teamID, u.Status)
			if err != nil {
				return err
			}
			input.StateID = &state.ID
			return nil
		})
	}
	if u.Labels != nil {
		g.Go(func() error {
			ids, err := r.Labels(gctx, teamID, u.Labels)
			if err != nil {
				return err
			}
			input.LabelIDs = ids
			return nil
		})
	}
	if u.Project != "" {
		g.Go(func() error {
			if strings.EqualFold(strings.TrimSpace(u.Project), "none") {
				input.NoProject = true
				return nil
			}
			project, err := r.Project(gctx, u.Project)
			if err != nil {
				return err
			}
			input.ProjectID = &project.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, linear.IssueUpdateInput{}, err
	}
	return issue, input, nil
}

// Create holds human-typed values for a new issue.
type Create struct {
	Team        string
	Title       string
	Description string
	Priority    int
	Assignee    string
	Status      string
	Labels      []string
	Project     string
	Cycle       string
}

// ErrTeamRequired is returned when an issue is created without a team.
var ErrTeamRequired = errors.New("a team is required: pass --team or set default_team")

// ResolveCreate resolves the team first, then every other named value
// concurrently.
func (r *Resolver) ResolveCreate(ctx context.Context, c Create) (linear.IssueCreateInput, error) {
	input := linear.IssueCreateInput{
		Title:       c.Title,
		Description: c.Description,
		Priority:    c.Priority,
	}
	if strings.TrimSpace(c.Title) == "" {
		return input, errors.New("title is required")
	}
	if c.Team == "" {
		return input, ErrTeamRequired
	}
	team, err := r.Team(ctx, c.Team)
	if err != nil {
		return input, err
	}
	input.TeamID = team.ID

	g, gctx := errgroup.WithContext(ctx)
	if c.Assignee != "" {
		g.Go(func() error {
			user, err := r.User(gctx, c.Assignee)
			if err != nil {
				return err
			}
			input.AssigneeID = user.ID
			return nil
		})
	}
	if c.Status != "" {
		g.Go(func() error {
			state, err := r.Status(gctx, team.ID, c.Status)
			if err != nil {
				return err
			}
			input.StateID = state.ID
			return nil
		})
	}
	if len(c.Labels) > 0 {
		g.Go(func() error {
			ids, err := r.Labels(gctx, team.ID, c.Labels)
			if err != nil {
				return err
			}
			input.LabelIDs = ids
			return nil
		})
	}
	if c.Project != "" {
		g.Go(func() error {
			project, err := r.Project(gctx, c.Project)
			if err != nil {
				return err
			}
			input.ProjectID = project.ID
			return nil
		})
	}
	if c.Cycle != "" {
		g.Go(func() error {
			cycle, err := r.Cycle(gctx, team.ID, c.Cycle)
			if err != nil {
				return err
			}
			input.CycleID = cycle.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return linear.IssueCreateInput{}, err
	}
	return input, nil
}
