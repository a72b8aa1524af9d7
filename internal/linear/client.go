package linear

import (
	"context"
	"fmt"
	"strings"
)

// IssueFilter is a Linear IssueFilter input object.
type IssueFilter map[string]any

// IssueCreateInput is the input of the issueCreate mutation.
type IssueCreateInput struct {
	TeamID      string   `json:"teamId" yaml:"team_id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    int      `json:"priority,omitempty" yaml:"priority,omitempty"`
	StateID     string   `json:"stateId,omitempty" yaml:"state_id,omitempty"`
	AssigneeID  string   `json:"assigneeId,omitempty" yaml:"assignee_id,omitempty"`
	LabelIDs    []string `json:"labelIds,omitempty" yaml:"label_ids,omitempty"`
	ProjectID   string   `json:"projectId,omitempty" yaml:"project_id,omitempty"`
	CycleID     string   `json:"cycleId,omitempty" yaml:"cycle_id,omitempty"`
}

func (in IssueCreateInput) variables() map[string]any {
	v := map[string]any{
		"teamId": in.TeamID,
		"title":  in.Title,
	}
	if in.Description != "" {
		v["description"] = in.Description
	}
	if in.Priority > 0 {
		v["priority"] = in.Priority
	}
	if in.StateID != "" {
		v["stateId"] = in.StateID
	}
	if in.AssigneeID != "" {
		v["assigneeId"] = in.AssigneeID
	}
	if len(in.LabelIDs) > 0 {
		v["labelIds"] = in.LabelIDs
	}
	if in.ProjectID != "" {
		v["projectId"] = in.ProjectID
	}
	if in.CycleID != "" {
		v["cycleId"] = in.CycleID
	}
	return v
}

// IssueUpdateInput is the input of the issueUpdate mutation. Nil fields are
// left unchanged.
type IssueUpdateInput struct {
	Title       *string
	Description *string
	Priority    *int
	StateID     *string
	AssigneeID  *string
	Unassign    bool // clears the assignee; wins over AssigneeID
	LabelIDs    []string
	ProjectID   *string
	NoProject   bool // removes the issue from its project; wins over ProjectID
}

// Empty reports whether the input would change nothing.
func (in IssueUpdateInput) Empty() bool {
	return len(in.variables()) == 0
}

func (in IssueUpdateInput) variables() map[string]any {
	v := map[string]any{}
	if in.Title != nil {
		v["title"] = *in.Title
	}
	if in.Description != nil {
		v["description"] = *in.Description
	}
	if in.Priority != nil {
		v["priority"] = *in.Priority
	}
	if in.StateID != nil {
		v["stateId"] = *in.StateID
	}
	if in.Unassign {
		v["assigneeId"] = nil
	} else if in.AssigneeID != nil {
		v["assigneeId"] = *in.AssigneeID
	}
	if in.LabelIDs != nil {
		v["labelIds"] = in.LabelIDs
	}
	if in.NoProject {
		v["projectId"] = nil
	} else if in.ProjectID != nil {
		v["projectId"] = *in.ProjectID
	}
	return v
}

// Client is the typed Linear API. Each method is exactly one Executor call.
type Client struct {
	exec *Executor
}

// NewClient creates a client on top of exec.
func NewClient(exec *Executor) *Client {
	return &Client{exec: exec}
}

// Viewer returns the authenticated user.
func (c *Client) Viewer(ctx context.Context) (*User, error) {
	resp, err := Do[struct {
		Viewer *User `json:"viewer"`
	}](ctx, c.exec, Operation{Name: "Viewer", Query: viewerQuery})
	if err != nil {
		return nil, err
	}
	if resp.Viewer == nil {
		return nil, NewAuth("no viewer for this API key")
	}
	return resp.Viewer, nil
}

// Teams lists the teams visible to the viewer.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	resp, err := Do[struct {
		Teams connection[Team] `json:"teams"`
	}](ctx, c.exec, Operation{
		Name:      "Teams",
		Query:     teamsQuery,
		Variables: map[string]any{"first": MaxPageSize},
	})
	if err != nil {
		return nil, err
	}
	return resp.Teams.Nodes, nil
}

type teamResponse struct {
	Team *struct {
		ID     string             `json:"id"`
		States *connection[State] `json:"states"`
		Labels *connection[Label] `json:"labels"`
		Cycles *connection[Cycle] `json:"cycles"`
	} `json:"team"`
}

func (c *Client) team(ctx context.Context, name, query, teamID string, first bool) (*teamResponse, error) {
	vars := map[string]any{"teamId": teamID}
	if first {
		vars["first"] = MaxPageSize
	}
	resp, err := Do[teamResponse](ctx, c.exec, Operation{Name: name, Query: query, Variables: vars})
	if err != nil {
		return nil, err
	}
	if resp.Team == nil {
		return nil, NewNotFound("team", teamID, nil)
	}
	return &resp, nil
}

// TeamStates returns the team's workflow states in the order Linear lists them.
func (c *Client) TeamStates(ctx context.Context, teamID string) ([]State, error) {
	resp, err := c.team(ctx, "TeamStates", teamStatesQuery, teamID, false)
	if err != nil {
		return nil, err
	}
	if resp.Team.States == nil {
		return nil, fmt.Errorf("no states found for team %s", teamID)
	}
	return resp.Team.States.Nodes, nil
}

// TeamLabels returns the labels available to the team.
func (c *Client) TeamLabels(ctx context.Context, teamID string) ([]Label, error) {
	resp, err := c.team(ctx, "TeamLabels", teamLabelsQuery, teamID, true)
	if err != nil {
		return nil, err
	}
	if resp.Team.Labels == nil {
		return nil, nil
	}
	return resp.Team.Labels.Nodes, nil
}

// WorkspaceLabels returns every label in the workspace.
func (c *Client) WorkspaceLabels(ctx context.Context) ([]Label, error) {
	resp, err := Do[struct {
		IssueLabels connection[Label] `json:"issueLabels"`
	}](ctx, c.exec, Operation{
		Name:      "WorkspaceLabels",
		Query:     workspaceLabelsQuery,
		Variables: map[string]any{"first": MaxPageSize},
	})
	if err != nil {
		return nil, err
	}
	return resp.IssueLabels.Nodes, nil
}

// TeamCycles returns the team's cycles.
func (c *Client) TeamCycles(ctx context.Context, teamID string) ([]Cycle, error) {
	resp, err := c.team(ctx, "TeamCycles", teamCyclesQuery, teamID, true)
	if err != nil {
		return nil, err
	}
	if resp.Team.Cycles == nil {
		return nil, nil
	}
	return resp.Team.Cycles.Nodes, nil
}

// SearchUsers returns users whose name or display name contains query, or
// whose email equals it, ignoring case.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	filter := map[string]any{
		"or": []any{
			map[string]any{"name": map[string]any{"containsIgnoreCase": query}},
			map[string]any{"displayName": map[string]any{"containsIgnoreCase": query}},
			map[string]any{"email": map[string]any{"eqIgnoreCase": query}},
		},
	}
	resp, err := Do[struct {
		Users connection[User] `json:"users"`
	}](ctx, c.exec, Operation{
		Name:      "SearchUsers",
		Query:     searchUsersQuery,
		Variables: map[string]any{"filter": filter, "first": 50},
	})
	if err != nil {
		return nil, err
	}
	return resp.Users.Nodes, nil
}

// Projects lists workspace projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	resp, err := Do[struct {
		Projects connection[Project] `json:"projects"`
	}](ctx, c.exec, Operation{
		Name:      "Projects",
		Query:     projectsQuery,
		Variables: map[string]any{"first": MaxPageSize},
	})
	if err != nil {
		return nil, err
	}
	return resp.Projects.Nodes, nil
}

// ClampPageSize maps a requested page size onto [1, MaxPageSize], using
// DefaultPageSize for zero or negative values.
func ClampPageSize(first int) int {
	switch {
	case first <= 0:
		return DefaultPageSize
	case first > MaxPageSize:
		return MaxPageSize
	default:
		return first
	}
}

// ListIssues returns at most first issues matching filter, most recently
// updated first. A nil filter matches every issue.
func (c *Client) ListIssues(ctx context.Context, filter IssueFilter, first int) ([]Issue, error) {
	vars := map[string]any{"first": ClampPageSize(first)}
	if len(filter) > 0 {
		vars["filter"] = map[string]any(filter)
	}
	resp, err := Do[struct {
		Issues connection[Issue] `json:"issues"`
	}](ctx, c.exec, Operation{Name: "Issues", Query: issuesQuery, Variables: vars})
	if err != nil {
		return nil, err
	}
	return resp.Issues.Nodes, nil
}

// SearchIssues runs Linear's full-text issue search for term, narrowed by
// filter. A nil filter searches every issue.
func (c *Client) SearchIssues(ctx context.Context, term string, filter IssueFilter, first int, includeArchived bool) ([]Issue, error) {
	vars := map[string]any{
		"term":            term,
		"first":           ClampPageSize(first),
		"includeArchived": includeArchived,
	}
	if len(filter) > 0 {
		vars["filter"] = map[string]any(filter)
	}
	resp, err := Do[struct {
		SearchIssues connection[Issue] `json:"searchIssues"`
	}](ctx, c.exec, Operation{Name: "SearchIssues", Query: searchIssuesQuery, Variables: vars})
	if err != nil {
		return nil, err
	}
	return resp.SearchIssues.Nodes, nil
}

// SearchProjects returns projects whose name contains term, ignoring case.
func (c *Client) SearchProjects(ctx context.Context, term string, first int, includeArchived bool) ([]Project, error) {
	resp, err := Do[struct {
		Projects connection[Project] `json:"projects"`
	}](ctx, c.exec, Operation{
		Name:  "SearchProjects",
		Query: searchProjectsQuery,
		Variables: map[string]any{
			"term":            term,
			"first":           ClampPageSize(first),
			"includeArchived": includeArchived,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.Projects.Nodes, nil
}

// Issue fetches one issue by UUID, identifier (ENG-123) or Linear URL.
func (c *Client) Issue(ctx context.Context, ref string) (*Issue, error) {
	id := IssueRef(ref)
	resp, err := Do[struct {
		Issue *Issue `json:"issue"`
	}](ctx, c.exec, Operation{
		Name:      "Issue",
		Query:     issueQuery,
		Variables: map[string]any{"id": id},
	})
	if err != nil {
		return nil, issueNotFound(err, id)
	}
	if resp.Issue == nil {
		return nil, NewNotFound("issue", id, nil)
	}
	return resp.Issue, nil
}

// CreateIssue creates an issue.
func (c *Client) CreateIssue(ctx context.Context, input IssueCreateInput) (*Issue, error) {
	resp, err := Do[struct {
		IssueCreate struct {
			Success bool   `json:"success"`
			Issue   *Issue `json:"issue"`
		} `json:"issueCreate"`
	}](ctx, c.exec, Operation{
		Name:      "CreateIssue",
		Query:     createIssueMutation,
		Variables: map[string]any{"input": input.variables()},
	})
	if err != nil {
		return nil, err
	}
	if !resp.IssueCreate.Success || resp.IssueCreate.Issue == nil {
		return nil, fmt.Errorf("issue creation reported as unsuccessful")
	}
	return resp.IssueCreate.Issue, nil
}

// UpdateIssue applies input to the issue with the given ID. The ID is sent
// as given; callers resolve user-typed references first.
func (c *Client) UpdateIssue(ctx context.Context, id string, input IssueUpdateInput) (*Issue, error) {
	resp, err := Do[struct {
		IssueUpdate struct {
			Success bool   `json:"success"`
			Issue   *Issue `json:"issue"`
		} `json:"issueUpdate"`
	}](ctx, c.exec, Operation{
		Name:      "UpdateIssue",
		Query:     updateIssueMutation,
		Variables: map[string]any{"id": id, "input": input.variables()},
	})
	if err != nil {
		return nil, issueNotFound(err, id)
	}
	if !resp.IssueUpdate.Success || resp.IssueUpdate.Issue == nil {
		return nil, fmt.Errorf("issue update reported as unsuccessful")
	}
	return resp.IssueUpdate.Issue, nil
}

// CreateComment adds a markdown comment to an issue. issueID must be the
// issue's UUID.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) (*Comment, error) {
	resp, err := Do[struct {
		CommentCreate struct {
			Success bool     `json:"success"`
			Comment *Comment `json:"comment"`
		} `json:"commentCreate"`
	}](ctx, c.exec, Operation{
		Name:  "CreateComment",
		Query: createCommentMutation,
		Variables: map[string]any{
			"input": map[string]any{"issueId": issueID, "body": body},
		},
	})
	if err != nil {
		return nil, err
	}
	if !resp.CommentCreate.Success || resp.CommentCreate.Comment == nil {
		return nil, fmt.Errorf("comment creation reported as unsuccessful")
	}
	return resp.CommentCreate.Comment, nil
}

// IssueComments returns up to first comments on an issue, oldest first.
func (c *Client) IssueComments(ctx context.Context, ref string, first int) ([]Comment, error) {
	id := IssueRef(ref)
	resp, err := Do[struct {
		Issue *struct {
			Comments connection[Comment] `json:"comments"`
		} `json:"issue"`
	}](ctx, c.exec, Operation{
		Name:      "IssueComments",
		Query:     issueCommentsQuery,
		Variables: map[string]any{"id": id, "first": ClampPageSize(first)},
	})
	if err != nil {
		return nil, issueNotFound(err, id)
	}
	if resp.Issue == nil {
		return nil, NewNotFound("issue", id, nil)
	}
	return resp.Issue.Comments.Nodes, nil
}

// issueNotFound turns Linear's "Entity not found" GraphQL error for an issue
// lookup into a NotFound error. Other errors pass through.
func issueNotFound(err error, id string) error {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Kind != KindGraphQLValidation {
		return err
	}
	if strings.Contains(strings.ToLower(apiErr.Message), "entity not found") {
		nf := NewNotFound("issue", id, nil)
		nf.Err = err
		return nf
	}
	return err
}
