package linear

import (
	"encoding/json"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the Linear GraphQL API endpoint.
	DefaultAPIEndpoint = "https://api.linear.app/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the default number of issues returned by list queries.
	DefaultPageSize = 20

	// MaxPageSize is the largest page Linear accepts for a single connection.
	MaxPageSize = 250

	// maxResponseSize bounds how much of a response body is read into memory.
	maxResponseSize = 50 * 1024 * 1024
)

// Request is the JSON body of a GraphQL POST.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName *string        `json:"operationName"`
}

// Envelope is the standard GraphQL response envelope.
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// HasData reports whether the envelope carries a non-null data member.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// GraphQLError is one entry of a GraphQL errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns extensions.code, or "" when absent.
func (e GraphQLError) Code() string {
	if e.Extensions == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}

// Location points into the query text that triggered a GraphQL error.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// User represents a Linear user.
type User struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Active      bool   `json:"active,omitempty" yaml:"active,omitempty"`
}

// Team represents a Linear team.
type Team struct {
	ID   string `json:"id" yaml:"id"`
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
}

// State represents a workflow state in Linear.
type State struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Type     string  `json:"type" yaml:"type"` // "triage", "backlog", "unstarted", "started", "completed", "canceled"
	Position float64 `json:"position" yaml:"position"`
}

// Workflow state types.
const (
	StateTypeTriage    = "triage"
	StateTypeBacklog   = "backlog"
	StateTypeUnstarted = "unstarted"
	StateTypeStarted   = "started"
	StateTypeCompleted = "completed"
	StateTypeCanceled  = "canceled"
)

// Label represents an issue label.
type Label struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Labels represents paginated labels on an issue.
type Labels struct {
	Nodes []Label `json:"nodes" yaml:"nodes"`
}

// Cycle represents a team cycle (sprint).
type Cycle struct {
	ID       string `json:"id" yaml:"id"`
	Number   int    `json:"number" yaml:"number"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	StartsAt string `json:"startsAt,omitempty" yaml:"startsAt,omitempty"`
	EndsAt   string `json:"endsAt,omitempty" yaml:"endsAt,omitempty"`
	IsActive bool   `json:"isActive" yaml:"isActive"`
}

// Project represents a Linear project.
type Project struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	State string `json:"state,omitempty" yaml:"state,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Comment represents a comment on an issue.
type Comment struct {
	ID        string `json:"id" yaml:"id"`
	Body      string `json:"body" yaml:"body"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	User      *User  `json:"user,omitempty" yaml:"user,omitempty"`
}

// Issue represents an issue from the Linear API.
type Issue struct {
	ID          string   `json:"id" yaml:"id"`
	Identifier  string   `json:"identifier" yaml:"identifier"` // e.g., "TEAM-123"
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string   `json:"url" yaml:"url"`
	Priority    int      `json:"priority" yaml:"priority"` // 0=no priority, 1=urgent, 2=high, 3=medium, 4=low
	State       *State   `json:"state,omitempty" yaml:"state,omitempty"`
	Assignee    *User    `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Team        *Team    `json:"team,omitempty" yaml:"team,omitempty"`
	Labels      *Labels  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Cycle       *Cycle   `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Project     *Project `json:"project,omitempty" yaml:"project,omitempty"`
	CreatedAt   string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string   `json:"updatedAt" yaml:"updatedAt"`
	CompletedAt string   `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
}

// LabelNames returns the names of the issue's labels.
func (i *Issue) LabelNames() []string {
	if i.Labels == nil {
		return nil
	}
	names := make([]string, 0, len(i.Labels.Nodes))
	for _, l := range i.Labels.Nodes {
		names = append(names, l.Name)
	}
	return names
}

// PriorityName returns Linear's display name for a priority value.
func PriorityName(p int) string {
	switch p {
	case 1:
		return "Urgent"
	case 2:
		return "High"
	case 3:
		return "Medium"
	case 4:
		return "Low"
	default:
		return "No priority"
	}
}

// PageInfo carries relay-style pagination state.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage" yaml:"hasNextPage"`
	EndCursor   string `json:"endCursor" yaml:"endCursor"`
}

// connection is the generic shape of a Linear list field.
type connection[T any] struct {
	Nodes    []T      `json:"nodes" yaml:"nodes"`
	PageInfo PageInfo `json:"pageInfo" yaml:"pageInfo"`
}
