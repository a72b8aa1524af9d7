// Package resolver turns human-typed filter and update values (team keys,
// status names, label names, "me", "current") into the canonical IDs the
// Linear API expects.
//
// Every lookup that needs the network goes through a Directory, normally a
// *linear.Client, so it inherits the client's retry policy. Lookups are
// memoized in a Cache that lives as long as the Resolver, which is meant to
// be one command invocation.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// Directory is the read side of the Linear API the resolver needs.
type Directory interface {
	Viewer(ctx context.Context) (*linear.User, error)
	Teams(ctx context.Context) ([]linear.Team, error)
	TeamStates(ctx context.Context, teamID string) ([]linear.State, error)
	TeamLabels(ctx context.Context, teamID string) ([]linear.Label, error)
	WorkspaceLabels(ctx context.Context) ([]linear.Label, error)
	TeamCycles(ctx context.Context, teamID string) ([]linear.Cycle, error)
	SearchUsers(ctx context.Context, query string) ([]linear.User, error)
	Projects(ctx context.Context) ([]linear.Project, error)
	Issue(ctx context.Context, ref string) (*linear.Issue, error)
}

// Resolver resolves names to IDs through a Directory.
type Resolver struct {
	dir    Directory
	cache  *Cache
	logger *slog.Logger
}

// New creates a resolver with a fresh cache. A nil logger discards output.
func New(dir Directory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{dir: dir, cache: NewCache(), logger: logger}
}

// Cache exposes the resolver's cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// IsRawID reports whether s is already a canonical Linear ID (a UUID).
func IsRawID(s string) bool {
	return uuid.Validate(s) == nil
}

// Viewer returns the authenticated user, fetched at most once.
func (r *Resolver) Viewer(ctx context.Context) (*linear.User, error) {
	return Lookup(ctx, r.cache, Key{Kind: KindViewer}, r.dir.Viewer)
}

func (r *Resolver) teams(ctx context.Context) ([]linear.Team, error) {
	return Lookup(ctx, r.cache, Key{Kind: KindTeams}, r.dir.Teams)
}

func (r *Resolver) states(ctx context.Context, teamID string) ([]linear.State, error) {
	return Lookup(ctx, r.cache, Key{Kind: KindStates, Team: teamID}, func(ctx context.Context) ([]linear.State, error) {
		return r.dir.TeamStates(ctx, teamID)
	})
}

func (r *Resolver) labels(ctx context.Context, teamID string) ([]linear.Label, error) {
	if teamID == "" {
		return Lookup(ctx, r.cache, Key{Kind: KindWorkspaceLabels}, r.dir.WorkspaceLabels)
	}
	return Lookup(ctx, r.cache, Key{Kind: KindLabels, Team: teamID}, func(ctx context.Context) ([]linear.Label, error) {
		return r.dir.TeamLabels(ctx, teamID)
	})
}

func (r *Resolver) cycles(ctx context.Context, teamID string) ([]linear.Cycle, error) {
	return Lookup(ctx, r.cache, Key{Kind: KindCycles, Team: teamID}, func(ctx context.Context) ([]linear.Cycle, error) {
		return r.dir.TeamCycles(ctx, teamID)
	})
}

func (r *Resolver) projects(ctx context.Context) ([]linear.Project, error) {
	return Lookup(ctx, r.cache, Key{Kind: KindProjects}, r.dir.Projects)
}

// Team resolves a team key or name, ignoring case.
func (r *Resolver) Team(ctx context.Context, raw string) (*linear.Team, error) {
	raw = strings.TrimSpace(raw)
	if IsRawID(raw) {
		return &linear.Team{ID: raw}, nil
	}
	return Lookup(ctx, r.cache, Key{Kind: KindTeam, Raw: strings.ToLower(raw)}, func(ctx context.Context) (*linear.Team, error) {
		teams, err := r.teams(ctx)
		if err != nil {
			return nil, err
		}
		var matches []linear.Team
		for _, t := range teams {
			if strings.EqualFold(t.Key, raw) || strings.EqualFold(t.Name, raw) {
				matches = append(matches, t)
			}
		}
		switch len(matches) {
		case 1:
			r.logger.Debug("resolved team", "value", raw, "id", matches[0].ID)
			return &matches[0], nil
		case 0:
			var keys, names []string
			for _, t := range teams {
				keys = append(keys, t.Key)
				names = append(names, t.Key, t.Name)
			}
			return nil, notFound("team", raw, names, keys)
		default:
			keys := make([]string, len(matches))
			for i, t := range matches {
				keys[i] = t.Key
			}
			return nil, linear.NewNotFound("team", raw, keys)
		}
	})
}

// notFound reports raw as unresolvable, offering the closest candidates or,
// when nothing is close, every valid value.
func notFound(entity, raw string, candidates, valid []string) error {
	if closest := Suggest(raw, candidates); len(closest) > 0 {
		return linear.NewNotFoundSuggest(entity, raw, closest)
	}
	return linear.NewNotFound(entity, raw, valid)
}

// Assignee is a resolved assignee filter value. Exactly one field is set.
type Assignee struct {
	ID         string
	Unassigned bool
	Name       string // matched server-side against name, display name and email
}

// Assignee resolves an assignee filter value. "me" costs one viewer lookup
// per invocation; "unassigned" and "none" need no lookup; anything else that
// is not a raw ID is passed through for server-side matching.
func (r *Resolver) Assignee(ctx context.Context, raw string) (Assignee, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "me":
		viewer, err := r.Viewer(ctx)
		if err != nil {
			return Assignee{}, err
		}
		return Assignee{ID: viewer.ID}, nil
	case "unassigned", "none":
		return Assignee{Unassigned: true}, nil
	}
	if IsRawID(raw) {
		return Assignee{ID: raw}, nil
	}
	return Assignee{Name: raw}, nil
}

// User resolves a user for mutations, which need an ID. The value must match
// exactly one user's name, display name or email, ignoring case.
func (r *Resolver) User(ctx context.Context, raw string) (*linear.User, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "me") {
		return r.Viewer(ctx)
	}
	if IsRawID(raw) {
		return &linear.User{ID: raw}, nil
	}
	key := strings.ToLower(raw)
	return Lookup(ctx, r.cache, Key{Kind: KindUser, Raw: key}, func(ctx context.Context) (*linear.User, error) {
		users, err := Lookup(ctx, r.cache, Key{Kind: KindUsers, Raw: key}, func(ctx context.Context) ([]linear.User, error) {
			return r.dir.SearchUsers(ctx, raw)
		})
		if err != nil {
			return nil, err
		}
		var matches []linear.User
		var names []string
		for _, u := range users {
			names = append(names, u.Name)
			if strings.EqualFold(u.Name, raw) || strings.EqualFold(u.DisplayName, raw) || strings.EqualFold(u.Email, raw) {
				matches = append(matches, u)
			}
		}
		switch len(matches) {
		case 1:
			return &matches[0], nil
		case 0:
			return nil, notFound("user", raw, names, names)
		default:
			var emails []string
			for _, u := range matches {
				emails = append(emails, u.Email)
			}
			return nil, linear.NewNotFound("user", raw, emails)
		}
	})
}

type statusAlias struct {
	name      string
	stateType string
}

// statusAliases maps lower-cased user input to a canonical state name and
// the state type used when the team has no state by that name.
var statusAliases = map[string]statusAlias{
	"todo":        {"Todo", linear.StateTypeUnstarted},
	"to do":       {"Todo", linear.StateTypeUnstarted},
	"in progress": {"In Progress", linear.StateTypeStarted},
	"inprogress":  {"In Progress", linear.StateTypeStarted},
	"in_progress": {"In Progress", linear.StateTypeStarted},
	"in-progress": {"In Progress", linear.StateTypeStarted},
	"wip":         {"In Progress", linear.StateTypeStarted},
	"started":     {"In Progress", linear.StateTypeStarted},
	"done":        {"Done", linear.StateTypeCompleted},
	"completed":   {"Done", linear.StateTypeCompleted},
	"complete":    {"Done", linear.StateTypeCompleted},
	"closed":      {"Done", linear.StateTypeCompleted},
	"canceled":    {"Canceled", linear.StateTypeCanceled},
	"cancelled":   {"Canceled", linear.StateTypeCanceled},
	"backlog":     {"Backlog", linear.StateTypeBacklog},
	"triage":      {"Triage", linear.StateTypeTriage},
}

// NormalizeStatus maps a status alias to its canonical name. "open" maps to
// "". Unknown values are title-cased.
func NormalizeStatus(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "open" {
		return ""
	}
	if a, ok := statusAliases[lower]; ok {
		return a.name
	}
	words := strings.Fields(lower)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}

// byPosition returns states ordered by workflow position, keeping the
// server's order for ties.
func byPosition(states []linear.State) []linear.State {
	sorted := append([]linear.State(nil), states...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}

func firstOfType(states []linear.State, stateType string) *linear.State {
	for _, s := range byPosition(states) {
		if s.Type == stateType {
			return &s
		}
	}
	return nil
}

func stateNames(states []linear.State) []string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.Name
	}
	return names
}

// Status resolves a status name against the team's workflow states: an
// exact name match wins, then the alias table. "open" is the team's first
// unstarted state and "backlog" falls back to it when the team has no
// backlog.
func (r *Resolver) Status(ctx context.Context, teamID, raw string) (*linear.State, error) {
	raw = strings.TrimSpace(raw)
	if IsRawID(raw) {
		return &linear.State{ID: raw}, nil
	}
	lower := strings.ToLower(raw)
	return Lookup(ctx, r.cache, Key{Kind: KindStatus, Team: teamID, Raw: lower}, func(ctx context.Context) (*linear.State, error) {
		states, err := r.states(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if s := matchStatus(states, lower); s != nil {
			r.logger.Debug("resolved status", "value", raw, "team", teamID, "id", s.ID)
			return s, nil
		}
		return nil, linear.NewNotFound("status", raw, stateNames(states))
	})
}

func matchStatus(states []linear.State, lower string) *linear.State {
	for _, s := range states {
		if strings.EqualFold(s.Name, lower) {
			return &s
		}
	}
	if lower == "open" {
		return firstOfType(states, linear.StateTypeUnstarted)
	}
	alias, ok := statusAliases[lower]
	if !ok {
		return nil
	}
	for _, s := range states {
		if strings.EqualFold(s.Name, alias.name) {
			return &s
		}
	}
	if s := firstOfType(states, alias.stateType); s != nil {
		return s
	}
	if alias.stateType == linear.StateTypeBacklog {
		return firstOfType(states, linear.StateTypeUnstarted)
	}
	return nil
}

// StateOfType returns the team's first state of the given type, used to
// close (completed) and reopen (unstarted) issues.
func (r *Resolver) StateOfType(ctx context.Context, teamID, stateType string) (*linear.State, error) {
	states, err := r.states(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if s := firstOfType(states, stateType); s != nil {
		return s, nil
	}
	return nil, linear.NewNotFound("status", stateType, stateNames(states))
}

// Label resolves one label name against the team's labels, or the
// workspace's when teamID is empty.
func (r *Resolver) Label(ctx context.Context, teamID, raw string) (*linear.Label, error) {
	raw = strings.TrimSpace(raw)
	if IsRawID(raw) {
		return &linear.Label{ID: raw}, nil
	}
	return Lookup(ctx, r.cache, Key{Kind: KindLabel, Team: teamID, Raw: strings.ToLower(raw)}, func(ctx context.Context) (*linear.Label, error) {
		labels, err := r.labels(ctx, teamID)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(labels))
		for i, l := range labels {
			if strings.EqualFold(l.Name, raw) {
				return &l, nil
			}
			names[i] = l.Name
		}
		return nil, notFound("label", raw, names, names)
	})
}

// Cycle resolves "current"/"active", a cycle number, or a cycle name.
func (r *Resolver) Cycle(ctx context.Context, teamID, raw string) (*linear.Cycle, error) {
	raw = strings.TrimSpace(raw)
	if IsRawID(raw) {
		return &linear.Cycle{ID: raw}, nil
	}
	if teamID == "" {
		return nil, fmt.Errorf("cycle %q: %w", raw, ErrCycleNeedsTeam)
	}
	lower := strings.ToLower(raw)
	return Lookup(ctx, r.cache, Key{Kind: KindCycle, Team: teamID, Raw: lower}, func(ctx context.Context) (*linear.Cycle, error) {
		cycles, err := r.cycles(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if c := matchCycle(cycles, lower); c != nil {
			return c, nil
		}
		valid := make([]string, 0, len(cycles))
		for _, c := range cycles {
			if c.Name != "" {
				valid = append(valid, c.Name)
			} else {
				valid = append(valid, strconv.Itoa(c.Number))
			}
		}
		return nil, linear.NewNotFound("cycle", raw, valid)
	})
}

func matchCycle(cycles []linear.Cycle, lower string) *linear.Cycle {
	switch lower {
	case "current", "active":
		for _, c := range cycles {
			if c.IsActive {
				return &c
			}
		}
		return nil
	}
	if n, err := strconv.Atoi(lower); err == nil {
		for _, c := range cycles {
			if c.Number == n {
				return &c
			}
		}
		return nil
	}
	for _, c := range cycles {
		if strings.EqualFold(c.Name, lower) {
			return &c
		}
	}
	return nil
}

// Project resolves a project name, ignoring case.
func (r *Resolver) Project(ctx context.Context, raw string) (*linear.Project, error) {
	raw = strings.TrimSpace(raw)
	if IsRawID(raw) {
		return &linear.Project{ID: raw}, nil
	}
	return Lookup(ctx, r.cache, Key{Kind: KindProject, Raw: strings.ToLower(raw)}, func(ctx context.Context) (*linear.Project, error) {
		projects, err := r.projects(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(projects))
		for i, p := range projects {
			if strings.EqualFold(p.Name, raw) {
				return &p, nil
			}
			names[i] = p.Name
		}
		return nil, notFound("project", raw, names, names)
	})
}
