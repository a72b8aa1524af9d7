package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
	"github.com/steveyegge/linear-cli/internal/ui"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

type searchResults struct {
	Issues   []linear.Issue   `json:"issues" yaml:"issues"`
	Projects []linear.Project `json:"projects" yaml:"projects"`
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		issuesOnly, projectsOnly, includeArchived bool
		limit                                     int
	)
	cmd := &cobra.Command{
		Use:     "search <query>",
		GroupID: GroupIssues,
		Short:   "Search issues and projects",
		Long: `Search issues and projects.

Words are matched by Linear's full-text search. "quoted phrases" are kept
together, -word drops results mentioning word, and team:, assignee:,
status:, label: and cycle: narrow the issue results like the matching
"linear issues" flags.

Examples:
  linear search "login page" -mobile
  linear search crash team:ENG status:todo
  linear search label:bug assignee:me --issues-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if issuesOnly && projectsOnly {
				return errors.New("--issues-only and --projects-only are mutually exclusive")
			}
			if limit < 1 || limit > maxSearchLimit {
				return fmt.Errorf("--limit must be between 1 and %d, got %d", maxSearchLimit, limit)
			}
			q := resolver.ParseQuery(args[0])
			filter, err := q.Filter(limit)
			if err != nil {
				return err
			}
			term := q.Term()
			switch {
			case term == "" && len(q.Fields) == 0:
				return errors.New("search query is empty")
			case term == "" && projectsOnly:
				return errors.New("project search needs words to match")
			}

			ctx := cmd.Context()
			client, res, err := a.api(ctx)
			if err != nil {
				return err
			}

			results := searchResults{Issues: []linear.Issue{}, Projects: []linear.Project{}}
			g, gctx := errgroup.WithContext(ctx)
			if !projectsOnly {
				g.Go(func() error {
					resolved, err := res.ResolveFilter(gctx, filter)
					if err != nil {
						return err
					}
					var issues []linear.Issue
					if term == "" {
						issues, err = client.ListIssues(gctx, resolved.IssueFilter(), resolved.First)
					} else {
						issues, err = client.SearchIssues(gctx, term, resolved.IssueFilter(), resolved.First, includeArchived)
					}
					if err != nil {
						return err
					}
					if issues = q.FilterIssues(issues); issues != nil {
						results.Issues = issues
					}
					return nil
				})
			}
			// Qualifiers only apply to issues.
			if !issuesOnly && term != "" {
				g.Go(func() error {
					projects, err := client.SearchProjects(gctx, term, limit, includeArchived)
					if err != nil {
						return err
					}
					if projects = q.FilterProjects(projects); projects != nil {
						results.Projects = projects
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return a.page(results, func() string {
				var sections []ui.Section
				if !projectsOnly {
					sections = append(sections, ui.Section{Title: "Issues", Body: ui.IssueTable(results.Issues)})
				}
				if !issuesOnly && term != "" {
					sections = append(sections, ui.Section{Title: "Projects", Body: ui.ProjectTable(results.Projects)})
				}
				return ui.Sections(sections...)
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&issuesOnly, "issues-only", false, "Search only issues")
	f.BoolVar(&projectsOnly, "projects-only", false, "Search only projects")
	f.BoolVar(&includeArchived, "include-archived", false, "Include archived issues and projects")
	f.IntVarP(&limit, "limit", "n", defaultSearchLimit, fmt.Sprintf("Maximum results per type (1-%d)", maxSearchLimit))
	return cmd
}
