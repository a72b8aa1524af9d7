package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
	"github.com/steveyegge/linear-cli/internal/ui"
)

type myWork struct {
	Assigned []linear.Issue `json:"assigned" yaml:"assigned"`
	Created  []linear.Issue `json:"created" yaml:"created"`
}

func newMyWorkCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "my-work",
		GroupID: GroupIssues,
		Short:   "Show issues assigned to or created by you",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, res, err := a.api(ctx)
			if err != nil {
				return err
			}
			viewer, err := res.Viewer(ctx)
			if err != nil {
				return err
			}

			work := myWork{Assigned: []linear.Issue{}, Created: []linear.Issue{}}
			assigned := resolver.ResolvedFilter{AssigneeID: viewer.ID}.IssueFilter()
			created := linear.IssueFilter{"creator": map[string]any{"id": map[string]any{"eq": viewer.ID}}}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				issues, err := client.ListIssues(gctx, assigned, limit)
				if err == nil && issues != nil {
					work.Assigned = issues
				}
				return err
			})
			g.Go(func() error {
				issues, err := client.ListIssues(gctx, created, limit)
				if err == nil && issues != nil {
					work.Created = issues
				}
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			return a.page(work, func() string {
				return ui.Sections(
					ui.Section{Title: "Assigned to you", Body: ui.IssueTable(work.Assigned)},
					ui.Section{Title: "Created by you", Body: ui.IssueTable(work.Created)},
				)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", linear.DefaultPageSize, "Maximum number of issues per list")
	return cmd
}
