package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
	"github.com/steveyegge/linear-cli/internal/ui"
)

func newIssuesCmd(a *app) *cobra.Command {
	var f resolver.Filter
	cmd := &cobra.Command{
		Use:     "issues",
		GroupID: GroupIssues,
		Short:   "List issues",
		Long: `List issues matching the given filters.

Names are resolved for you: --team takes a key or name, --assignee takes a
name, email, "me" or "unassigned", and --status accepts aliases such as
"todo", "wip" or "done".

Examples:
  linear issues --assignee me --status "in progress"
  linear issues --team ENG --label bug --label p1
  linear issues --team ENG --cycle current --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("assignee") {
				f.Assignee = a.cfg.DefaultAssignee
			}
			if !cmd.Flags().Changed("team") {
				f.Team = a.cfg.DefaultTeam
			}
			f.Labels = cleanLabels(f.Labels)

			client, res, err := a.api(ctx)
			if err != nil {
				return err
			}
			resolved, err := res.ResolveFilter(ctx, f)
			if err != nil {
				return err
			}
			issues, err := client.ListIssues(ctx, resolved.IssueFilter(), resolved.First)
			if err != nil {
				return err
			}
			if issues == nil {
				issues = []linear.Issue{}
			}
			return a.page(issues, func() string { return ui.IssueTable(issues) })
		},
	}
	cmd.Flags().StringVarP(&f.Assignee, "assignee", "a", "", `Assignee name, email, "me" or "unassigned" (default: default_assignee)`)
	cmd.Flags().StringVarP(&f.Status, "status", "s", "", "Workflow state name or alias")
	cmd.Flags().StringVarP(&f.Team, "team", "t", "", "Team key or name (default: default_team)")
	cmd.Flags().StringArrayVarP(&f.Labels, "label", "l", nil, "Label name (repeatable, all must match)")
	cmd.Flags().StringVarP(&f.Cycle, "cycle", "c", "", `Cycle number, name or "current" (requires a team)`)
	cmd.Flags().IntVarP(&f.First, "limit", "n", linear.DefaultPageSize, "Maximum number of issues")
	return cmd
}

func newIssueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "issue <ID|URL>",
		GroupID: GroupIssues,
		Short:   "Show one issue",
		Example: `  linear issue ENG-123
  linear issue https://linear.app/acme/issue/ENG-123/fix-login`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.api(cmd.Context())
			if err != nil {
				return err
			}
			issue, err := client.Issue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.page(issue, func() string { return ui.IssueDetail(*issue, a.width()) })
		},
	}
}
