package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
	"github.com/steveyegge/linear-cli/internal/ui"
)

func newUpdateCmd(a *app) *cobra.Command {
	var (
		title, description string
		priority           int
		u                  resolver.Update
	)
	cmd := &cobra.Command{
		Use:     "update <ID|URL>",
		GroupID: GroupIssues,
		Short:   "Update an issue",
		Example: `  linear update ENG-123 --status done
  linear update ENG-123 --assignee unassigned --priority 3
  linear update ENG-123 --label bug --label regression
  linear update ENG-123 --project none`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("priority") {
				if err := validatePriority(priority); err != nil {
					return err
				}
				u.Priority = &priority
			}
			u.Labels = cleanLabels(u.Labels)
			if u.Title == nil && u.Description == nil && u.Priority == nil &&
				u.Assignee == "" && u.Status == "" && u.Labels == nil && u.Project == "" {
				return errors.New("no changes specified: pass at least one of --title, --description, --priority, --assignee, --status, --label, --project")
			}

			ctx := cmd.Context()
			client, res, err := a.api(ctx)
			if err != nil {
				return err
			}
			issue, input, err := res.ResolveUpdate(ctx, args[0], u)
			if err != nil {
				return err
			}
			return a.applyUpdate(cmd, client, issue, input, "Updated")
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "New title")
	f.StringVarP(&description, "description", "d", "", "New description (markdown)")
	f.IntVarP(&priority, "priority", "p", 0, "Priority (0=None, 1=Urgent, 2=High, 3=Medium, 4=Low)")
	f.StringVarP(&u.Assignee, "assignee", "a", "", `Assignee name, email, "me" or "unassigned"`)
	f.StringVarP(&u.Status, "status", "s", "", "Workflow state name or alias")
	f.StringArrayVarP(&u.Labels, "label", "l", nil, "Replace labels (repeatable)")
	f.StringVar(&u.Project, "project", "", `Project name, or "none" to remove the issue from its project`)
	return cmd
}

func (a *app) applyUpdate(cmd *cobra.Command, client *linear.Client, issue *linear.Issue, input linear.IssueUpdateInput, verb string) error {
	updated, err := client.UpdateIssue(cmd.Context(), issue.ID, input)
	if err != nil {
		return err
	}
	if a.out.Format != ui.FormatTable {
		return a.print(updated, nil)
	}
	state := ""
	if updated.State != nil {
		state = " (" + updated.State.Name + ")"
	}
	a.successf("%s %s%s", verb, updated.Identifier, state)
	return nil
}

func newCloseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "close <ID|URL>",
		GroupID: GroupIssues,
		Short:   "Move an issue to its team's first completed state",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, args[0], linear.StateTypeCompleted, "Closed")
		},
	}
}

func newReopenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "reopen <ID|URL>",
		GroupID: GroupIssues,
		Short:   "Move an issue to its team's first unstarted state",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, args[0], linear.StateTypeUnstarted, "Reopened")
		},
	}
}

func (a *app) transition(cmd *cobra.Command, ref, stateType, verb string) error {
	ctx := cmd.Context()
	client, res, err := a.api(ctx)
	if err != nil {
		return err
	}
	issue, err := client.Issue(ctx, ref)
	if err != nil {
		return err
	}
	if issue.Team == nil {
		return errors.New("issue " + issue.Identifier + " has no team")
	}
	state, err := res.StateOfType(ctx, issue.Team.ID, stateType)
	if err != nil {
		return err
	}
	return a.applyUpdate(cmd, client, issue, linear.IssueUpdateInput{StateID: &state.ID}, verb)
}
