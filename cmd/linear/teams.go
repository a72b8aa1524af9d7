package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/ui"
)

func newTeamsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "teams",
		GroupID: GroupIssues,
		Short:   "List teams",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.api(cmd.Context())
			if err != nil {
				return err
			}
			teams, err := client.Teams(cmd.Context())
			if err != nil {
				return err
			}
			if teams == nil {
				teams = []linear.Team{}
			}
			return a.print(teams, func() string { return ui.TeamTable(teams) })
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "projects",
		GroupID: GroupIssues,
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.api(cmd.Context())
			if err != nil {
				return err
			}
			projects, err := client.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if projects == nil {
				projects = []linear.Project{}
			}
			return a.print(projects, func() string { return ui.ProjectTable(projects) })
		},
	}
}
