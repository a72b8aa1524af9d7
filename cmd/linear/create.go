package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/frontmatter"
	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
)

func validatePriority(p int) error {
	if p < 0 || p > 4 {
		return fmt.Errorf("priority must be between 0 and 4 (0=None, 1=Urgent, 2=High, 3=Medium, 4=Low), got %d", p)
	}
	return nil
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		c        resolver.Create
		fromFile string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:     "create [title]",
		GroupID: GroupIssues,
		Short:   "Create an issue",
		Long: `Create an issue from flags or from a markdown file with YAML frontmatter.

A draft file looks like:

  ---
  title: Login fails on Safari
  team: ENG
  status: todo
  priority: 2
  labels: [bug, frontend]
  ---
  Steps to reproduce...

Flags given on the command line override the file.`,
		Example: `  linear create "Fix login" --team ENG --label bug
  linear create --from-file draft.md --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			want := c
			if fromFile != "" {
				doc, err := frontmatter.ParseFile(fromFile)
				if err != nil {
					return err
				}
				want = createFromDraft(doc)
				overrideCreate(&want, c, flags.Changed)
			}
			if len(args) == 1 {
				want.Title = args[0]
			}
			if want.Team == "" {
				want.Team = a.cfg.DefaultTeam
			}
			want.Labels = cleanLabels(want.Labels)
			if err := validatePriority(want.Priority); err != nil {
				return err
			}

			ctx := cmd.Context()
			client, res, err := a.api(ctx)
			if err != nil {
				return err
			}
			input, err := res.ResolveCreate(ctx, want)
			if err != nil {
				return err
			}

			if dryRun {
				return a.print(input, func() string { return describeCreate(want, input) })
			}
			issue, err := client.CreateIssue(ctx, input)
			if err != nil {
				return err
			}
			return a.print(issue, func() string {
				return fmt.Sprintf("Created %s: %s\n%s", issue.Identifier, issue.Title, issue.URL)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.Title, "title", "", "Issue title")
	f.StringVarP(&c.Description, "description", "d", "", "Issue description (markdown)")
	f.StringVarP(&c.Team, "team", "t", "", "Team key or name (default: default_team)")
	f.StringVarP(&c.Assignee, "assignee", "a", "", `Assignee name, email or "me"`)
	f.StringVarP(&c.Status, "status", "s", "", "Initial workflow state")
	f.IntVarP(&c.Priority, "priority", "p", 0, "Priority (0=None, 1=Urgent, 2=High, 3=Medium, 4=Low)")
	f.StringArrayVarP(&c.Labels, "label", "l", nil, "Label name (repeatable)")
	f.StringVar(&c.Project, "project", "", "Project name")
	f.StringVarP(&c.Cycle, "cycle", "c", "", `Cycle number, name or "current"`)
	f.StringVar(&fromFile, "from-file", "", "Read the issue from a markdown file with YAML frontmatter")
	f.BoolVar(&dryRun, "dry-run", false, "Resolve names and print the issue without creating it")
	return cmd
}

func createFromDraft(doc *frontmatter.Document) resolver.Create {
	c := resolver.Create{
		Title:       doc.Issue.Title,
		Description: doc.Body,
		Team:        doc.Issue.Team,
		Assignee:    doc.Issue.Assignee,
		Status:      doc.Issue.Status,
		Labels:      doc.Issue.Labels,
		Project:     doc.Issue.Project,
		Cycle:       doc.Issue.Cycle,
	}
	if doc.Issue.Priority != nil {
		c.Priority = *doc.Issue.Priority
	}
	return c
}

// overrideCreate copies the flags the user set onto a draft.
func overrideCreate(dst *resolver.Create, flags resolver.Create, changed func(string) bool) {
	if changed("title") {
		dst.Title = flags.Title
	}
	if changed("description") {
		dst.Description = flags.Description
	}
	if changed("team") {
		dst.Team = flags.Team
	}
	if changed("assignee") {
		dst.Assignee = flags.Assignee
	}
	if changed("status") {
		dst.Status = flags.Status
	}
	if changed("priority") {
		dst.Priority = flags.Priority
	}
	if changed("label") {
		dst.Labels = flags.Labels
	}
	if changed("project") {
		dst.Project = flags.Project
	}
	if changed("cycle") {
		dst.Cycle = flags.Cycle
	}
}

func describeCreate(c resolver.Create, in linear.IssueCreateInput) string {
	var b strings.Builder
	writef(&b, "Would create issue (dry run):\n")
	line := func(name, value, id string) {
		if value == "" {
			return
		}
		if id != "" && id != value {
			value += " (" + id + ")"
		}
		writef(&b, "  %-10s %s\n", name+":", value)
	}
	line("Title", in.Title, "")
	line("Team", c.Team, in.TeamID)
	line("Assignee", c.Assignee, in.AssigneeID)
	line("Status", c.Status, in.StateID)
	if in.Priority > 0 {
		line("Priority", linear.PriorityName(in.Priority), "")
	}
	if len(c.Labels) > 0 {
		line("Labels", strings.Join(c.Labels, ", "), strings.Join(in.LabelIDs, ", "))
	}
	line("Project", c.Project, in.ProjectID)
	line("Cycle", c.Cycle, in.CycleID)
	if in.Description != "" {
		writef(&b, "\n%s\n", in.Description)
	}
	return b.String()
}

// cleanLabels trims label names, dropping blanks and repeats while keeping
// the order given.
func cleanLabels(labels []string) []string {
	if labels == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}
