package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/ui"
)

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "comment <ID|URL> [message]",
		GroupID: GroupIssues,
		Short:   "Add a comment to an issue",
		Long: `Add a markdown comment to an issue. Without a message argument the
comment is read from standard input.`,
		Example: `  linear comment ENG-123 "Fixed in #456"
  git log -1 --format=%B | linear comment ENG-123`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body string
			if len(args) == 2 {
				body = args[1]
			} else {
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return fmt.Errorf("reading comment from stdin: %w", err)
				}
				body = string(data)
			}
			body = strings.TrimSpace(body)
			if body == "" {
				return errors.New("comment is empty")
			}

			ctx := cmd.Context()
			client, _, err := a.api(ctx)
			if err != nil {
				return err
			}
			issue, err := client.Issue(ctx, args[0])
			if err != nil {
				return err
			}
			comment, err := client.CreateComment(ctx, issue.ID, body)
			if err != nil {
				return err
			}
			if a.out.Format != ui.FormatTable {
				return a.print(comment, nil)
			}
			a.successf("Commented on %s", issue.Identifier)
			return nil
		},
	}
}

func newCommentsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "comments <ID|URL>",
		GroupID: GroupIssues,
		Short:   "List comments on an issue",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.api(cmd.Context())
			if err != nil {
				return err
			}
			comments, err := client.IssueComments(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if comments == nil {
				comments = []linear.Comment{}
			}
			return a.page(comments, func() string { return ui.CommentList(comments, a.width()) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of comments")
	return cmd
}
