package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/config"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const (
	GroupIssues = "issues"
	GroupSetup  = "setup"
)

func main() {
	// SIGINT/SIGTERM cancel every in-flight request, retry sleep and lookup.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, newApp(os.Stdin, os.Stdout, os.Stderr), os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, a *app, args []string) int {
	defer a.close()

	root := newRootCmd(a)
	expanded, err := expandAliases(a, root, args)
	if err != nil {
		reportError(a.stderr, err)
		return exitCode(err)
	}
	root.SetArgs(expanded)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		reportError(a.stderr, err)
		return exitCode(err)
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "linear",
		Short:         "linear - Linear issue tracker from the terminal",
		Long:          `Query and update Linear issues, resolving team, user, status and label names for you.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate("linear version {{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddGroup(
		&cobra.Group{ID: GroupIssues, Title: "Working With Issues:"},
		&cobra.Group{ID: GroupSetup, Title: "Setup & Configuration:"},
	)

	pf := root.PersistentFlags()
	pf.StringVar(&a.apiKey, "api-key", "", "Linear API key (default: $LINEAR_API_KEY, .env, stored token)")
	pf.StringVar(&a.format, "format", "", "Output format: table, json or yaml (default: preferred_format)")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&a.noPager, "no-pager", false, "Never page long output")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log API requests and retries to stderr")
	pf.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout (default: timeout from config, 30s)")

	root.AddCommand(
		newIssuesCmd(a),
		newIssueCmd(a),
		newMyWorkCmd(a),
		newSearchCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newCloseCmd(a),
		newReopenCmd(a),
		newCommentCmd(a),
		newCommentsCmd(a),
		newTeamsCmd(a),
		newProjectsCmd(a),
		newStatusCmd(a),
		newConfigCmd(a),
		newAuthCmd(a),
	)
	return root
}

// expandAliases rewrites args using the [aliases] table. A config that
// fails to load is reported later by the command itself.
func expandAliases(a *app, root *cobra.Command, args []string) ([]string, error) {
	cfg, err := config.Load(config.LoadOptions{Paths: a.configPaths})
	if err != nil || len(cfg.Aliases) == 0 {
		return args, nil
	}
	builtin := []string{"help"}
	for _, c := range root.Commands() {
		builtin = append(builtin, c.Name())
		builtin = append(builtin, c.Aliases...)
	}
	expanded, err := config.ExpandAliases(cfg.Aliases, builtin, args)
	if err != nil {
		return nil, fmt.Errorf("expanding aliases: %w", err)
	}
	return expanded, nil
}

func writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
