package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		GroupID: GroupSetup,
		Short:   "Show and initialise configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.cfg.Files) > 0 {
				writef(a.stdout, "# merged from: %s\n", strings.Join(a.cfg.Files, ", "))
			}
			return a.cfg.WriteTOML(a.stdout)
		},
	}

	var force, project bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter config file",
		Long: `Write a commented starter config to the user config directory, or to
./linear-cli.toml with --project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initPath(project)
			if err != nil {
				return err
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			a.successf("Wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	initCmd.Flags().BoolVar(&project, "project", false, "Write ./linear-cli.toml instead of the user config")

	path := &cobra.Command{
		Use:   "path",
		Short: "List config file locations, lowest precedence first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := a.configPaths
			if paths == nil {
				paths = config.SearchPaths()
			}
			for _, p := range paths {
				marker := " "
				if _, err := os.Stat(p); err == nil {
					marker = "*"
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				writef(a.stdout, "%s %s\n", marker, p)
			}
			return nil
		},
	}

	cmd.AddCommand(show, initCmd, path)
	return cmd
}

func initPath(project bool) (string, error) {
	if project {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, config.ProjectFileName), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.FileName), nil
}
