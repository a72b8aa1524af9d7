package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/ui"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: GroupSetup,
		Short:   "Manage the stored API key",
		Long: `Manage the API key stored under the user config directory.

The key is looked up in this order: --api-key, $LINEAR_API_KEY, LINEAR_API_KEY
in ./.env, then the stored key. Create a key at ` + linear.APIKeyURL + `.`,
	}

	setToken := &cobra.Command{
		Use:   "set-token [key]",
		Short: "Store an API key (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				var err error
				if token, err = a.readToken(); err != nil {
					return err
				}
			}
			stored, err := a.storedToken()
			if err != nil {
				return err
			}
			if err := stored.Save(token); err != nil {
				return err
			}
			a.successf("API key stored in %s", stored.Path)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, err := a.storedToken()
			if err != nil {
				return err
			}
			if err := stored.Clear(); err != nil {
				return err
			}
			a.successf("Stored API key removed")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which API key source is in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chain, err := a.credentials()
			if err != nil {
				return err
			}
			token, provider, err := chain.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			writef(a.stdout, "%s API key %s from %s\n", ui.RenderPass(ui.IconPass), maskToken(token), provider.Source())
			return nil
		},
	}

	cmd.AddCommand(setToken, clearCmd, status)
	return cmd
}

// readToken reads a key from stdin, without echo on a terminal.
func (a *app) readToken() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		writef(a.stderr, "Linear API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		writef(a.stderr, "\n")
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no API key given on stdin")
	}
	return strings.TrimSpace(line), nil
}

// maskToken hides all but the ends of a key.
func maskToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:8] + strings.Repeat("*", 4) + token[len(token)-4:]
}
