package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// PagerOptions controls paging of long output.
type PagerOptions struct {
	Disabled bool   // --no-pager
	Command  string // overrides LINEAR_PAGER and PAGER
}

// pagerCommand picks the pager: the option, then LINEAR_PAGER, then PAGER,
// then less. An empty result means paging is off.
func pagerCommand(opts PagerOptions) string {
	if opts.Command != "" {
		return opts.Command
	}
	if p, ok := os.LookupEnv("LINEAR_PAGER"); ok {
		return p
	}
	if p := os.Getenv("PAGER"); p != "" {
		return p
	}
	return "less"
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// Page writes content to w, through a pager when w is the terminal's stdout
// and the content is taller than the screen.
func Page(w io.Writer, content string, opts PagerOptions) error {
	if opts.Disabled || w != io.Writer(os.Stdout) || !IsTerminal() {
		_, err := io.WriteString(w, content)
		return err
	}
	if h := terminalHeight(); h > 0 && lineCount(content) <= h-1 {
		_, err := io.WriteString(w, content)
		return err
	}

	parts := strings.Fields(pagerCommand(opts))
	if len(parts) == 0 {
		_, err := io.WriteString(w, content)
		return err
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager is user-configured
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pager %s: %w", parts[0], err)
	}
	return nil
}
