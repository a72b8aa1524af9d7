package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/ui"
)

type statusReport struct {
	Endpoint  string       `json:"endpoint" yaml:"endpoint"`
	KeySource string       `json:"keySource" yaml:"keySource"`
	Viewer    *linear.User `json:"viewer" yaml:"viewer"`
	LatencyMS int64        `json:"latencyMs" yaml:"latencyMs"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: GroupSetup,
		Short:   "Check connectivity and show the authenticated user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.api(cmd.Context())
			if err != nil {
				return err
			}
			start := time.Now()
			viewer, err := client.Viewer(cmd.Context())
			if err != nil {
				return err
			}
			report := statusReport{
				Endpoint:  a.cfg.APIURL,
				KeySource: a.source,
				Viewer:    viewer,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			return a.print(report, func() string { return renderStatus(report) })
		},
	}
}

func renderStatus(r statusReport) string {
	var b strings.Builder
	writef(&b, "%s Connected to %s (%dms)\n", ui.RenderPass(ui.IconPass), r.Endpoint, r.LatencyMS)
	name := r.Viewer.Name
	if r.Viewer.Email != "" {
		name = fmt.Sprintf("%s <%s>", name, r.Viewer.Email)
	}
	writef(&b, "  %s %s\n", ui.RenderMuted("User:   "), name)
	writef(&b, "  %s %s", ui.RenderMuted("API key:"), r.KeySource)
	return b.String()
}
