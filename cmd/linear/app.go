package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/linear-cli/internal/config"
	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/resolver"
	"github.com/steveyegge/linear-cli/internal/telemetry"
	"github.com/steveyegge/linear-cli/internal/ui"
)

// app holds the state shared by every command of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPaths []string            // nil means config.SearchPaths()
	tokenPath   string              // stored token file; "" means the default
	getenv      func(string) string // LINEAR_API_KEY lookup

	// Global flags.
	apiKey  string
	format  string
	noColor bool
	noPager bool
	verbose bool
	timeout time.Duration

	cfg      *config.Config
	logger   *slog.Logger
	out      ui.Output
	shutdown telemetry.Shutdown

	client   *linear.Client
	resolver *resolver.Resolver
	source   string // where the API key came from
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		getenv: os.Getenv,
	}
}

// setup loads configuration and the ambient stack. It runs before every
// command; API access is set up lazily by api().
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{Paths: a.configPaths, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	a.cfg = cfg

	format, err := ui.ParseFormat(cfg.PreferredFormat)
	if err != nil {
		return err
	}
	a.out = ui.Output{W: a.stdout, Format: format}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	ui.SetColor(!a.noColor && a.stdout == io.Writer(os.Stdout) && ui.ShouldUseColor())

	shutdown, err := telemetry.Init(cmd.Context(), telemetry.Options{
		Enabled:      cfg.Telemetry.Enabled,
		Stdout:       cfg.Telemetry.Stdout,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		ServiceName:  "linear",
		Version:      Version,
		Writer:       a.stderr,
	})
	if err != nil {
		a.logger.Warn("telemetry disabled", "error", err)
		return nil
	}
	a.shutdown = shutdown
	return nil
}

// close flushes telemetry.
func (a *app) close() {
	if a.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil && a.logger != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}
}

func (a *app) storedToken() (config.StoredToken, error) {
	if a.tokenPath != "" {
		return config.StoredToken{Path: a.tokenPath}, nil
	}
	return config.DefaultStoredToken()
}

// credentials returns the providers consulted for the API key, in order.
func (a *app) credentials() (config.ChainProvider, error) {
	stored, err := a.storedToken()
	if err != nil {
		return nil, err
	}
	return config.ChainProvider{
		config.StaticToken(a.apiKey),
		config.EnvToken{Getenv: a.getenv},
		stored,
	}, nil
}

// api builds the client stack on first use: credentials, transport, retry
// policy, executor, typed client and resolver.
func (a *app) api(ctx context.Context) (*linear.Client, *resolver.Resolver, error) {
	if a.client != nil {
		return a.client, a.resolver, nil
	}
	chain, err := a.credentials()
	if err != nil {
		return nil, nil, err
	}
	token, provider, err := chain.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.source = provider.Source()
	a.logger.Debug("using API key", "source", a.source)

	transport := linear.NewTransport(token).
		WithEndpoint(a.cfg.APIURL).
		WithTimeout(a.cfg.Timeout).
		WithRateLimit(a.cfg.RequestsPerSecond)
	transport.UserAgent = "linear-cli/" + Version

	policy := linear.DefaultRetryPolicy()
	policy.MaxRetries = a.cfg.MaxRetries
	policy.BaseDelay = a.cfg.RetryBaseDelay
	policy.MaxDelay = a.cfg.RetryMaxDelay

	a.client = linear.NewClient(linear.NewExecutor(transport, policy, a.logger))
	a.resolver = resolver.New(a.client, a.logger)
	return a.client, a.resolver, nil
}

// print writes v in the selected format; human renders the table form.
func (a *app) print(v any, human func() string) error {
	return a.out.Print(v, human)
}

// page prints v like print, sending long table output through the pager.
func (a *app) page(v any, human func() string) error {
	if a.out.Format != ui.FormatTable {
		return a.out.Print(v, human)
	}
	text := human()
	if text != "" && text[len(text)-1] != '\n' {
		text += "\n"
	}
	return ui.Page(a.stdout, text, ui.PagerOptions{Disabled: a.noPager})
}

// width is the wrap width for long text.
func (a *app) width() int {
	if a.stdout != io.Writer(os.Stdout) {
		return 80
	}
	return ui.TerminalWidth(80)
}

func (a *app) successf(format string, args ...any) {
	writef(a.stdout, "%s %s\n", ui.RenderPass(ui.IconPass), fmt.Sprintf(format, args...))
}
