// Package config loads linear-cli settings and API credentials.
//
// Settings come from up to three TOML files, merged from lowest to highest
// precedence:
//
//	~/.config/linear-cli/config.toml
//	$XDG_CONFIG_HOME/linear-cli/config.toml
//	./linear-cli.toml
//
// LINEAR_* environment variables (LINEAR_DEFAULT_TEAM, LINEAR_TIMEOUT,
// LINEAR_TELEMETRY_ENABLED, ...) override the files, and command-line flags
// bound through LoadOptions.Flags override everything.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName         = "linear-cli"
	FileName        = "config.toml"
	ProjectFileName = "linear-cli.toml"
	EnvPrefix       = "LINEAR"
)

// Formats lists the accepted output formats.
var Formats = []string{"table", "json", "yaml"}

// TelemetryConfig is the [telemetry] table.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled" toml:"enabled"`
	Stdout       bool   `mapstructure:"stdout" toml:"stdout"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint" toml:"otlp_endpoint"`
}

// Config is the effective configuration after merging every source.
type Config struct {
	DefaultTeam       string              `mapstructure:"default_team" toml:"default_team"`
	DefaultAssignee   string              `mapstructure:"default_assignee" toml:"default_assignee"`
	PreferredFormat   string              `mapstructure:"preferred_format" toml:"preferred_format"`
	APIURL            string              `mapstructure:"api_url" toml:"api_url"`
	Timeout           time.Duration       `mapstructure:"timeout" toml:"timeout"`
	MaxRetries        int                 `mapstructure:"max_retries" toml:"max_retries"`
	RetryBaseDelay    time.Duration       `mapstructure:"retry_base_delay" toml:"retry_base_delay"`
	RetryMaxDelay     time.Duration       `mapstructure:"retry_max_delay" toml:"retry_max_delay"`
	RequestsPerSecond float64             `mapstructure:"requests_per_second" toml:"requests_per_second"`
	Aliases           map[string][]string `mapstructure:"aliases" toml:"aliases,omitempty"`
	Telemetry         TelemetryConfig     `mapstructure:"telemetry" toml:"telemetry"`

	// Files lists the config files that were found and merged, lowest
	// precedence first.
	Files []string `mapstructure:"-" toml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PreferredFormat: "table",
		APIURL:          "https://api.linear.app/graphql",
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryBaseDelay:  100 * time.Millisecond,
		RetryMaxDelay:   10 * time.Second,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("default_team", d.DefaultTeam)
	v.SetDefault("default_assignee", d.DefaultAssignee)
	v.SetDefault("preferred_format", d.PreferredFormat)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("retry_base_delay", d.RetryBaseDelay)
	v.SetDefault("retry_max_delay", d.RetryMaxDelay)
	v.SetDefault("requests_per_second", d.RequestsPerSecond)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.stdout", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// flagKeys maps command-line flag names to the config keys they override.
var flagKeys = map[string]string{
	"format":  "preferred_format",
	"timeout": "timeout",
}

// Dir returns the per-user config directory, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// SearchPaths returns the config file locations, lowest precedence first.
func SearchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppName, FileName))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		p := filepath.Join(xdg, AppName, FileName)
		if !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, ProjectFileName))
	}
	return paths
}

// LoadOptions controls Load. A nil Paths means SearchPaths().
type LoadOptions struct {
	Paths []string
	Flags *pflag.FlagSet
}

// Load merges defaults, config files, environment and flags, then
// validates the result. Missing files are skipped.
func Load(opts LoadOptions) (*Config, error) {
	paths := opts.Paths
	if paths == nil {
		paths = SearchPaths()
	}

	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var files []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat config %s: %w", p, err)
		}
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", p, err)
		}
		files = append(files, p)
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Files = files
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command could honour.
func (c *Config) Validate() error {
	if c.PreferredFormat != "" && !slices.Contains(Formats, c.PreferredFormat) {
		return fmt.Errorf("invalid preferred_format %q: must be one of %s",
			c.PreferredFormat, strings.Join(Formats, ", "))
	}
	switch {
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	case c.MaxRetries < 0:
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	case c.RetryBaseDelay < 0:
		return fmt.Errorf("retry_base_delay must not be negative, got %s", c.RetryBaseDelay)
	case c.RetryMaxDelay <= 0:
		return fmt.Errorf("retry_max_delay must be positive, got %s", c.RetryMaxDelay)
	case c.RetryBaseDelay > c.RetryMaxDelay:
		return fmt.Errorf("retry_base_delay (%s) must not exceed retry_max_delay (%s)", c.RetryBaseDelay, c.RetryMaxDelay)
	case c.RequestsPerSecond < 0:
		return fmt.Errorf("requests_per_second must not be negative, got %g", c.RequestsPerSecond)
	}

	names := make([]string, 0, len(c.Aliases))
	for name := range c.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		argv := c.Aliases[name]
		if len(argv) == 0 {
			return fmt.Errorf("invalid alias %q: expansion is empty", name)
		}
		if argv[0] == name {
			return fmt.Errorf("invalid alias %q: %w", name, ErrRecursiveAlias)
		}
	}
	return nil
}

// WriteTOML prints the effective configuration as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

const defaultFile = `# linear-cli configuration
#
# Files are merged in this order, later ones winning:
#   ~/.config/linear-cli/config.toml
#   $XDG_CONFIG_HOME/linear-cli/config.toml
#   ./linear-cli.toml
# Any key can also be set as an environment variable, e.g. LINEAR_DEFAULT_TEAM.

# Team used when --team is not given (key or name).
# default_team = "ENG"

# Assignee used by "linear issues" when --assignee is not given.
# default_assignee = "me"

# table, json or yaml.
preferred_format = "table"

api_url = "https://api.linear.app/graphql"
timeout = "30s"

# Retries after the first attempt for network errors and rate limits.
max_retries = 3
retry_base_delay = "100ms"
retry_max_delay = "10s"

# Client-side request pacing; 0 means unlimited.
requests_per_second = 0

[aliases]
mine = ["issues", "--assignee", "me"]

[telemetry]
enabled = false
stdout = false
# otlp_endpoint = "localhost:4318"
`

// ErrConfigExists is returned by WriteDefault when the file exists.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes a commented starter config to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrConfigExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(defaultFile)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(path, 0o644) // #nosec G302 - config holds no secrets
}
