package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// EnvAPIKey is the environment variable holding a personal API key.
const EnvAPIKey = "LINEAR_API_KEY"

// TokenFileName is the stored token's file name inside Dir().
const TokenFileName = "token"

// CredentialProvider supplies the API token. An empty token with a nil
// error means the provider has nothing to offer.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
	Source() string
}

// StaticToken is a token given on the command line.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

func (StaticToken) Source() string { return "--api-key flag" }

// EnvToken reads LINEAR_API_KEY from the environment, then from a dotenv
// file. The dotenv file never modifies the process environment.
type EnvToken struct {
	Getenv     func(string) string // defaults to os.Getenv
	DotEnvPath string              // defaults to ".env"
}

func (e EnvToken) Token(context.Context) (string, error) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		return v, nil
	}

	path := e.DotEnvPath
	if path == "" {
		path = ".env"
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(env[EnvAPIKey]), nil
}

func (EnvToken) Source() string { return EnvAPIKey + " environment variable" }

// StoredToken is a token kept in a user-only file under the config dir.
type StoredToken struct {
	Path string
}

// DefaultStoredToken returns the StoredToken at Dir()/token.
func DefaultStoredToken() (StoredToken, error) {
	dir, err := Dir()
	if err != nil {
		return StoredToken{}, err
	}
	return StoredToken{Path: filepath.Join(dir, TokenFileName)}, nil
}

func (s StoredToken) Token(context.Context) (string, error) {
	data, err := os.ReadFile(s.Path) // #nosec G304 - path is the user's own config dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read stored token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s StoredToken) Source() string { return "stored token (" + s.Path + ")" }

// Save replaces the stored token atomically, readable only by the user.
func (s StoredToken) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomic.WriteFile(s.Path, strings.NewReader(token+"\n")); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return os.Chmod(s.Path, 0o600)
}

// Clear removes the stored token. Clearing a missing token is not an error.
func (s StoredToken) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stored token: %w", err)
	}
	return nil
}

// ChainProvider asks each provider in order and returns the first token.
type ChainProvider []CredentialProvider

// Resolve returns the first non-empty token with the provider that supplied
// it. When no provider has one it returns an authentication error.
func (c ChainProvider) Resolve(ctx context.Context) (string, CredentialProvider, error) {
	for _, p := range c {
		tok, err := p.Token(ctx)
		if err != nil {
			return "", nil, err
		}
		if tok != "" {
			return tok, p, nil
		}
	}
	return "", nil, linear.NewAuth("no API key found (checked " + c.Source() + ")")
}

func (c ChainProvider) Token(ctx context.Context) (string, error) {
	tok, _, err := c.Resolve(ctx)
	return tok, err
}

func (c ChainProvider) Source() string {
	sources := make([]string, len(c))
	for i, p := range c {
		sources[i] = p.Source()
	}
	return strings.Join(sources, ", ")
}
