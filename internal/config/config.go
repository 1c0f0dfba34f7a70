// Package config loads treegrid settings from defaults, a YAML file and
// TREEMANAGER_* environment variables, and validates the result against a
// CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables override file settings.
const (
	EnvDatabase = "TREEMANAGER_DB"
	EnvListen   = "TREEMANAGER_LISTEN"
	EnvServer   = "TREEMANAGER_SERVER"
	EnvScope    = "TREEMANAGER_SCOPE"
)

// Config holds every setting of the CLI and server.
type Config struct {
	// Database is the SQLite path used when no Server is set, and by serve.
	Database string `yaml:"database" json:"database"`
	// Listen is the serve address.
	Listen string `yaml:"listen" json:"listen"`
	// Server is the base URL of a remote treegrid server. When set, tree
	// commands talk to it instead of opening Database.
	Server string `yaml:"server" json:"server"`
	// Scope selects the tree inside the database.
	Scope int64 `yaml:"scope" json:"scope"`
	// Timeout bounds each HTTP request to Server.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// Retries is the number of transport retries for Server requests.
	Retries int `yaml:"retries" json:"retries"`
	// Metrics exposes /metrics on the server.
	Metrics bool `yaml:"metrics" json:"metrics"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: "treegrid.db",
		Listen:   "127.0.0.1:8080",
		Scope:    1,
		Timeout:  10 * time.Second,
		Retries:  0,
		Metrics:  true,
	}
}

// Load reads path (if non-empty) over the defaults and then applies the
// environment. Unknown YAML keys are rejected.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		logger.Debug("loaded config file", slog.String("path", path))
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database = v
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.Listen = v
	}
	if v, ok := lookup(EnvServer); ok {
		c.Server = v
	}
	if v, ok := lookup(EnvScope); ok && v != "" {
		scope, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvScope, err)
		}
		c.Scope = scope
	}
	return nil
}

// Validate checks the config against the CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fieldErrors(err)
	}

	if c.Database == "" && c.Server == "" {
		return &ValidationError{Fields: []FieldError{
			{Field: "database", Message: "one of database or server is required"},
		}}
	}
	return nil
}

// FieldError is one rejected setting.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected setting.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// fieldErrors flattens a CUE validation error into per-field messages.
func fieldErrors(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}

	ve := &ValidationError{}
	for _, e := range errs {
		path := e.Path()
		if len(path) > 0 && path[0] == "#Config" {
			path = path[1:]
		}
		format, args := e.Msg()
		ve.Fields = append(ve.Fields, FieldError{
			Field:   strings.Join(path, "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	return ve
}
