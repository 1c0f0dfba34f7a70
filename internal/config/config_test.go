package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treegrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database: /tmp/trees.db
listen: ":9090"
scope: 3
timeout: 2s
retries: 2
metrics: false
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/trees.db", cfg.Database)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, int64(3), cfg.Scope)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.Retries)
	assert.False(t, cfg.Metrics)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Database, cfg.Database)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "databse: typo.db\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDatabase: "/var/lib/treegrid.db",
		EnvServer:   "http://trees.internal:8080",
		EnvScope:    "7",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "/var/lib/treegrid.db", cfg.Database)
	assert.Equal(t, "http://trees.internal:8080", cfg.Server)
	assert.Equal(t, int64(7), cfg.Scope)
	assert.Equal(t, Default().Listen, cfg.Listen)
}

func TestApplyEnv_BadScope(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvScope {
			return "first", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvScope)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero scope", func(c *Config) { c.Scope = 0 }},
		{"negative retries", func(c *Config) { c.Retries = -1 }},
		{"too many retries", func(c *Config) { c.Retries = 11 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"listen without port", func(c *Config) { c.Listen = "localhost" }},
		{"server without scheme", func(c *Config) { c.Server = "trees.internal:8080" }},
		{"no backend", func(c *Config) { c.Database = ""; c.Server = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestValidate_NamesTheField(t *testing.T) {
	cfg := Default()
	cfg.Scope = 0

	err := cfg.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields)
	assert.Contains(t, ve.Fields[0].Field, "scope")
	assert.Contains(t, err.Error(), "scope")
}

func TestValidate_RemoteOnly(t *testing.T) {
	cfg := Default()
	cfg.Database = ""
	cfg.Server = "https://trees.example.com"
	assert.NoError(t, cfg.Validate())
}
