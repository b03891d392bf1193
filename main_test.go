package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCommand(t *testing.T, argv ...string) (*MigrationConfig, error) {
	t.Helper()
	cmd, opts := newRootCommand()
	require.NoError(t, cmd.ParseFlags(argv))
	args := cmd.Flags().Args()
	if err := cmd.Args(cmd, args); err != nil {
		return nil, err
	}
	return buildConfig(cmd, opts, args)
}

func TestBuildConfigPositional(t *testing.T) {
	cfg, err := parseCommand(t, "app.db", "db.local:3307", "app", "secret", "shop")
	require.NoError(t, err)

	assert.Equal(t, "app.db", cfg.Source.Path)
	assert.Equal(t, TargetConfig{Type: "mysql", Host: "db.local:3307", User: "app", Password: "secret", Database: "shop"}, cfg.Target)
	assert.Equal(t, defaultBatchSize, cfg.BatchSize)
	assert.Equal(t, "skip", cfg.OnParseError)
}

func TestBuildConfigFlags(t *testing.T) {
	cfg, err := parseCommand(t,
		"--batch-size", "2", "--tables", "users,orders", "--target-type", "postgres",
		"--schema-only", "--on-parse-error", "fail", "--log-level", "debug",
		"app.db", "h", "u", "p", "d")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, []string{"users", "orders"}, cfg.Tables)
	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.True(t, cfg.SchemaOnly)
	assert.Equal(t, "fail", cfg.OnParseError)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestBuildConfigFileWithOverrides(t *testing.T) {
	path := writeConfig(t, `
batch_size = 50
on_parse_error = "fail"

[source]
path = "app.db"

[target]
host = "db.local"
user = "app"
password = "secret"
database = "shop"
`)

	cfg, err := parseCommand(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.BatchSize, "unset flags keep file values")
	assert.Equal(t, "fail", cfg.OnParseError)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "app.db"), cfg.Source.Path)

	cfg, err = parseCommand(t, "--config", path, "--batch-size", "7", "other.db", "h2", "u2", "p2", "d2")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.BatchSize)
	assert.Equal(t, "other.db", cfg.Source.Path)
	assert.Equal(t, "h2", cfg.Target.Host)
}

func TestBuildConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantErr string
	}{
		{"too few arguments", []string{"app.db", "h", "u"}, "expected 5 arguments"},
		{"no arguments without config", nil, "expected 5 arguments"},
		{"batch size zero", []string{"--batch-size", "0", "app.db", "h", "u", "p", "d"}, "batch_size"},
		{"bad target type", []string{"--target-type", "oracle", "app.db", "h", "u", "p", "d"}, "unsupported target type"},
		{"conflicting modes", []string{"--schema-only", "--data-only", "app.db", "h", "u", "p", "d"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand(t, tt.argv...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRootCommandConnectionFailures(t *testing.T) {
	dir := t.TempDir()
	_, srcPath := newSQLiteDB(t, "source.db", "CREATE TABLE t (a INT)")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing source", []string{filepath.Join(dir, "missing.db"), "127.0.0.1", "u", "p", "d"}, "connect source"},
		{"unreachable target", []string{srcPath, "127.0.0.1:1", "u", "p", "d"}, "connect target"},
		{"bad log level", []string{"--log-level", "loud", srcPath, "127.0.0.1:1", "u", "p", "d"}, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newRootCommand()
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			assert.ErrorContains(t, cmd.Execute(), tt.wantErr)
		})
	}
}

func TestRootCommandVersion(t *testing.T) {
	cmd, _ := newRootCommand()
	var out bytes.Buffer
	cmd.SetArgs([]string{"--version"})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "myferry version "+versionString())
}
