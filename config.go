package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultBatchSize = 100
	passwordEnvVar   = "MYFERRY_TARGET_PASSWORD"
)

// MigrationConfig holds the migration settings from the TOML file and the
// command line.
type MigrationConfig struct {
	Source       SourceConfig `toml:"source"`
	Target       TargetConfig `toml:"target"`
	BatchSize    int          `toml:"batch_size"`
	OnParseError string       `toml:"on_parse_error"` // skip|fail
	SchemaOnly   bool         `toml:"schema_only"`
	DataOnly     bool         `toml:"data_only"`
	Tables       []string     `toml:"tables"`
	MetricsFile  string       `toml:"metrics_file"`
	LogLevel     string       `toml:"log_level"`
	Hooks        HooksConfig  `toml:"hooks"`

	// configDir is the directory containing the TOML file, used to resolve relative paths.
	configDir string
}

// SourceConfig identifies the source SQLite file.
type SourceConfig struct {
	Path string `toml:"path"`
}

// TargetConfig identifies the target database. Host may carry a port.
type TargetConfig struct {
	Type     string `toml:"type"` // "mysql" or "postgres"
	Host     string `toml:"host"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type HooksConfig struct {
	BeforeData []string `toml:"before_data"`
	AfterData  []string `toml:"after_data"`
}

func defaultConfig() MigrationConfig {
	return MigrationConfig{
		Target:       TargetConfig{Type: "mysql"},
		BatchSize:    defaultBatchSize,
		OnParseError: "skip",
		LogLevel:     "info",
	}
}

// loadConfig reads a TOML config file over the defaults. Validation happens
// after command-line overrides are applied.
func loadConfig(path string) (*MigrationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)
	cfg.Source.Path = cfg.resolvePath(cfg.Source.Path)
	return &cfg, nil
}

func (c *MigrationConfig) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}
	switch c.OnParseError {
	case "skip", "fail":
	default:
		return fmt.Errorf("on_parse_error must be one of: skip, fail")
	}
	if c.SchemaOnly && c.DataOnly {
		return fmt.Errorf("schema_only and data_only are mutually exclusive")
	}
	if _, err := dialectFor(c.Target.Type); err != nil {
		return err
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source file is required")
	}
	if c.Target.Host == "" {
		return fmt.Errorf("target host is required")
	}
	if c.Target.User == "" {
		return fmt.Errorf("target user is required")
	}
	if c.Target.Database == "" {
		return fmt.Errorf("target database is required")
	}
	for i, t := range c.Tables {
		c.Tables[i] = strings.TrimSpace(t)
	}
	return nil
}

// resolvePath resolves a path relative to the config file directory.
func (c *MigrationConfig) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.configDir == "" || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(c.configDir, p)
}

// resolvePassword replaces a "-" password with the value of
// MYFERRY_TARGET_PASSWORD, after loading .env from the working directory.
func (c *MigrationConfig) resolvePassword() error {
	if c.Target.Password != "-" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	pw, ok := os.LookupEnv(passwordEnvVar)
	if !ok {
		return fmt.Errorf("target password %q requires %s to be set", "-", passwordEnvVar)
	}
	c.Target.Password = pw
	return nil
}

// tableSelected reports whether name is included by the tables filter.
func (c *MigrationConfig) tableSelected(name string) bool {
	return len(c.Tables) == 0 || slices.Contains(c.Tables, name)
}
