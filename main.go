package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// cliOptions holds the flag values of the root command.
type cliOptions struct {
	configPath   string
	batchSize    int
	targetType   string
	tables       []string
	schemaOnly   bool
	dataOnly     bool
	onParseError string
	metricsFile  string
	logLevel     string
}

func newRootCommand() (*cobra.Command, *cliOptions) {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "myferry <source-file> <target-host> <target-user> <target-password> <target-database>",
		Short: "SQLite to MySQL/MariaDB migration tool",
		Long: `myferry copies the tables of a SQLite file into a MySQL or MariaDB database.

Each table is recreated on the target with its indexes and its rows are
copied in batches. A target password of "-" is read from the
MYFERRY_TARGET_PASSWORD environment variable (a .env file is honored).`,
		Args: func(cmd *cobra.Command, args []string) error {
			// a config file may supply every positional value
			if len(args) == 0 && opts.configPath != "" {
				return nil
			}
			if len(args) != 5 {
				return fmt.Errorf("expected 5 arguments (source file, target host, user, password, database), got %d", len(args))
			}
			return nil
		},
		Version:      versionString(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			return runMigration(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to migration TOML config file")
	f.IntVar(&opts.batchSize, "batch-size", defaultBatchSize, "rows per INSERT statement")
	f.StringVar(&opts.targetType, "target-type", "mysql", "target database type: mysql or postgres")
	f.StringSliceVar(&opts.tables, "tables", nil, "only migrate these tables (comma-separated)")
	f.BoolVar(&opts.schemaOnly, "schema-only", false, "create tables and indexes without copying rows")
	f.BoolVar(&opts.dataOnly, "data-only", false, "copy rows into existing tables")
	f.StringVar(&opts.onParseError, "on-parse-error", "skip", "unparseable column definitions: skip or fail")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd, opts
}

func main() {
	rootCmd, _ := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig layers positional arguments and explicitly set flags over the
// config file, or over the defaults when there is none.
func buildConfig(cmd *cobra.Command, opts *cliOptions, args []string) (*MigrationConfig, error) {
	cfg := defaultConfig()
	if opts.configPath != "" {
		loaded, err := loadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if len(args) == 5 {
		cfg.Source.Path = args[0]
		cfg.Target.Host = args[1]
		cfg.Target.User = args[2]
		cfg.Target.Password = args[3]
		cfg.Target.Database = args[4]
	}

	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		cfg.BatchSize = opts.batchSize
	}
	if flags.Changed("target-type") {
		cfg.Target.Type = opts.targetType
	}
	if flags.Changed("tables") {
		cfg.Tables = opts.tables
	}
	if flags.Changed("schema-only") {
		cfg.SchemaOnly = opts.schemaOnly
	}
	if flags.Changed("data-only") {
		cfg.DataOnly = opts.dataOnly
	}
	if flags.Changed("on-parse-error") {
		cfg.OnParseError = opts.onParseError
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolvePassword(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runMigration(cmd *cobra.Command, cfg *MigrationConfig) error {
	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log := logger.WithField("target", cfg.Target.Type)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("myferry %s: SQLite -> %s", versionString(), cfg.Target.Type)
	log.Infof("config: batch_size=%d on_parse_error=%s schema_only=%t data_only=%t",
		cfg.BatchSize, cfg.OnParseError, cfg.SchemaOnly, cfg.DataOnly)

	log.Infof("opening source %s...", cfg.Source.Path)
	source, err := openSQLiteCatalog(ctx, cfg.Source.Path)
	if err != nil {
		return fmt.Errorf("connect source: %w", err)
	}
	defer source.Close()

	log.Infof("connecting to %s at %s...", cfg.Target.Type, cfg.Target.Host)
	target, dialect, err := openTarget(ctx, cfg.Target)
	if err != nil {
		return fmt.Errorf("connect target: %w", err)
	}
	defer target.Close()

	metrics := newMigrationMetrics()
	report, err := newMigrator(cfg, source, target, dialect, log, metrics).Run(ctx)
	if werr := metrics.writeTextfile(cfg.MetricsFile); werr != nil {
		log.Warnf("write metrics: %v", werr)
	}
	if err != nil {
		return err
	}
	if n := len(report.FailedTables()); n > 0 {
		log.Warnf("%d table(s) failed; see errors above", n)
	}
	return nil
}
