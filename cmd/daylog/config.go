package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	pkgdb "github.com/unowned-ai/daylog/pkg/db"
	"github.com/unowned-ai/daylog/pkg/journal"
	"github.com/unowned-ai/daylog/pkg/utils"
)

// config is the resolved view of flags, DAYLOG_* variables and .daylog.yaml,
// in that order of precedence.
type config struct {
	DBPath    string
	WAL       bool
	Sync      string
	LogLevel  string
	LogFormat string
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("db", "", "Path to the database file (default: system data directory)")
	flags.Bool("wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode")
	flags.String("sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	flags.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")

	for _, name := range []string{"db", "wal", "sync", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func loadConfig() (config, error) {
	viper.SetConfigName(".daylog") // .yaml is implicit
	viper.SetEnvPrefix("DAYLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("DAYLOG_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return config{
		DBPath:    viper.GetString("db"),
		WAL:       viper.GetBool("wal"),
		Sync:      viper.GetString("sync"),
		LogLevel:  viper.GetString("log-level"),
		LogFormat: viper.GetString("log-format"),
	}, nil
}

// setupLogging sends logs to stderr so the MCP stream on stdout stays clean.
func setupLogging(level, format string) {
	logLevel := parseLogLevel(level)
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" {
		zlog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if logLevel <= zerolog.DebugLevel {
		zlog.Logger = zlog.Logger.With().Caller().Logger()
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

func (c config) dbOptions() pkgdb.Options {
	return pkgdb.Options{EnableWAL: c.WAL, SyncPragma: c.Sync}
}

// openService opens the configured database, migrating it if needed. The
// returned func closes it.
func openService(ctx context.Context) (*journal.Service, func(), error) {
	path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	dbConn, err := pkgdb.Open(ctx, path, cfg.dbOptions())
	if err != nil {
		return nil, nil, err
	}
	zlog.Debug().Str("db", path).Bool("wal", cfg.WAL).Str("sync", cfg.Sync).Msg("database opened")

	svc := journal.NewService(journal.NewStore(dbConn), journal.WithLogger(zlog.Logger))
	return svc, func() { dbConn.Close() }, nil
}
