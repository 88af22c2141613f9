package main

import (
	"fmt"
	"os"
	"strings"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	daylog "github.com/unowned-ai/daylog/pkg"
	pkgdb "github.com/unowned-ai/daylog/pkg/db"
	"github.com/unowned-ai/daylog/pkg/utils"
)

var cfg config

var rootCmd = &cobra.Command{
	Use:     "daylog",
	Short:   "A daily journal with one entry per day.",
	Long:    `daylog keeps one journal entry per calendar day in a local SQLite database, and serves it to AI models over MCP.`,
	Version: fmt.Sprintf("v%s", daylog.Version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for daylog.

Examples:

  Bash (current shell):
    $ source <(daylog completion bash)

  Zsh:
    $ daylog completion zsh > "${fpath[1]}/_daylog"

  Fish:
    $ daylog completion fish > ~/.config/fish/completions/daylog.fish

  PowerShell:
    PS> daylog completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of daylog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), daylog.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the daylog database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Create or upgrade the database schema",
	Long: `Opens the SQLite database (the --db flag, DAYLOG_DB, or the system default) and
brings the journaldb component to the schema version this build expects. A missing
database is created. A database written by a newer build is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return err
		}

		zlog.Info().Str("db", path).Bool("wal", cfg.WAL).Str("sync", cfg.Sync).Msg("upgrading database")
		dbConn, err := pkgdb.Open(cmd.Context(), path, cfg.dbOptions())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Database at %s is at schema version %d.\n", path, pkgdb.TargetSchemaVersion)
		return nil
	},
}

func initCmd() {
	bindFlags(rootCmd)

	dbCmd.AddCommand(dbUpgradeCmd)

	initEntriesCmd()
	initSearchCmd()
	initTagsCmd()
	initBackupCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, entriesCmd, searchCmd, tagsCmd, exportCmd, importCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
