package main

import (
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/unowned-ai/daylog/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Daylog MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the journal as MCP
tools via STDIO: ping, get_entry, get_entry_by_date, list_entries, search_entries,
save_entry, delete_entry, deduplicate_entries and list_tags.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\daylog\daylog.db
- macOS: ~/Library/Application Support/daylog/daylog.db
- Linux: ~/.local/share/daylog/daylog.db

Logs go to stderr so they never mix with the JSON-RPC stream on stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewDaylogMCPServer(cmd.Context(), cfg.DBPath, cfg.dbOptions(), zlog.Logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				zlog.Warn().Err(err).Msg("closing database")
			}
		}()

		return srv.Start()
	},
}
