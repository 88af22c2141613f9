package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	daylogpkg "github.com/unowned-ai/daylog/pkg"
	pkgdb "github.com/unowned-ai/daylog/pkg/db"
	"github.com/unowned-ai/daylog/pkg/journal"
	"github.com/unowned-ai/daylog/pkg/utils"
)

// DaylogMCPServer serves the journal tools over stdio.
type DaylogMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	service   *journal.Service
	log       zerolog.Logger
	DbPath    string
}

// NewServer builds an MCP server with every journal tool registered on svc.
func NewServer(svc *journal.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Daylog MCP Server",
		daylogpkg.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)
	RegisterTools(s, svc)
	return s
}

// NewDaylogMCPServer opens (and migrates) the database at dbPath and wires a
// journal service and the MCP tools onto it.
func NewDaylogMCPServer(ctx context.Context, dbPath string, opts pkgdb.Options, logger zerolog.Logger) (*DaylogMCPServer, error) {
	resolved, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.Open(ctx, resolved, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", resolved, err)
	}

	svc := journal.NewService(journal.NewStore(dbConn), journal.WithLogger(logger))

	return &DaylogMCPServer{
		mcpServer: NewServer(svc),
		db:        dbConn,
		service:   svc,
		log:       logger,
		DbPath:    resolved,
	}, nil
}

// Start runs the stdio event loop until stdin closes.
func (s *DaylogMCPServer) Start() error {
	s.log.Info().Str("db", s.DbPath).Msg("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// Service returns the journal service the tools run on.
func (s *DaylogMCPServer) Service() *journal.Service {
	return s.service
}

// MCPRawServer exposes the raw mcp-go server.
func (s *DaylogMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close checkpoints the WAL and closes the database.
func (s *DaylogMCPServer) Close() error {
	if s.db == nil {
		return nil
	}
	// TRUNCATE waits for readers and writes the WAL back to the main file.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		s.log.Warn().Err(err).Msg("WAL checkpoint failed during close")
	}
	return s.db.Close()
}
