package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unowned-ai/daylog/pkg/journal"
)

// RegisterTools registers every journal tool on s.
func RegisterTools(s *server.MCPServer, svc *journal.Service) {
	RegisterPingTool(s)
	RegisterGetEntryTool(s, svc)
	RegisterGetEntryByDateTool(s, svc)
	RegisterListEntriesTool(s, svc)
	RegisterSearchEntriesTool(s, svc)
	RegisterSaveEntryTool(s, svc)
	RegisterDeleteEntryTool(s, svc)
	RegisterDeduplicateEntriesTool(s, svc)
	RegisterListTagsTool(s, svc)
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Daylog MCP server is alive."),
	)
	s.AddTool(pingTool, handlePing)
}

func handlePing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong"), nil
}

// RegisterGetEntryTool registers the get_entry tool.
func RegisterGetEntryTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("get_entry",
		mcp.WithDescription("Retrieves one journal entry by its id."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the entry.")),
	)
	s.AddTool(tool, handleGetEntry(svc))
}

func handleGetEntry(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := intArg(req, "id", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if id <= 0 {
			return mcp.NewToolResultError("'id' parameter is required and must be a positive number."), nil
		}

		view, err := svc.GetByID(ctx, int64(id))
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(view)
	}
}

// RegisterGetEntryByDateTool registers the get_entry_by_date tool.
func RegisterGetEntryByDateTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("get_entry_by_date",
		mcp.WithDescription("Retrieves the journal entry written for a calendar day."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day in YYYY-MM-DD format.")),
	)
	s.AddTool(tool, handleGetEntryByDate(svc))
}

func handleGetEntryByDate(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dateArg(req, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if day == nil {
			return mcp.NewToolResultError("'date' parameter is required."), nil
		}

		view, err := svc.GetByDate(ctx, *day)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(view)
	}
}

// RegisterListEntriesTool registers the list_entries tool.
func RegisterListEntriesTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("list_entries",
		mcp.WithDescription("Lists every journal entry, most recent day first."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, handleListEntries(svc))
}

func handleListEntries(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		views, err := svc.GetAll(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(views)
	}
}

// RegisterSearchEntriesTool registers the search_entries tool.
func RegisterSearchEntriesTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("search_entries",
		mcp.WithDescription("Searches journal entries by text, date range, moods and tags. Returns one page and the total match count."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against titles and contents.")),
		mcp.WithString("from", mcp.Description("Earliest day to include, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Latest day to include, YYYY-MM-DD.")),
		mcp.WithString("moods", mcp.Description("Comma separated mood ids; an entry matches any of them.")),
		mcp.WithString("tags", mcp.Description("Comma separated tags; an entry must carry all of them.")),
		mcp.WithNumber("page_index", mcp.Description("Zero-based page number (default 0).")),
		mcp.WithNumber("page_size", mcp.Description(fmt.Sprintf("Entries per page (default %d).", journal.DefaultPageSize))),
	)
	s.AddTool(tool, handleSearchEntries(svc))
}

func handleSearchEntries(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := dateArg(req, "from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := dateArg(req, "to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		moods, err := moodsArg(req, "moods")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		pageIndex, err := intArg(req, "page_index", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pageSize, err := intArg(req, "page_size", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := svc.Search(ctx, journal.SearchParams{
			Query:     stringArg(req, "query"),
			PageIndex: pageIndex,
			PageSize:  pageSize,
			From:      from,
			To:        to,
			MoodIDs:   moods,
			Tags:      journal.SplitTags(stringArg(req, "tags")),
		})
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(res)
	}
}

// RegisterSaveEntryTool registers the save_entry tool.
func RegisterSaveEntryTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("save_entry",
		mcp.WithDescription("Creates a journal entry, or updates one when 'id' is given. Only one entry may exist per day; "+
			"saving onto an occupied day fails and names the existing entry's id."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("id", mcp.Description("Id of the entry to update. Omit to create.")),
		mcp.WithString("entry_date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD.")),
		mcp.WithNumber("primary_mood_id", mcp.Required(), mcp.Description("Positive mood id.")),
		mcp.WithString("title", mcp.Description("Optional title.")),
		mcp.WithString("content_rich", mcp.Description("Entry body as HTML.")),
		mcp.WithString("tags", mcp.Description("Comma separated tags.")),
	)
	s.AddTool(tool, handleSaveEntry(svc))
}

func handleSaveEntry(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dateArg(req, "entry_date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if day == nil {
			return mcp.NewToolResultError("'entry_date' parameter is required."), nil
		}

		id, err := intArg(req, "id", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		mood, err := intArg(req, "primary_mood_id", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		view, err := svc.Save(ctx, &journal.SaveRequest{
			ID:            int64(id),
			EntryDate:     *day,
			Title:         stringArg(req, "title"),
			PrimaryMoodID: mood,
			TagsRaw:       strings.Join(journal.SplitTags(stringArg(req, "tags")), ","),
			ContentRich:   stringArg(req, "content_rich"),
		})
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(view)
	}
}

// RegisterDeleteEntryTool registers the delete_entry tool.
func RegisterDeleteEntryTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("delete_entry",
		mcp.WithDescription("Permanently deletes a journal entry by id."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the entry to delete.")),
	)
	s.AddTool(tool, handleDeleteEntry(svc))
}

func handleDeleteEntry(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := intArg(req, "id", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if id <= 0 {
			return mcp.NewToolResultError("'id' parameter is required and must be a positive number."), nil
		}
		if err := svc.Delete(ctx, int64(id)); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry %d deleted.", id)), nil
	}
}

// RegisterDeduplicateEntriesTool registers the deduplicate_entries tool.
func RegisterDeduplicateEntriesTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("deduplicate_entries",
		mcp.WithDescription("Removes duplicated journal rows and reports how many were removed."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.AddTool(tool, handleDeduplicateEntries(svc))
}

func handleDeduplicateEntries(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		removed, err := svc.Deduplicate(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(map[string]int{"removed": removed})
	}
}

// RegisterListTagsTool registers the list_tags tool.
func RegisterListTagsTool(s *server.MCPServer, svc *journal.Service) {
	tool := mcp.NewTool("list_tags",
		mcp.WithDescription("Lists every tag in use with the number of entries carrying it."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, handleListTags(svc))
}

func handleListTags(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := svc.ListTags(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(tags)
	}
}
