package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	mcppkg "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgdb "github.com/unowned-ai/daylog/pkg/db"
	"github.com/unowned-ai/daylog/pkg/journal"
)

func newTestService(t *testing.T) *journal.Service {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), ":memory:", pkgdb.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return journal.NewService(journal.NewStore(db))
}

func callTool(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcppkg.CallToolResult {
	t.Helper()
	req := mcppkg.CallToolRequest{Params: mcppkg.CallToolParams{Arguments: args}}
	res, err := h(context.Background(), req)
	require.NoError(t, err, "tool failures must be reported in the result")
	require.NotNil(t, res)
	return res
}

func callResultText(t *testing.T, res *mcppkg.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content, "expected non-empty tool result")
	text, ok := mcppkg.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult[T any](t *testing.T, res *mcppkg.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, "unexpected tool error: %s", callResultText(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(callResultText(t, res)), &v))
	return v
}

func TestNewServerRegistersTools(t *testing.T) {
	srv := NewServer(newTestService(t))
	require.NotNil(t, srv)
}

func TestPing(t *testing.T) {
	res := callTool(t, handlePing, nil)
	assert.Equal(t, "pong", callResultText(t, res))
}

func TestSaveAndGetEntry(t *testing.T) {
	svc := newTestService(t)

	saved := decodeResult[journal.DisplayView](t, callTool(t, handleSaveEntry(svc), map[string]any{
		"entry_date":      "2024-06-01",
		"primary_mood_id": float64(3),
		"title":           "Beach",
		"content_rich":    "<p>Sun and <b>sand</b></p>",
		"tags":            " summer , family,summer",
	}))
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "Sun and sand", saved.PreviewText)
	assert.Equal(t, "summer,family", saved.TagsRaw)
	assert.Equal(t, 3, saved.WordCount)

	got := decodeResult[journal.DisplayView](t, callTool(t, handleGetEntry(svc), map[string]any{
		"id": float64(saved.ID),
	}))
	assert.Equal(t, saved, got)

	byDate := decodeResult[journal.DisplayView](t, callTool(t, handleGetEntryByDate(svc), map[string]any{
		"date": "2024-06-01",
	}))
	assert.Equal(t, saved.ID, byDate.ID)
}

func TestSaveEntryConflictNamesExistingEntry(t *testing.T) {
	svc := newTestService(t)
	save := handleSaveEntry(svc)

	first := decodeResult[journal.DisplayView](t, callTool(t, save, map[string]any{
		"entry_date":      "2024-06-01",
		"primary_mood_id": float64(1),
	}))

	res := callTool(t, save, map[string]any{
		"entry_date":      "2024-06-01",
		"primary_mood_id": float64(2),
	})
	require.True(t, res.IsError)
	text := callResultText(t, res)
	assert.Contains(t, text, "already exists")
	assert.Contains(t, text, fmt.Sprintf("(conflicting entry id: %d)", first.ID))
}

func TestSaveEntryRejectsBadArguments(t *testing.T) {
	svc := newTestService(t)
	save := handleSaveEntry(svc)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing date", args: map[string]any{"primary_mood_id": float64(1)}},
		{name: "malformed date", args: map[string]any{"entry_date": "01/06/2024", "primary_mood_id": float64(1)}},
		{name: "missing mood", args: map[string]any{"entry_date": "2024-06-01"}},
		{name: "update of unknown id", args: map[string]any{"id": float64(42), "entry_date": "2024-06-01", "primary_mood_id": float64(1)}},
		{name: "fractional mood", args: map[string]any{"entry_date": "2024-06-01", "primary_mood_id": 1.5}},
		{name: "fractional id", args: map[string]any{"id": 1.9, "entry_date": "2024-06-01", "primary_mood_id": float64(1)}},
		{name: "id as text", args: map[string]any{"id": "1", "entry_date": "2024-06-01", "primary_mood_id": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, save, tt.args)
			assert.True(t, res.IsError, "got %s", callResultText(t, res))
		})
	}
}

func TestNumberArgumentsMustBeWhole(t *testing.T) {
	svc := newTestService(t)
	saved := decodeResult[journal.DisplayView](t, callTool(t, handleSaveEntry(svc), map[string]any{
		"entry_date":      "2024-06-01",
		"primary_mood_id": float64(2),
	}))
	require.Equal(t, int64(1), saved.ID)

	for _, id := range []any{1.9, 1e300, math.Inf(1)} {
		res := callTool(t, handleGetEntry(svc), map[string]any{"id": id})
		assert.True(t, res.IsError, "id %v", id)
		assert.Contains(t, callResultText(t, res), "whole number")

		res = callTool(t, handleDeleteEntry(svc), map[string]any{"id": id})
		assert.True(t, res.IsError, "id %v", id)
	}

	res := callTool(t, handleSearchEntries(svc), map[string]any{"page_size": 2.5})
	assert.True(t, res.IsError)

	_, err := svc.GetByID(context.Background(), saved.ID)
	assert.NoError(t, err, "entry 1 must survive the rejected deletes")
}

func TestSearchEntries(t *testing.T) {
	svc := newTestService(t)
	save := handleSaveEntry(svc)

	for _, args := range []map[string]any{
		{"entry_date": "2024-01-05", "primary_mood_id": float64(1), "title": "Good mood", "tags": "work"},
		{"entry_date": "2024-01-10", "primary_mood_id": float64(2), "title": "Mood swing", "tags": "work,travel"},
		{"entry_date": "2024-02-01", "primary_mood_id": float64(2), "title": "mood in feb", "tags": "travel"},
	} {
		decodeResult[journal.DisplayView](t, callTool(t, save, args))
	}

	res := decodeResult[journal.SearchResult](t, callTool(t, handleSearchEntries(svc), map[string]any{
		"query": "mood",
		"from":  "2024-01-01",
		"to":    "2024-01-31",
	}))
	assert.Equal(t, 2, res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Mood swing", res.Items[0].Title)

	res = decodeResult[journal.SearchResult](t, callTool(t, handleSearchEntries(svc), map[string]any{
		"moods":     "2",
		"tags":      "travel, work",
		"page_size": float64(1),
	}))
	assert.Equal(t, 1, res.TotalCount)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Mood swing", res.Items[0].Title)

	bad := callTool(t, handleSearchEntries(svc), map[string]any{"moods": "happy"})
	assert.True(t, bad.IsError)

	bad = callTool(t, handleSearchEntries(svc), map[string]any{"page_index": float64(-1)})
	assert.True(t, bad.IsError)
}

func TestDeleteListAndTags(t *testing.T) {
	svc := newTestService(t)
	save := handleSaveEntry(svc)

	a := decodeResult[journal.DisplayView](t, callTool(t, save, map[string]any{
		"entry_date": "2024-03-01", "primary_mood_id": float64(1), "tags": "a,b",
	}))
	decodeResult[journal.DisplayView](t, callTool(t, save, map[string]any{
		"entry_date": "2024-03-02", "primary_mood_id": float64(1), "tags": "b",
	}))

	tags := decodeResult[[]journal.TagCount](t, callTool(t, handleListTags(svc), nil))
	assert.Equal(t, []journal.TagCount{{Tag: "a", Count: 1}, {Tag: "b", Count: 2}}, tags)

	res := callTool(t, handleDeleteEntry(svc), map[string]any{"id": float64(a.ID)})
	require.False(t, res.IsError, callResultText(t, res))

	res = callTool(t, handleDeleteEntry(svc), map[string]any{"id": float64(a.ID)})
	assert.True(t, res.IsError)
	assert.Contains(t, callResultText(t, res), "not found")

	all := decodeResult[[]journal.DisplayView](t, callTool(t, handleListEntries(svc), nil))
	require.Len(t, all, 1)
	assert.Equal(t, "2024-03-02", journal.FormatDate(all[0].EntryDate))

	dedup := decodeResult[map[string]int](t, callTool(t, handleDeduplicateEntries(svc), nil))
	assert.Equal(t, map[string]int{"removed": 0}, dedup)
}
