package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/unowned-ai/daylog/pkg/journal"
)

// maxExactInt is the largest magnitude a float64 holds without losing integer precision.
const maxExactInt = 1 << 53

// Numbers arrive as float64 once the JSON arguments are decoded. Fractions and
// values beyond maxExactInt are rejected instead of being truncated.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) (int, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return defaultVal, nil
	}
	v, ok := raw.(float64)
	if !ok || v != math.Trunc(v) || math.Abs(v) > maxExactInt {
		return 0, fmt.Errorf("'%s' must be a whole number, got %v", key, raw)
	}
	return int(v), nil
}

func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

func dateArg(req mcp.CallToolRequest, key string) (*time.Time, error) {
	raw := strings.TrimSpace(stringArg(req, key))
	if raw == "" {
		return nil, nil
	}
	d, err := journal.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("'%s' must be a date in YYYY-MM-DD format, got %q", key, raw)
	}
	return &d, nil
}

func moodsArg(req mcp.CallToolRequest, key string) ([]int, error) {
	var moods []int
	for _, part := range strings.Split(stringArg(req, key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("'%s' must be a comma separated list of mood ids, got %q", key, part)
		}
		moods = append(moods, id)
	}
	return moods, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// serviceError turns a service failure into a tool error result, appending
// the id of the entry holding the day for date conflicts.
func serviceError(err error) *mcp.CallToolResult {
	var svcErr *journal.Error
	if errors.As(err, &svcErr) && svcErr.Conflict != nil && svcErr.Conflict.ConflictID != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s (conflicting entry id: %d)", svcErr.Message, *svcErr.Conflict.ConflictID))
	}
	return mcp.NewToolResultError(err.Error())
}
