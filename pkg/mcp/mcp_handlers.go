package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
	"pulseboard/pkg/timeparse"
)

// defaultQueryLimit caps query_points results so a large store cannot blow
// up an agent's context window.
const defaultQueryLimit = 1000

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	store storage.Store
}

func (h *toolHandler) handleQueryPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req storage.QueryRequest
	if s := request.GetString("since", ""); s != "" {
		t := timeparse.Normalize(s)
		req.Since = &t
	}
	if u := request.GetString("until", ""); u != "" {
		t := timeparse.Normalize(u)
		req.Until = &t
	}

	points, err := h.store.Query(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	limit := request.GetInt("limit", defaultQueryLimit)
	if limit > 0 && len(points) > limit {
		// Keep the tail: agents usually want the most recent points.
		points = points[len(points)-limit:]
	}
	if points == nil {
		points = []point.Point{}
	}

	jsonData, _ := json.MarshalIndent(points, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.store.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}

	out := map[string]any{
		"total_points": stats.TotalPoints,
		"size_bytes":   stats.SizeBytes,
	}
	if !stats.OldestPoint.IsZero() {
		out["oldest_point"] = stats.OldestPoint.UTC().Format(point.TimeLayout)
		out["newest_point"] = stats.NewestPoint.UTC().Format(point.TimeLayout)
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
