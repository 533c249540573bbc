// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pulseboard/pkg/storage"
)

// NewMCPServer initializes and configures the pulseboard MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(store storage.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"Pulseboard Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{store: store}

	// --- 1. Tool: query_points ---
	s.AddTool(mcp.NewTool("query_points",
		mcp.WithDescription("Query stored data points within an optional time range, ascending by timestamp."),
		mcp.WithString("since", mcp.Description("Inclusive lower bound: epoch seconds or a date-time string. Omit to leave the range open.")),
		mcp.WithString("until", mcp.Description("Inclusive upper bound: epoch seconds or a date-time string. Omit to leave the range open.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of points to return, keeping the most recent. Defaults to 1000.")),
	), h.handleQueryPoints)

	// --- 2. Tool: get_stats ---
	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Report store statistics: total point count, oldest and newest timestamps, and size on disk."),
	), h.handleGetStats)

	return s
}

// StartMCPServer serves the pulseboard MCP server over stdin/stdout until
// the client hangs up.
func StartMCPServer(store storage.Store) error {
	s := NewMCPServer(store)
	return server.ServeStdio(s)
}
