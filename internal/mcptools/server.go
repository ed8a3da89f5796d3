// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcptools exposes report generation and source chat as Model
// Context Protocol tools so agent hosts can call the pipeline directly.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with the generate_report and chat tools
// registered.
func NewServer(svc *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "report-engine",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_report",
		Description: "Research a topic, synthesize a Markdown report from the extracted facts, and copy-edit it. Always returns a report; degraded_stages lists any stage that fell back.",
	}, svc.GenerateReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Answer a question using only the supplied sources.",
	}, svc.Chat)

	return server
}

// RunStdio serves the tools over stdin/stdout until ctx is cancelled or the
// client disconnects.
func RunStdio(ctx context.Context, svc *Service, version string) error {
	return NewServer(svc, version).Run(ctx, &mcp.StdioTransport{})
}
