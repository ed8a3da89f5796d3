// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve generate_report and chat as MCP tools over stdio",
	Long: `MCP runs a Model Context Protocol server on stdin/stdout exposing two
tools: generate_report (topic, model) and chat (query, sources, model). Logs
go to stderr so they never mix with protocol messages. Pass --save to keep
generated reports in the report store.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}
	p, err := buildPipeline(client, nil)
	if err != nil {
		return err
	}

	var saver mcptools.Saver
	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		saver = store
	}

	return mcptools.RunStdio(ctx, mcptools.NewService(p, client, saver), version)
}

func init() {
	mcpCmd.Flags().Bool("save", false, "save generated reports to the report store")

	rootCmd.AddCommand(mcpCmd)
}
