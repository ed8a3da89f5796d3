// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report API over HTTP",
	Long: `Serve exposes the pipeline over HTTP for the web frontend:

  GET  /api/health           liveness check
  POST /api/generate-report  {"topic", "model"} -> {"success", "report", "id", "degraded_stages"}
  POST /api/chat             {"query", "sources", "model"} -> {"success", "response"}
  GET  /api/reports          saved reports (?q=, ?model=, ?limit=)
  GET  /api/reports/:id      one saved report
  GET  /metrics              Prometheus metrics

Generated reports are saved to the report store. The server shuts down
gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	p, err := buildPipeline(client, reg)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.Config{
		Pipeline: p,
		Client:   client,
		Store:    store,
		Gatherer: reg,
		Logger:   logger,
	})

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("server.address")
	}
	return srv.Run(ctx, addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.address, :5000)")

	rootCmd.AddCommand(serveCmd)
}
