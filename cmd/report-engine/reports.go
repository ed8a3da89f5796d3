// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/pkg/types"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved reports (list, show, delete)",
	Long: `Reports manages the local SQLite report store under reports_dir.
Reports are added with generate --save, generate --topics-file --save, or
through the HTTP and MCP servers.`,
}

// --- list subcommand ---

var reportsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List saved reports, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportsList,
}

func runReportsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := report.ListOptions{}
	if len(args) > 0 {
		opts.Query = args[0]
	}
	opts.Model, _ = cmd.Flags().GetString("model")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	reports, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatReportList(reports, jsonOutput)
}

func formatReportList(reports []types.Report, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	if len(reports) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-40s  %-5s  %s\n",
		"ID", "Created", "Topic", "Facts", "Degraded")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for _, r := range reports {
		topic := r.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-40s  %-5d  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), topic, r.FactCount,
			strings.Join(r.DegradedStages, ","))
	}

	fmt.Fprintf(os.Stdout, "\n%d reports\n", len(reports))
	return nil
}

// --- show subcommand ---

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	render, _ := cmd.Flags().GetBool("render")
	return printMarkdown(r.Markdown, render)
}

// --- delete subcommand ---

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	reportsListCmd.Flags().String("model", "", "only list reports generated with this model")
	reportsListCmd.Flags().Int("limit", 20, "maximum number of reports")
	reportsListCmd.Flags().Bool("json", false, "output results as JSON")

	reportsShowCmd.Flags().Bool("json", false, "output the report and metadata as JSON")
	reportsShowCmd.Flags().Bool("render", false, "render the report for the terminal")

	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsDeleteCmd)
	rootCmd.AddCommand(reportsCmd)
}
