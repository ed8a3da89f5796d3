// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/batch"
	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/report"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a Markdown report for a topic",
	Long: `Generate runs the research, synthesis, and editing stages for a topic
and writes the final report with a YAML front matter header. A failing stage
falls back instead of aborting; degraded stages are reported on stderr.

With --topics-file, generate runs one pipeline per listed topic with bounded
concurrency and writes one file per topic into --out-dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topicsFile, _ := cmd.Flags().GetString("topics-file")
	if topicsFile == "" && len(args) == 0 {
		return fmt.Errorf("topic required: provide a topic argument or --topics-file")
	}
	if topicsFile != "" && len(args) > 0 {
		return fmt.Errorf("provide either a topic argument or --topics-file, not both")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	if topicsFile != "" {
		return runBatchGenerate(ctx, cmd, client, topicsFile)
	}

	topic := strings.TrimSpace(args[0])
	if topic == "" {
		return fmt.Errorf("topic must not be empty")
	}

	p, err := buildPipeline(client, nil, pipeline.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Generating report on: %s\n", topic)
	res := p.Run(ctx, topic, modelFlag(cmd))
	r := report.New(res.Topic, res.Model, res.Report(), res.Facts.Value.Len(), res.DegradedStages())

	if r.Degraded() {
		fmt.Fprintf(os.Stderr, "warning: degraded stages: %s\n", strings.Join(r.DegradedStages, ", "))
	}

	output, _ := cmd.Flags().GetString("output")
	if output != "" && output != "-" {
		if err := report.WriteMarkdown(output, r); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", output)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(ctx, r); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report stored with id %s\n", r.ID)
	}

	render, _ := cmd.Flags().GetBool("render")
	return printMarkdown(r.Markdown, render)
}

func runBatchGenerate(ctx context.Context, cmd *cobra.Command, client completion.Completer, topicsFile string) error {
	topics, err := batch.LoadTopics(topicsFile)
	if err != nil {
		return err
	}
	if model := modelFlag(cmd); model != "" {
		for i := range topics {
			if topics[i].Model == "" {
				topics[i].Model = model
			}
		}
	}

	p, err := buildPipeline(client, nil)
	if err != nil {
		return err
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = viper.GetInt("batch.concurrency")
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	opts := batch.Options{Concurrency: concurrency, OutDir: outDir}

	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Store = store
	}

	summary, err := batch.Run(ctx, p, topics, opts, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d topic(s) failed", summary.Failed)
	}
	return nil
}

// printMarkdown writes md to stdout, rendered for the terminal when render
// is set.
func printMarkdown(md string, render bool) error {
	if !render {
		fmt.Println(md)
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}

func init() {
	generateCmd.Flags().String("model", "", "model identifier (default from config)")
	generateCmd.Flags().StringP("output", "o", "final_report.md", `report file path ("-" for stdout only)`)
	generateCmd.Flags().Bool("save", false, "also save the report to the report store")
	generateCmd.Flags().Bool("render", false, "render the report for the terminal")
	generateCmd.Flags().String("topics-file", "", "YAML file listing topics to generate in batch")
	generateCmd.Flags().Int("concurrency", 0, "concurrent pipelines in batch mode (default from batch.concurrency)")
	generateCmd.Flags().String("out-dir", "reports/generated", "output directory for batch reports")

	rootCmd.AddCommand(generateCmd)
}
