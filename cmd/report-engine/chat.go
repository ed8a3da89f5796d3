// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/chat"
	"github.com/pdiddy/report-engine/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat [query]",
	Short: "Answer a question from source files",
	Long: `Chat sends a single question to the model along with the contents of
each --source file. The file name (without extension) is used as the source
title. Unlike generate, chat reports provider failures as errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	paths, _ := cmd.Flags().GetStringSlice("source")
	sources, err := loadSources(paths)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	model := modelFlag(cmd)
	if model == "" {
		model = viper.GetString("model")
	}
	answer, err := chat.Answer(context.Background(), client, chat.Question{
		Query:   args[0],
		Sources: sources,
		Model:   model,
	})
	if err != nil {
		return err
	}

	render, _ := cmd.Flags().GetBool("render")
	return printMarkdown(answer, render)
}

func loadSources(paths []string) ([]types.Source, error) {
	sources := make([]types.Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		base := filepath.Base(path)
		sources = append(sources, types.Source{
			Title:   strings.TrimSuffix(base, filepath.Ext(base)),
			Content: string(data),
		})
	}
	return sources, nil
}

func init() {
	chatCmd.Flags().String("model", "", "model identifier (default from config)")
	chatCmd.Flags().StringSlice("source", nil, "source file to answer from (repeatable)")
	chatCmd.Flags().Bool("render", false, "render the answer for the terminal")

	rootCmd.AddCommand(chatCmd)
}
