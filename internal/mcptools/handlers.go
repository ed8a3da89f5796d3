// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdiddy/report-engine/internal/chat"
	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/pkg/types"
)

// GenerateReportInput is the generate_report tool input.
type GenerateReportInput struct {
	Topic string `json:"topic" jsonschema:"the topic to research and write a report about"`
	Model string `json:"model,omitempty" jsonschema:"model identifier; defaults to the configured model"`
}

// GenerateReportOutput is the generate_report tool output.
type GenerateReportOutput struct {
	ID             string   `json:"id"`
	Report         string   `json:"report"`
	DegradedStages []string `json:"degraded_stages"`
}

// ChatSource is one document the chat tool answers from.
type ChatSource struct {
	Title   string `json:"title,omitempty" jsonschema:"source title"`
	Content string `json:"content" jsonschema:"source text"`
}

// ChatInput is the chat tool input.
type ChatInput struct {
	Query   string       `json:"query" jsonschema:"the question to answer"`
	Sources []ChatSource `json:"sources,omitempty" jsonschema:"documents to ground the answer in"`
	Model   string       `json:"model,omitempty" jsonschema:"model identifier; defaults to the configured model"`
}

// ChatOutput is the chat tool output.
type ChatOutput struct {
	Response string `json:"response"`
}

// Saver persists generated reports.
type Saver interface {
	Save(ctx context.Context, r types.Report) error
}

// Service holds the dependencies used by the tool handlers. Store is
// optional.
type Service struct {
	pipeline *pipeline.Pipeline
	client   completion.Completer
	store    Saver
}

// NewService creates a Service. A nil store disables saving.
func NewService(p *pipeline.Pipeline, client completion.Completer, store Saver) *Service {
	return &Service{pipeline: p, client: client, store: store}
}

// GenerateReport runs the full pipeline for one topic.
func (s *Service) GenerateReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateReportInput,
) (*mcp.CallToolResult, GenerateReportOutput, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return nil, GenerateReportOutput{}, errors.New("topic is required")
	}

	res := s.pipeline.Run(ctx, input.Topic, input.Model)
	r := report.New(res.Topic, res.Model, res.Report(), res.Facts.Value.Len(), res.DegradedStages())
	if s.store != nil {
		if err := s.store.Save(ctx, r); err != nil {
			return nil, GenerateReportOutput{}, fmt.Errorf("saving report: %w", err)
		}
	}

	stages := r.DegradedStages
	if stages == nil {
		stages = []string{}
	}
	return nil, GenerateReportOutput{ID: r.ID, Report: r.Markdown, DegradedStages: stages}, nil
}

// Chat answers a question from the supplied sources.
func (s *Service) Chat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	q := chat.Question{Query: input.Query, Model: s.pipeline.Model(input.Model)}
	for _, src := range input.Sources {
		q.Sources = append(q.Sources, types.Source{Title: src.Title, Content: src.Content})
	}
	answer, err := chat.Answer(ctx, s.client, q)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, ChatOutput{Response: answer}, nil
}
