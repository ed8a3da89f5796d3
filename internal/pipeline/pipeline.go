// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the research, synthesis, and editing stages into a
// single report generation run. Every stage degrades instead of failing, so a
// run always yields a non-empty Markdown report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/internal/editing"
	"github.com/pdiddy/report-engine/internal/metrics"
	"github.com/pdiddy/report-engine/internal/research"
	"github.com/pdiddy/report-engine/internal/synthesis"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Pipeline runs the three stages in order against one Completer.
type Pipeline struct {
	cfg         types.PipelineConfig
	researcher  *research.Researcher
	synthesizer *synthesis.Synthesizer
	editor      *editing.Editor
	logger      *zap.Logger
	metrics     *metrics.Metrics
	progress    io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger passed to every stage.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records stage outcomes and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress writes one human-readable line per finished stage to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.progress = w
		}
	}
}

// New builds a Pipeline. Stage settings come from cfg; options add logging,
// metrics, and progress output.
func New(client completion.Completer, cfg types.PipelineConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		logger:   zap.NewNop(),
		progress: io.Discard,
	}
	for _, o := range opts {
		o(p)
	}
	p.logger = p.logger.Named("pipeline")
	p.researcher = research.New(client, cfg.Research, p.logger)
	p.synthesizer = synthesis.New(client, cfg.Synthesis, p.logger)
	p.editor = editing.New(client, cfg.Editing, p.logger)
	return p
}

// Result captures every stage outcome of one run.
type Result struct {
	Topic    string
	Model    string
	Facts    types.Outcome[types.FactSet]
	Draft    types.Outcome[string]
	Final    types.Outcome[string]
	Duration time.Duration
}

// Report returns the final Markdown.
func (r Result) Report() string {
	return r.Final.Value
}

// DegradedStages lists, in pipeline order, the stages that fell back.
func (r Result) DegradedStages() []string {
	var stages []string
	if r.Facts.Degraded() {
		stages = append(stages, metrics.StageResearch)
	}
	if r.Draft.Degraded() {
		stages = append(stages, metrics.StageSynthesis)
	}
	if r.Final.Degraded() {
		stages = append(stages, metrics.StageEditing)
	}
	return stages
}

// Model resolves the model a call should use: requested when set, then the
// configured model, then types.DefaultModel.
func (p *Pipeline) Model(requested string) string {
	switch {
	case requested != "":
		return requested
	case p.cfg.Model != "":
		return p.cfg.Model
	default:
		return types.DefaultModel
	}
}

// Run extracts facts, drafts a report from them, and edits the draft. Run
// never returns an error; stage failures are recorded in the Result.
func (p *Pipeline) Run(ctx context.Context, topic, model string) Result {
	model = p.Model(model)
	start := time.Now()
	res := Result{Topic: topic, Model: model}

	stageStart := time.Now()
	res.Facts = p.researcher.ExtractFacts(ctx, topic, model)
	p.observe(metrics.StageResearch, res.Facts.Degraded(), stageStart)
	fmt.Fprintf(p.progress, "[1/3] research: extracted %d facts\n", res.Facts.Value.Len())
	p.logger.Info("stage finished",
		zap.Int("stage", 1),
		zap.String("name", metrics.StageResearch),
		zap.Int("facts", res.Facts.Value.Len()),
		zap.Bool("degraded", res.Facts.Degraded()))

	stageStart = time.Now()
	res.Draft = p.synthesizer.Synthesize(ctx, topic, res.Facts.Value, model)
	p.observe(metrics.StageSynthesis, res.Draft.Degraded(), stageStart)
	fmt.Fprintf(p.progress, "[2/3] synthesis: draft %d characters\n", len(res.Draft.Value))
	p.logger.Info("stage finished",
		zap.Int("stage", 2),
		zap.String("name", metrics.StageSynthesis),
		zap.Int("chars", len(res.Draft.Value)),
		zap.Bool("degraded", res.Draft.Degraded()))

	stageStart = time.Now()
	res.Final = p.editor.Edit(ctx, res.Draft.Value, model)
	p.observe(metrics.StageEditing, res.Final.Degraded(), stageStart)
	fmt.Fprintf(p.progress, "[3/3] editing: final report %d characters\n", len(res.Final.Value))
	p.logger.Info("stage finished",
		zap.Int("stage", 3),
		zap.String("name", metrics.StageEditing),
		zap.Int("chars", len(res.Final.Value)),
		zap.Bool("degraded", res.Final.Degraded()))

	res.Duration = time.Since(start)
	p.metrics.ReportProduced()
	return res
}

// GenerateReport runs the pipeline and returns only the final Markdown.
func (p *Pipeline) GenerateReport(ctx context.Context, topic, model string) string {
	return p.Run(ctx, topic, model).Report()
}

func (p *Pipeline) observe(stage string, degraded bool, start time.Time) {
	p.metrics.ObserveStage(stage, degraded, time.Since(start))
}
