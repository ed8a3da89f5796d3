// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/internal/metrics"
	"github.com/pdiddy/report-engine/pkg/types"
)

const lpuTopic = "Compare Groq's LPU architecture to traditional GPU architectures for LLM inference"

const (
	cannedFacts = "```json\n" + `{"facts":[
  {"id":1,"detail":"Groq's LPU uses a deterministic, compiler-scheduled dataflow design."},
  {"id":2,"detail":"GPUs rely on thousands of cores and high-bandwidth memory for parallel throughput."},
  {"id":3,"detail":"LPUs keep model weights in on-chip SRAM, avoiding external memory round trips."}
]}` + "\n```"
	cannedDraft  = "# LPU vs GPU\n\nGroq's LPU uses a deterministic design. GPUs rely on parallel cores."
	cannedEdited = "# LPU vs. GPU for LLM Inference\n\nGroq's LPU uses a deterministic, compiler-scheduled design, whereas GPUs rely on massively parallel cores."
)

// stubCompleter answers each stage by recognizing its system prompt.
type stubCompleter struct {
	mu       sync.Mutex
	requests []completion.Request

	research  func() (string, error)
	synthesis func() (string, error)
	editing   func() (string, error)
}

func (s *stubCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	switch {
	case strings.Contains(req.SystemPrompt, "Research Analyst"):
		return s.research()
	case strings.Contains(req.SystemPrompt, "Content Architect"):
		return s.synthesis()
	case strings.Contains(req.SystemPrompt, "Copy Editor"):
		return s.editing()
	}
	return "", errors.New("unexpected system prompt")
}

func canned(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func failing(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func cannedStub() *stubCompleter {
	return &stubCompleter{
		research:  canned(cannedFacts),
		synthesis: canned(cannedDraft),
		editing:   canned(cannedEdited),
	}
}

func TestGenerateReport_EndToEnd(t *testing.T) {
	stub := cannedStub()
	p := New(stub, types.DefaultPipelineConfig())

	got := p.GenerateReport(context.Background(), lpuTopic, "llama-3.1-70b-versatile")

	assert.Equal(t, cannedEdited, got)
	require.Len(t, stub.requests, 3)
	assert.Contains(t, stub.requests[0].UserPrompt, lpuTopic)
	assert.Contains(t, stub.requests[1].UserPrompt, "on-chip SRAM")
	assert.Equal(t, "Edit and polish this Markdown document:\n\n"+cannedDraft, stub.requests[2].UserPrompt)
	for _, req := range stub.requests {
		assert.Equal(t, "llama-3.1-70b-versatile", req.Model)
	}
}

func TestRun_CleanResult(t *testing.T) {
	res := New(cannedStub(), types.DefaultPipelineConfig()).Run(context.Background(), lpuTopic, "m")

	assert.Equal(t, lpuTopic, res.Topic)
	assert.Equal(t, "m", res.Model)
	assert.Equal(t, 3, res.Facts.Value.Len())
	assert.Equal(t, cannedDraft, res.Draft.Value)
	assert.Equal(t, cannedEdited, res.Report())
	assert.Empty(t, res.DegradedStages())
	assert.Positive(t, int64(res.Duration))
}

func TestRun_SingleStageFailures(t *testing.T) {
	svcErr := &completion.ServiceError{Provider: types.ProviderGroq, StatusCode: 500, Err: errors.New("boom")}

	tests := []struct {
		name         string
		stub         *stubCompleter
		wantDegraded []string
		check        func(t *testing.T, res Result, stub *stubCompleter)
	}{
		{
			name:         "research service failure",
			stub:         &stubCompleter{research: failing(svcErr), synthesis: canned(cannedDraft), editing: canned(cannedEdited)},
			wantDegraded: []string{"research"},
			check: func(t *testing.T, res Result, stub *stubCompleter) {
				assert.Equal(t, types.SingleFact("Error running research agent"), res.Facts.Value)
				assert.Contains(t, stub.requests[1].UserPrompt, `"detail": "Error running research agent"`)
			},
		},
		{
			name:         "research parse failure",
			stub:         &stubCompleter{research: canned("I could not find anything."), synthesis: canned(cannedDraft), editing: canned(cannedEdited)},
			wantDegraded: []string{"research"},
			check: func(t *testing.T, res Result, stub *stubCompleter) {
				assert.Equal(t, types.SingleFact("Error parsing research data"), res.Facts.Value)
				assert.Contains(t, stub.requests[1].UserPrompt, "\"id\": 1,\n      \"detail\": \"Error parsing research data\"")
			},
		},
		{
			name:         "synthesis failure",
			stub:         &stubCompleter{research: canned(cannedFacts), synthesis: failing(svcErr), editing: canned(cannedEdited)},
			wantDegraded: []string{"synthesis"},
			check: func(t *testing.T, res Result, stub *stubCompleter) {
				assert.True(t, strings.HasPrefix(res.Draft.Value, "# Error\n\nFailed to synthesize report: "))
				assert.Contains(t, stub.requests[2].UserPrompt, "# Error")
			},
		},
		{
			name:         "editing failure",
			stub:         &stubCompleter{research: canned(cannedFacts), synthesis: canned(cannedDraft), editing: failing(svcErr)},
			wantDegraded: []string{"editing"},
			check: func(t *testing.T, res Result, _ *stubCompleter) {
				assert.Equal(t, cannedDraft, res.Report())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.stub, types.DefaultPipelineConfig()).Run(context.Background(), lpuTopic, "m")

			assert.NotEmpty(t, res.Report())
			assert.Equal(t, tt.wantDegraded, res.DegradedStages())
			require.Len(t, tt.stub.requests, 3, "stages never short-circuit")
			tt.check(t, res, tt.stub)
		})
	}
}

func TestRun_AllStagesFail(t *testing.T) {
	err := errors.New("down")
	stub := &stubCompleter{research: failing(err), synthesis: failing(err), editing: failing(err)}

	res := New(stub, types.DefaultPipelineConfig()).Run(context.Background(), lpuTopic, "m")

	assert.Equal(t, []string{"research", "synthesis", "editing"}, res.DegradedStages())
	assert.Equal(t, "# Error\n\nFailed to synthesize report: down", res.Report())
}

func TestRun_EmptyModelUsesConfig(t *testing.T) {
	stub := cannedStub()
	cfg := types.DefaultPipelineConfig()
	cfg.Model = "configured-model"

	res := New(stub, cfg).Run(context.Background(), "topic", "")

	assert.Equal(t, "configured-model", res.Model)
	for _, req := range stub.requests {
		assert.Equal(t, "configured-model", req.Model)
	}
}

func TestModel(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		requested  string
		want       string
	}{
		{"requested wins", "configured", "requested", "requested"},
		{"configured fallback", "configured", "", "configured"},
		{"package default", "", "", types.DefaultModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultPipelineConfig()
			cfg.Model = tt.configured
			assert.Equal(t, tt.want, New(cannedStub(), cfg).Model(tt.requested))
		})
	}
}

func TestRun_ProgressLines(t *testing.T) {
	var buf bytes.Buffer
	New(cannedStub(), types.DefaultPipelineConfig(), WithProgress(&buf)).Run(context.Background(), lpuTopic, "m")

	want := fmt.Sprintf("[1/3] research: extracted 3 facts\n"+
		"[2/3] synthesis: draft %d characters\n"+
		"[3/3] editing: final report %d characters\n", len(cannedDraft), len(cannedEdited))
	assert.Equal(t, want, buf.String())
}

func TestRun_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)

	stub := &stubCompleter{research: canned(cannedFacts), synthesis: canned(cannedDraft), editing: failing(errors.New("timeout"))}
	New(stub, types.DefaultPipelineConfig(), WithMetrics(m), WithLogger(zap.New(core))).
		Run(context.Background(), lpuTopic, "m")

	assert.Equal(t, 3, logs.FilterMessage("stage finished").Len())
	assert.Equal(t, 1, logs.FilterMessage("editing call failed, keeping draft").Len())

	count, err := testutil.GatherAndCount(reg, "report_engine_stage_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	count, err = testutil.GatherAndCount(reg, "report_engine_reports_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_Concurrent(t *testing.T) {
	p := New(cannedStub(), types.DefaultPipelineConfig())

	var wg sync.WaitGroup
	reports := make([]string, 8)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i] = p.GenerateReport(context.Background(), lpuTopic, "m")
		}(i)
	}
	wg.Wait()

	for _, r := range reports {
		assert.Equal(t, cannedEdited, r)
	}
}
