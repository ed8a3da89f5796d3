// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{ReportsDir: filepath.Join(t.TempDir(), "reports")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(id, topic, model string, created time.Time) types.Report {
	return types.Report{
		ID:        id,
		Topic:     topic,
		Model:     model,
		Markdown:  "# " + topic + "\n\nBody about " + topic + ".",
		FactCount: 2,
		CreatedAt: created,
	}
}

func TestStore_SaveGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)
	want := sampleReport("r1", "LPU vs GPU", "m1", created)
	want.DegradedStages = []string{"research", "editing"}

	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, want.Topic, got.Topic)
	assert.Equal(t, want.Markdown, got.Markdown)
	assert.Equal(t, want.FactCount, got.FactCount)
	assert.Equal(t, want.DegradedStages, got.DegradedStages)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestStore_SaveReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	r := sampleReport("r1", "first", "m", time.Now())
	require.NoError(t, s.Save(ctx, r))

	r.Markdown = "# replaced"
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "# replaced", got.Markdown)
	assert.Nil(t, got.DegradedStages)
}

func TestStore_SaveRequiresID(t *testing.T) {
	assert.Error(t, testStore(t).Save(context.Background(), types.Report{Topic: "x"}))
}

func TestStore_GetMissing(t *testing.T) {
	_, err := testStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_List(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range []types.Report{
		sampleReport("a", "Groq LPU inference", "llama", base),
		sampleReport("b", "GPU memory bandwidth", "llama", base.Add(time.Hour)),
		sampleReport("c", "100% utilization myths", "gpt", base.Add(2*time.Hour)),
	} {
		require.NoError(t, s.Save(ctx, r), "report %d", i)
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all newest first", ListOptions{}, []string{"c", "b", "a"}},
		{"limit", ListOptions{Limit: 2}, []string{"c", "b"}},
		{"query topic case-insensitive", ListOptions{Query: "lpu"}, []string{"a"}},
		{"query body", ListOptions{Query: "bandwidth."}, []string{"b"}},
		{"percent is literal", ListOptions{Query: "100%"}, []string{"c"}},
		{"model filter", ListOptions{Model: "llama"}, []string{"b", "a"}},
		{"no match", ListOptions{Query: "quantum"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleReport("r1", "t", "m", time.Now())))

	require.NoError(t, s.Delete(ctx, "r1"))
	_, err := s.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "r1"), ErrNotFound)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := sampleReport(fmt.Sprintf("r%d", i), "topic", "m", time.Now())
			assert.NoError(t, s.Save(ctx, r))
		}(i)
	}
	wg.Wait()

	got, err := s.List(ctx, ListOptions{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, got, 10)
}
