package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_FinalizeSummary(t *testing.T) {
	r := NewReport("cases", "out")

	h := r.BeginStage("cases")
	r.EndStage(h, map[string]float64{"leaf_paths": 4, "cases": 9, "cache_hits": 2, " ": 1}, []string{" ", "resumed"}, nil)
	h = r.BeginStage("mindmap")
	r.EndStage(h, nil, nil, errors.New("disk full"))

	r.AddSignal("cache_reuse", "cases", "INFO", "reused", 2)
	r.AddSignal("no_cases", "cases", "warning", "none", 0)
	r.AddSignal("", "cases", "warning", "dropped", 0)

	r.Finalize()

	assert.Equal(t, ReportSummary{
		StageCount:        2,
		FailedStages:      1,
		LeafPaths:         4,
		Cases:             9,
		CacheHits:         2,
		SignalsBySeverity: map[string]int{"critical": 0, "warning": 1, "info": 1},
	}, r.Summary)

	require.Len(t, r.Signals, 2)
	assert.Equal(t, "no_cases", r.Signals[0].Code)
	assert.Equal(t, map[string]float64{"leaf_paths": 4, "cases": 9, "cache_hits": 2}, r.Stages[0].Counters)
	assert.Equal(t, []string{"resumed"}, r.Stages[0].Notes)
	assert.Equal(t, "disk full", r.Stages[1].Error)
}

func TestReport_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ReportFile)
	r := NewReport("run", "out")
	require.NoError(t, r.Save(path))
	assert.FileExists(t, path)

	var nilReport *Report
	assert.NoError(t, nilReport.Save(path))
}
