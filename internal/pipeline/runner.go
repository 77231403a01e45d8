package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/MMMZZYz/aitest/internal/cases"
	"github.com/MMMZZYz/aitest/internal/classify"
	"github.com/MMMZZYz/aitest/internal/outline"
	"github.com/MMMZZYz/aitest/internal/storage"
)

// Output file names inside a run directory.
const (
	AnalysisFile   = "需求分析.md"
	TestPointsFile = "测试点分析.md"
	PromptFile     = "原型文件解读.md"
	MindMapFile    = "测试点.xmind"
	CasesFile      = "测试用例.xlsx"
	ReportFile     = "pipeline_report.json"
)

// Generator is the model-backed part of the pipeline.
type Generator interface {
	Analyze(ctx context.Context, reqText string) (string, error)
	TestPointPrompt(reqText string) string
	TestPoints(ctx context.Context, reqText string) (*outline.Document, error)
	SixDimension(ctx context.Context, reqText string) (classify.SixDimension, error)
	Cases(ctx context.Context, path []string) ([]cases.Case, error)
}

// TextExtractor reads a requirement document as plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type Options struct {
	OutputDir  string
	SavePrompt bool

	// RootTitle seeds the mind map root until the outline's own # title replaces it.
	RootTitle    string
	Tables       outline.TableMode
	Rules        []classify.Rule
	Placeholders bool

	Template      string
	TemplateSheet string
	Concurrency   int
	// Model names the case model; it scopes cache entries.
	Model string
}

type Runner struct {
	gen       Generator
	extractor TextExtractor
	cache     storage.CaseStore
	opts      Options
}

// NewRunner wires the pipeline. cache may be nil to disable case caching.
func NewRunner(gen Generator, extractor TextExtractor, cache storage.CaseStore, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "outputs"
	}
	return &Runner{gen: gen, extractor: extractor, cache: cache, opts: opts}
}

// Result lists what a full run produced.
type Result struct {
	OutputDir    string
	AnalysisPath string
	OutlinePath  string
	PromptPath   string
	MindMapPath  string
	CasesPath    string
	ReportPath   string
	Cases        CasesResult
}

// RunDir is the per-input output directory: <output dir>/<input stem>.
func (r *Runner) RunDir(inputPath string) string {
	base := filepath.Base(inputPath)
	return filepath.Join(r.opts.OutputDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// Run extracts the requirement once and then runs analysis, test points,
// mind map and case generation in order. The report is written even when a
// stage fails.
func (r *Runner) Run(ctx context.Context, inputPath string) (res *Result, err error) {
	dir := r.RunDir(inputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	fmt.Printf("📁 Output directory: %s\n", dir)

	res = &Result{
		OutputDir:    dir,
		AnalysisPath: filepath.Join(dir, AnalysisFile),
		OutlinePath:  filepath.Join(dir, TestPointsFile),
		MindMapPath:  filepath.Join(dir, MindMapFile),
		CasesPath:    filepath.Join(dir, CasesFile),
		ReportPath:   filepath.Join(dir, ReportFile),
	}
	if r.opts.SavePrompt {
		res.PromptPath = filepath.Join(dir, PromptFile)
	}

	report := NewReport("run", dir)
	report.Input = inputPath
	defer func() {
		if saveErr := report.Save(res.ReportPath); saveErr != nil {
			log.Printf("⚠️ failed to save pipeline report: %v", saveErr)
		}
	}()

	stage := report.BeginStage("extract")
	reqText, err := r.extractor.Extract(ctx, inputPath)
	if err == nil && strings.TrimSpace(reqText) == "" {
		err = fmt.Errorf("requirement %s is empty", inputPath)
	}
	report.EndStage(stage, map[string]float64{"chars": float64(len([]rune(reqText)))}, nil, err)
	if err != nil {
		return res, err
	}

	stage = report.BeginStage("analyze")
	err = r.Analyze(ctx, reqText, res.AnalysisPath)
	report.EndStage(stage, nil, nil, err)
	if err != nil {
		return res, err
	}

	stage = report.BeginStage("test_points")
	doc, err := r.TestPoints(ctx, reqText, filepath.Base(inputPath), res.OutlinePath, res.PromptPath)
	report.EndStage(stage, map[string]float64{"test_points": float64(doc.PointCount())}, nil, err)
	if err != nil {
		return res, err
	}
	if doc.PointCount() == 0 {
		report.AddSignal("empty_test_points", "test_points", "warning", "the model returned sections without any point, table row or callout item", 0)
	}

	stage = report.BeginStage("mindmap")
	topics, err := MindMapFromMarkdown(res.OutlinePath, res.MindMapPath, r.opts.RootTitle, r.opts.Tables)
	report.EndStage(stage, map[string]float64{"topics": float64(topics)}, nil, err)
	if err != nil {
		return res, err
	}

	stage = report.BeginStage("cases")
	res.Cases, err = r.Cases(ctx, res.MindMapPath, res.CasesPath)
	report.EndStage(stage, map[string]float64{
		"leaf_paths": float64(res.Cases.LeafPaths),
		"cases":      float64(res.Cases.Cases),
		"cache_hits": float64(res.Cases.CacheHits),
	}, nil, err)
	if err != nil {
		return res, err
	}
	if res.Cases.Cases == 0 {
		report.AddSignal("no_cases", "cases", "warning", "no test case was generated for any leaf path", 0)
	}
	if res.Cases.CacheHits > 0 {
		report.AddSignal("cache_reuse", "cases", "info", "cases reused from the local cache", float64(res.Cases.CacheHits))
	}

	fmt.Printf("✅ Pipeline finished. Output directory: %s\n", dir)
	return res, nil
}
