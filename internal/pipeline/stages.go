package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/MMMZZYz/aitest/internal/cases"
	"github.com/MMMZZYz/aitest/internal/classify"
	"github.com/MMMZZYz/aitest/internal/mindmap"
	"github.com/MMMZZYz/aitest/internal/outline"
	"github.com/MMMZZYz/aitest/internal/xmind"
	"golang.org/x/sync/errgroup"
)

// EmptyOutlineTitle is the single child given to a mind map whose outline
// produced nothing.
const EmptyOutlineTitle = "(无内容)"

const progressEvery = 5

// Analyze writes the 5W1H requirement analysis to outPath.
func (r *Runner) Analyze(ctx context.Context, reqText, outPath string) error {
	fmt.Println("🔍 Analyzing requirement (5W1H)...")
	md, err := r.gen.Analyze(ctx, reqText)
	if err != nil {
		return err
	}
	if err := writeText(outPath, md); err != nil {
		return err
	}
	fmt.Printf("✅ Requirement analysis saved: %s\n", outPath)
	return nil
}

// TestPoints generates the test-point document and renders it to mdPath
// under a "# title" heading. When promptPath is set, the exact prompt is
// saved there for review.
func (r *Runner) TestPoints(ctx context.Context, reqText, title, mdPath, promptPath string) (*outline.Document, error) {
	if promptPath != "" {
		if err := writeText(promptPath, r.gen.TestPointPrompt(reqText)); err != nil {
			return nil, err
		}
		fmt.Printf("📝 Prompt saved: %s\n", promptPath)
	}

	fmt.Println("🧠 Generating test points...")
	doc, err := r.gen.TestPoints(ctx, reqText)
	if err != nil {
		return nil, err
	}
	if err := outline.WriteFile(mdPath, doc, title); err != nil {
		return nil, err
	}
	fmt.Printf("✅ Test point outline saved: %s\n", mdPath)
	return doc, nil
}

// MindMapFromMarkdown converts an outline file into a single-sheet archive
// and returns the number of topics written. tables selects how pipe tables
// become topics.
func MindMapFromMarkdown(mdPath, xmindPath, rootTitle string, tables outline.TableMode) (int, error) {
	f, err := os.Open(mdPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	root, err := outline.Parse(f, outline.ParseOptions{RootTitle: rootTitle, Tables: tables})
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", mdPath, err)
	}
	if root.IsLeaf() {
		root.AddChild(EmptyOutlineTitle)
	}

	wb := mindmap.NewWorkbook(mindmap.NewSheet(root.Title, root))
	if err := xmind.WriteFile(xmindPath, wb); err != nil {
		return 0, err
	}
	fmt.Printf("✅ Mind map saved: %s\n", xmindPath)
	return root.Count(), nil
}

// MarkdownFromMindMap writes the first sheet of an archive back as outline
// markdown and returns the number of topics rendered.
func MarkdownFromMindMap(xmindPath, mdPath string) (int, error) {
	wb, err := xmind.ReadFile(xmindPath)
	if err != nil {
		return 0, err
	}
	sheet := wb.Primary()
	if sheet == nil || sheet.Root == nil {
		return 0, fmt.Errorf("%s: %w: no sheet", xmindPath, xmind.ErrMalformedArchive)
	}
	if err := writeText(mdPath, outline.RenderTopic(sheet.Root)); err != nil {
		return 0, err
	}
	fmt.Printf("✅ Outline saved: %s\n", mdPath)
	return sheet.Root.Count(), nil
}

// Modules generates six-dimension test points and writes them as a
// module-grouped review archive.
func (r *Runner) Modules(ctx context.Context, reqText, rootTitle, xmindPath string) (int, error) {
	fmt.Println("🧠 Generating six-dimension test points...")
	points, err := r.gen.SixDimension(ctx, reqText)
	if err != nil {
		return 0, err
	}

	sheet := classify.BuildReviewSheet(points, classify.ReviewOptions{
		RootTitle:    rootTitle,
		Rules:        r.opts.Rules,
		Placeholders: r.opts.Placeholders,
	})
	if err := xmind.WriteFile(xmindPath, mindmap.NewWorkbook(sheet)); err != nil {
		return 0, err
	}
	fmt.Printf("✅ Review mind map saved: %s\n", xmindPath)
	return points.Total(), nil
}

type CasesResult struct {
	LeafPaths int
	Cases     int
	CacheHits int
}

// Cases generates test cases for every leaf path of the archive and writes
// them to xlsxPath using the template's columns. Rows follow leaf order
// whatever the concurrency.
func (r *Runner) Cases(ctx context.Context, xmindPath, xlsxPath string) (CasesResult, error) {
	var res CasesResult

	data, err := os.ReadFile(xmindPath)
	if err != nil {
		return res, err
	}
	leaves, err := xmind.LeafPathsFromArchive(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", xmindPath, err)
	}
	res.LeafPaths = len(leaves)
	log.Printf("[cases] leaf test points: %d", len(leaves))

	columns, err := cases.ReadTemplateColumns(r.templatePath(), r.opts.TemplateSheet)
	if err != nil {
		return res, err
	}

	results := make([][]cases.Case, len(leaves))
	var done, total, hits atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, leaf := range leaves {
		g.Go(func() error {
			cs, hit, err := r.casesFor(gctx, leaf.Full())
			if err != nil {
				return err
			}
			results[i] = cs
			if hit {
				hits.Add(1)
			}
			t := total.Add(int64(len(cs)))
			if n := done.Add(1); n%progressEvery == 0 {
				log.Printf("[cases] processed %d/%d test points, cases so far=%d", n, len(leaves), t)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	var rows []cases.Row
	for _, cs := range results {
		rows = append(rows, cases.MapRows(cs, columns)...)
	}
	res.Cases = len(rows)
	res.CacheHits = int(hits.Load())

	if err := writeWorkbook(xlsxPath, columns, rows); err != nil {
		return res, err
	}
	log.Printf("[cases] done, total cases=%d", len(rows))
	fmt.Printf("✅ Test cases saved: %s\n", xlsxPath)
	return res, nil
}

func (r *Runner) casesFor(ctx context.Context, path []string) ([]cases.Case, bool, error) {
	if r.cache != nil {
		cs, ok, err := r.cache.GetCases(ctx, r.opts.Model, path)
		if err != nil {
			log.Printf("⚠️ case cache read failed: %v", err)
		} else if ok {
			return cs, true, nil
		}
	}

	cs, err := r.gen.Cases(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if r.cache != nil {
		if err := r.cache.PutCases(ctx, r.opts.Model, path, cs); err != nil {
			log.Printf("⚠️ case cache write failed: %v", err)
		}
	}
	return cs, false, nil
}

// templatePath falls back to a template of the same name in the working
// directory when the configured one is missing.
func (r *Runner) templatePath() string {
	path := r.opts.Template
	if _, err := os.Stat(path); err == nil || path == "" {
		return path
	}
	fallback := filepath.Base(path)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return path
}

func writeWorkbook(path string, columns []string, rows []cases.Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return cases.WriteWorkbook(f, columns, rows)
}

func writeText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
