package classify

import (
	"fmt"
	"log"

	"github.com/MMMZZYz/aitest/internal/mindmap"
)

// Placeholder children attached under every test point for reviewers to fill in.
var Placeholders = []string{
	"优先级：P0/P1/P2（待定）",
	"备注：口径/数据/前置（待补）",
	"关联：页面/接口/字段（待补）",
}

type ReviewOptions struct {
	RootTitle  string
	SheetTitle string // defaults to RootTitle
	Rules      []Rule
	// Placeholders adds the reviewer placeholder children to each test point.
	Placeholders bool
	// Quiet suppresses the uncategorized count log line.
	Quiet bool
}

// BuildReviewSheet lays the points out as root > module > category > test point.
//
// Test points are titled "TP-<CODE>-<NNN>  <item>". The sequence runs across
// all categories of a module and restarts at 001 for the next module. Hidden
// risk items carry a "⚠ " prefix.
func BuildReviewSheet(points SixDimension, opts ReviewOptions) *mindmap.Sheet {
	bucket := Group(points, opts.Rules)
	if !opts.Quiet {
		log.Printf("⚠️ uncategorized test points: %d", bucket.Count(Uncategorized))
	}

	root := mindmap.NewTopic(opts.RootTitle)
	for _, mod := range bucket.Modules() {
		modTopic := root.AddChild(mod)
		seq := 0
		for _, cat := range Categories {
			items := bucket.Items(mod, cat)
			if len(items) == 0 {
				continue
			}
			catTopic := modTopic.AddChild(cat)
			code := Code(cat)
			for _, item := range items {
				seq++
				title := fmt.Sprintf("TP-%s-%03d  %s", code, seq, item)
				if cat == HiddenRisk {
					title = "⚠ " + title
				}
				tp := catTopic.AddChild(title)
				if opts.Placeholders {
					for _, p := range Placeholders {
						tp.AddChild(p)
					}
				}
			}
		}
	}

	sheetTitle := opts.SheetTitle
	if sheetTitle == "" {
		sheetTitle = opts.RootTitle
	}
	return mindmap.NewSheet(sheetTitle, root)
}
