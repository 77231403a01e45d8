package outline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/MMMZZYz/aitest/internal/mindmap"
)

// PadRow fits a table row to width columns: short rows are padded with empty
// cells and long rows are truncated. A ragged row is never an error.
func PadRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// RenderTable renders a pipe table: header row, "---" separator, data rows.
func RenderTable(headers []string, rows [][]string) string {
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	lines := []string{tableLine(headers), tableLine(seps)}
	for _, r := range rows {
		lines = append(lines, tableLine(PadRow(r, len(headers))))
	}
	return strings.Join(lines, "\n")
}

func tableLine(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// Render turns a structured result into the outline markdown consumed by Parse.
// title is the document title; it falls back to doc.Title when empty.
func Render(doc *Document, title string) string {
	if strings.TrimSpace(title) == "" && doc != nil {
		title = doc.Title
	}
	var blocks []string
	emit := func(block string) {
		blocks = append(blocks, block, "")
	}

	emit("# " + title)
	if doc != nil {
		for _, section := range doc.Sections {
			emit("## " + section.Title)
			for _, sub := range section.Subsections {
				emit("### " + sub.Title)
				for _, p := range sub.Points {
					emit(p)
				}
				for _, t := range sub.Tables {
					if t.Title != "" {
						emit(t.Title)
					}
					emit(RenderTable(t.Headers, t.Rows))
				}
				for _, c := range sub.Callouts {
					emit(c.Title)
					items := make([]string, 0, len(c.Items))
					for _, it := range c.Items {
						items = append(items, "- "+it)
					}
					if len(items) > 0 {
						emit(strings.Join(items, "\n"))
					}
				}
			}
		}
	}

	return strings.TrimRight(strings.Join(blocks, "\n"), " \t\r\n") + "\n"
}

// WriteFile renders doc and writes it to path, creating parent directories.
func WriteFile(path string, doc *Document, title string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Render(doc, title)), 0644)
}

// RenderTopic writes a topic tree back as outline markdown. The root becomes
// the "#" title, topics with children become headings one level below their
// parent, and leaves become bullets. Multi-line leaves (joined tables) are
// written verbatim. Headings deeper than "######" are flattened to that level,
// and a leaf that follows a heading sibling reattaches to that heading when
// the output is parsed again.
func RenderTopic(root *mindmap.Topic) string {
	if root == nil {
		return "\n"
	}
	var sb strings.Builder
	sb.WriteString("# " + root.Title + "\n\n")
	renderChildren(&sb, root, 1)
	return strings.TrimRight(sb.String(), " \t\r\n") + "\n"
}

func renderChildren(sb *strings.Builder, parent *mindmap.Topic, depth int) {
	pendingBullets := false
	for _, c := range parent.Children {
		switch {
		case !c.IsLeaf():
			if pendingBullets {
				sb.WriteString("\n")
				pendingBullets = false
			}
			level := depth + 1
			if level > 6 {
				level = 6
			}
			sb.WriteString(strings.Repeat("#", level) + " " + c.Title + "\n\n")
			renderChildren(sb, c, depth+1)
		case strings.Contains(c.Title, "\n"):
			if pendingBullets {
				sb.WriteString("\n")
				pendingBullets = false
			}
			sb.WriteString(c.Title + "\n\n")
		default:
			sb.WriteString("- " + c.Title + "\n")
			pendingBullets = true
		}
	}
	if pendingBullets {
		sb.WriteString("\n")
	}
}
