package outline

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/MMMZZYz/aitest/internal/mindmap"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	bulletRe   = regexp.MustCompile(`^\s*[-*+]\s+(.*?)\s*$`)
	tableRowRe = regexp.MustCompile(`^\s*\|.*\|\s*$`)
)

// TableMode selects how a contiguous block of pipe-table rows becomes topics.
type TableMode int

const (
	// TableJoined emits one topic whose title is the verbatim rows joined by "\n".
	// This is the pipeline default.
	TableJoined TableMode = iota
	// TableRows emits one topic per table row under the current heading.
	TableRows
	// TableGrouped emits a GroupTitle topic holding one child per row.
	TableGrouped
)

var tableModeNames = map[TableMode]string{
	TableJoined:  "joined",
	TableRows:    "rows",
	TableGrouped: "grouped",
}

func (m TableMode) String() string {
	if name, ok := tableModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("TableMode(%d)", int(m))
}

// ParseTableMode reads a mode name as written in configuration. The empty
// string selects TableJoined.
func ParseTableMode(name string) (TableMode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return TableJoined, nil
	}
	for mode, n := range tableModeNames {
		if n == name {
			return mode, nil
		}
	}
	return TableJoined, fmt.Errorf("unknown table mode %q (want joined, rows or grouped)", name)
}

// TableGroupTitle is the title of the wrapper topic in TableGrouped mode.
const TableGroupTitle = "表格"

const (
	defaultRootTitle = "测试点"
	defaultUntitled  = "(无标题)"
)

type ParseOptions struct {
	// RootTitle is the root title used until a level-1 heading replaces it.
	RootTitle string
	// Untitled replaces empty heading text.
	Untitled string
	Tables   TableMode
}

func (o ParseOptions) withDefaults() ParseOptions {
	if strings.TrimSpace(o.RootTitle) == "" {
		o.RootTitle = defaultRootTitle
	}
	if o.Untitled == "" {
		o.Untitled = defaultUntitled
	}
	return o
}

// frame is one open heading: its markdown level and the topic collecting children.
type frame struct {
	level  int
	target *mindmap.Topic
}

type parser struct {
	opts  ParseOptions
	root  *mindmap.Topic
	stack []frame
	table []string
}

// Parse reads a heading/bullet/table markdown document into a topic tree.
//
// Level-1 headings retitle the root instead of adding a sibling, so a second
// "# ..." anywhere in the document replaces the root title and closes every
// open heading. Deeper headings attach to the nearest open heading with a
// smaller level; skipped levels are tolerated. Every other non-blank line
// becomes its own leaf topic.
func Parse(r io.Reader, opts ParseOptions) (*mindmap.Topic, error) {
	opts = opts.withDefaults()
	p := &parser{opts: opts, root: mindmap.NewTopic(opts.RootTitle)}
	p.reset()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		p.line(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	p.flushTable()
	return p.root, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(content string, opts ParseOptions) (*mindmap.Topic, error) {
	return Parse(strings.NewReader(content), opts)
}

func (p *parser) reset() {
	p.stack = []frame{{level: 1, target: p.root}}
}

func (p *parser) current() *mindmap.Topic {
	return p.stack[len(p.stack)-1].target
}

func (p *parser) line(line string) {
	if strings.TrimSpace(line) == "" {
		p.flushTable()
		return
	}
	if tableRowRe.MatchString(line) {
		p.table = append(p.table, line)
		return
	}
	p.flushTable()

	if m := headingRe.FindStringSubmatch(line); m != nil {
		p.heading(len(m[1]), strings.TrimSpace(m[2]))
		return
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			p.current().AddChild(text)
		}
		return
	}
	p.current().AddChild(strings.TrimSpace(line))
}

func (p *parser) heading(level int, title string) {
	if title == "" {
		title = p.opts.Untitled
	}
	if level == 1 {
		p.root.Title = title
		p.reset()
		return
	}
	for len(p.stack) > 0 && p.stack[len(p.stack)-1].level >= level {
		p.stack = p.stack[:len(p.stack)-1]
	}
	if len(p.stack) == 0 {
		p.reset()
	}
	child := p.current().AddChild(title)
	p.stack = append(p.stack, frame{level: level, target: child})
}

func (p *parser) flushTable() {
	if len(p.table) == 0 {
		return
	}
	parent := p.current()
	switch p.opts.Tables {
	case TableRows:
		for _, row := range p.table {
			parent.AddChild(row)
		}
	case TableGrouped:
		group := parent.AddChild(TableGroupTitle)
		for _, row := range p.table {
			group.AddChild(row)
		}
	default:
		parent.AddChild(strings.Join(p.table, "\n"))
	}
	p.table = p.table[:0]
}
