package mindmap

import (
	"strings"

	"github.com/google/uuid"
)

// Topic is a labeled node of the mind map. A topic exclusively owns its children.
type Topic struct {
	ID       string
	Title    string
	Children []*Topic
}

// Sheet is the unit of serialization: one named tree.
type Sheet struct {
	ID    string
	Title string
	Root  *Topic
}

// Workbook is an ordered list of sheets. Only single-sheet workbooks are built
// by this module, but decoding accepts any number of sheets.
type Workbook struct {
	Sheets []*Sheet
}

// NewID returns a fresh identifier: a random UUID rendered as 32 hex chars.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewTopic allocates a topic with a fresh id.
func NewTopic(title string, children ...*Topic) *Topic {
	t := &Topic{ID: NewID(), Title: title}
	t.Append(children...)
	return t
}

// AddChild appends a new child topic and returns it for further nesting.
func (t *Topic) AddChild(title string) *Topic {
	child := NewTopic(title)
	t.Children = append(t.Children, child)
	return child
}

// Append attaches already-built subtrees, preserving order. Nil entries are ignored.
func (t *Topic) Append(children ...*Topic) {
	for _, c := range children {
		if c == nil {
			continue
		}
		t.Children = append(t.Children, c)
	}
}

func (t *Topic) IsLeaf() bool {
	return len(t.Children) == 0
}

// Walk visits the subtree in pre-order. depth is 0 for t itself.
// Returning false from fn skips the children of the visited topic.
func (t *Topic) Walk(fn func(topic *Topic, depth int) bool) {
	walkTopic(t, 0, fn)
}

func walkTopic(t *Topic, depth int, fn func(*Topic, int) bool) {
	if t == nil {
		return
	}
	if !fn(t, depth) {
		return
	}
	for _, c := range t.Children {
		walkTopic(c, depth+1, fn)
	}
}

// Count returns the number of topics in the subtree, t included.
func (t *Topic) Count() int {
	n := 0
	t.Walk(func(*Topic, int) bool {
		n++
		return true
	})
	return n
}

// NewSheet wraps root in a sheet with a fresh id.
func NewSheet(title string, root *Topic) *Sheet {
	return &Sheet{ID: NewID(), Title: title, Root: root}
}

// NewWorkbook builds a workbook from the given sheets.
func NewWorkbook(sheets ...*Sheet) *Workbook {
	wb := &Workbook{}
	for _, s := range sheets {
		if s != nil {
			wb.Sheets = append(wb.Sheets, s)
		}
	}
	return wb
}

// Primary returns the first sheet, or nil for an empty workbook.
func (wb *Workbook) Primary() *Sheet {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil
	}
	return wb.Sheets[0]
}
