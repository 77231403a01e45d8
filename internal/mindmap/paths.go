package mindmap

import (
	"errors"
	"strings"
)

// ErrNoLeafPaths is returned when a tree yields no test point at all,
// e.g. an empty or root-only tree.
var ErrNoLeafPaths = errors.New("no leaf paths found")

// Leaf is one atomic test point: the titles from just below the sheet root
// down to a topic that nothing else extends.
type Leaf struct {
	Root string
	Path []string
}

// Full returns the path prefixed with the root title, if the root has one.
func (l Leaf) Full() []string {
	if l.Root == "" {
		return append([]string(nil), l.Path...)
	}
	return append([]string{l.Root}, l.Path...)
}

func (l Leaf) String() string {
	return strings.Join(l.Full(), " > ")
}

// LeafPaths collects the leaf paths of every sheet, in sheet order.
func LeafPaths(wb *Workbook) ([]Leaf, error) {
	var out []Leaf
	if wb != nil {
		for _, s := range wb.Sheets {
			if s == nil || s.Root == nil {
				continue
			}
			out = append(out, LeavesOf(s.Root)...)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoLeafPaths
	}
	return out, nil
}

// LeavesOf returns the leaf paths below root in pre-order.
//
// Titles are trimmed; a topic with an empty title contributes nothing to the
// path but its children are still visited. A path is a leaf when no other
// collected path strictly extends it, so classification is by title path and
// not by topic identity: two sibling branches with the same title merge.
// Identical leaf paths are all reported. Under an untitled root a childless
// top-level topic is not a test point.
func LeavesOf(root *Topic) []Leaf {
	if root == nil {
		return nil
	}
	rootTitle := strings.TrimSpace(root.Title)

	var paths [][]string
	var collect func(t *Topic, prefix []string)
	collect = func(t *Topic, prefix []string) {
		cur := prefix
		if title := strings.TrimSpace(t.Title); title != "" {
			cur = append(append(make([]string, 0, len(prefix)+1), prefix...), title)
			paths = append(paths, cur)
		}
		for _, c := range t.Children {
			collect(c, cur)
		}
	}
	for _, c := range root.Children {
		collect(c, nil)
	}

	trie := newPathTrie()
	for _, p := range paths {
		trie.insert(p)
	}

	var leaves []Leaf
	for _, p := range paths {
		// Counting the root, a test point needs at least two titles.
		if rootTitle == "" && len(p) < 2 {
			continue
		}
		if trie.extended(p) {
			continue
		}
		leaves = append(leaves, Leaf{Root: rootTitle, Path: p})
	}
	return leaves
}

// pathTrie indexes title paths so the "is a strict prefix of another path"
// test is linear in the path length instead of quadratic in the path count.
type pathTrie struct {
	next map[string]*pathTrie
}

func newPathTrie() *pathTrie {
	return &pathTrie{next: make(map[string]*pathTrie)}
}

func (t *pathTrie) insert(path []string) {
	cur := t
	for _, title := range path {
		n, ok := cur.next[title]
		if !ok {
			n = newPathTrie()
			cur.next[title] = n
		}
		cur = n
	}
}

func (t *pathTrie) extended(path []string) bool {
	cur := t
	for _, title := range path {
		n, ok := cur.next[title]
		if !ok {
			return false
		}
		cur = n
	}
	return len(cur.next) > 0
}
