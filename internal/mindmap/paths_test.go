package mindmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathsOf(leaves []Leaf) [][]string {
	out := make([][]string, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, l.Path)
	}
	return out
}

func TestLeavesOf_ExcludesInnerTopics(t *testing.T) {
	root := NewTopic("R",
		NewTopic("A", NewTopic("B"), NewTopic("C")),
		NewTopic("D"),
	)

	leaves := LeavesOf(root)
	assert.Equal(t, [][]string{{"A", "B"}, {"A", "C"}, {"D"}}, pathsOf(leaves))
	assert.Equal(t, []string{"R", "A", "B"}, leaves[0].Full())
	assert.Equal(t, "R > D", leaves[2].String())
}

func TestLeavesOf_EmptyTitlesAreTransparent(t *testing.T) {
	root := NewTopic("R",
		NewTopic("A", NewTopic("  ", NewTopic("B"))),
		NewTopic(""),
	)

	assert.Equal(t, [][]string{{"A", "B"}}, pathsOf(LeavesOf(root)))
}

func TestLeavesOf_DuplicateTitlesMergeByPath(t *testing.T) {
	// The childless "A" shares its path with an inner "A", so it is not a leaf.
	root := NewTopic("R",
		NewTopic("A"),
		NewTopic("A", NewTopic("B")),
		NewTopic("C"),
		NewTopic("C"),
	)

	assert.Equal(t, [][]string{{"A", "B"}, {"C"}, {"C"}}, pathsOf(LeavesOf(root)))
}

func TestLeavesOf_UntitledRoot(t *testing.T) {
	root := NewTopic("", NewTopic("A", NewTopic("B")), NewTopic("D"))

	leaves := LeavesOf(root)
	assert.Equal(t, [][]string{{"A", "B"}}, pathsOf(leaves))
	assert.Equal(t, []string{"A", "B"}, leaves[0].Full())
}

func TestLeafPaths_UntitledRootSingleLevelFails(t *testing.T) {
	_, err := LeafPaths(NewWorkbook(NewSheet("S", NewTopic("", NewTopic("D"), NewTopic(" ")))))
	require.ErrorIs(t, err, ErrNoLeafPaths)
}

func TestLeafPaths_RootOnlyFails(t *testing.T) {
	_, err := LeafPaths(NewWorkbook(NewSheet("S", NewTopic("R"))))
	require.ErrorIs(t, err, ErrNoLeafPaths)

	_, err = LeafPaths(nil)
	require.ErrorIs(t, err, ErrNoLeafPaths)
}

func TestLeafPaths_AllSheets(t *testing.T) {
	wb := NewWorkbook(
		NewSheet("one", NewTopic("R1", NewTopic("X"))),
		NewSheet("two", NewTopic("R2", NewTopic("Y", NewTopic("Z")))),
	)

	leaves, err := LeafPaths(wb)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, Leaf{Root: "R1", Path: []string{"X"}}, leaves[0])
	assert.Equal(t, Leaf{Root: "R2", Path: []string{"Y", "Z"}}, leaves[1])
}
