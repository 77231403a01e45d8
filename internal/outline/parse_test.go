package outline

import (
	"strings"
	"testing"

	"github.com/MMMZZYz/aitest/internal/mindmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(topics []*mindmap.Topic) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.Title)
	}
	return out
}

func TestParse_HeadingsBulletsAndText(t *testing.T) {
	md := strings.Join([]string{
		"# 登录需求",
		"",
		"## 一、账号登录",
		"### 1️⃣ 展示与交互",
		"- 用户名输入框",
		"* 密码输入框",
		"+ 记住我",
		"-   ",
		"首次登录引导",
		"## 二、找回密码",
		"  plain   ",
	}, "\n")

	root, err := ParseString(md, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "登录需求", root.Title)
	require.Equal(t, []string{"一、账号登录", "二、找回密码"}, titles(root.Children))
	sub := root.Children[0].Children[0]
	assert.Equal(t, "1️⃣ 展示与交互", sub.Title)
	assert.Equal(t, []string{"用户名输入框", "密码输入框", "记住我", "首次登录引导"}, titles(sub.Children))
	assert.Equal(t, []string{"plain"}, titles(root.Children[1].Children))
}

func TestParse_HeadingLevelJump(t *testing.T) {
	root, err := ParseString("# Title\n#### Sub\n- bullet\n", ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Title", root.Title)
	require.Len(t, root.Children, 1)
	sub := root.Children[0]
	assert.Equal(t, "Sub", sub.Title)
	assert.Equal(t, []string{"bullet"}, titles(sub.Children))
}

func TestParse_PopsToNearestShallowerHeading(t *testing.T) {
	md := "## A\n#### A1\n### A2\n- x\n## B\n### B1\n"
	root, err := ParseString(md, ParseOptions{RootTitle: "R"})
	require.NoError(t, err)

	assert.Equal(t, "R", root.Title)
	require.Equal(t, []string{"A", "B"}, titles(root.Children))
	assert.Equal(t, []string{"A1", "A2"}, titles(root.Children[0].Children))
	assert.Equal(t, []string{"x"}, titles(root.Children[0].Children[1].Children))
	assert.Equal(t, []string{"B1"}, titles(root.Children[1].Children))
}

func TestParse_SecondLevelOneHeadingReplacesRoot(t *testing.T) {
	md := "# First\n## A\n- a\n# Second\n- top\n## B\n"
	root, err := ParseString(md, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Second", root.Title)
	assert.Equal(t, []string{"A", "top", "B"}, titles(root.Children))
}

func TestParse_EmptyHeadingTitles(t *testing.T) {
	root, err := ParseString("# \n## \n", ParseOptions{Untitled: "(empty)"})
	require.NoError(t, err)

	assert.Equal(t, "(empty)", root.Title)
	assert.Equal(t, []string{"(empty)"}, titles(root.Children))
}

func TestParse_Tables(t *testing.T) {
	md := strings.Join([]string{
		"## 勾选逻辑",
		"| 场景 | 预期 |",
		"| --- | --- |",
		"| 全选 | 全部勾选 |",
		"after",
		"| x | y |",
	}, "\n")

	t.Run("joined", func(t *testing.T) {
		root, err := ParseString(md, ParseOptions{Tables: TableJoined})
		require.NoError(t, err)
		sec := root.Children[0]
		require.Len(t, sec.Children, 3)
		assert.Equal(t, "| 场景 | 预期 |\n| --- | --- |\n| 全选 | 全部勾选 |", sec.Children[0].Title)
		assert.Equal(t, "after", sec.Children[1].Title)
		assert.Equal(t, "| x | y |", sec.Children[2].Title)
	})

	t.Run("rows", func(t *testing.T) {
		root, err := ParseString(md, ParseOptions{Tables: TableRows})
		require.NoError(t, err)
		sec := root.Children[0]
		assert.Equal(t, []string{"| 场景 | 预期 |", "| --- | --- |", "| 全选 | 全部勾选 |", "after", "| x | y |"}, titles(sec.Children))
	})

	t.Run("grouped", func(t *testing.T) {
		root, err := ParseString(md, ParseOptions{Tables: TableGrouped})
		require.NoError(t, err)
		sec := root.Children[0]
		require.Len(t, sec.Children, 3)
		assert.Equal(t, TableGroupTitle, sec.Children[0].Title)
		assert.Len(t, sec.Children[0].Children, 3)
	})
}

func TestParse_BlankLineSplitsTables(t *testing.T) {
	root, err := ParseString("| a |\n\n| b |\n", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"| a |", "| b |"}, titles(root.Children))
}

func TestParse_CRLF(t *testing.T) {
	root, err := ParseString("# T\r\n## H\r\n- b\r\n", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "T", root.Title)
	assert.Equal(t, []string{"b"}, titles(root.Children[0].Children))
}

func TestParseTableMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want TableMode
		name string
	}{
		{"", TableJoined, "joined"},
		{"joined", TableJoined, "joined"},
		{" Rows ", TableRows, "rows"},
		{"GROUPED", TableGrouped, "grouped"},
	} {
		got, err := ParseTableMode(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.name, got.String())
	}

	_, err := ParseTableMode("columns")
	assert.Error(t, err)
}
