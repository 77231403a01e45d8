package classify

import (
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

func TestInfer_FirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Module: "X", Keywords: []string{"导出"}},
		{Module: "Y", Keywords: []string{"导出任务"}},
	}
	assert.Equal(t, "X", Infer("导出任务列表为空", rules))
	assert.Equal(t, Uncategorized, Infer("登录", rules))
}

func TestInfer_IgnoresEmptyKeywordAndCase(t *testing.T) {
	rules := []Rule{
		{Module: "empty", Keywords: []string{""}},
		{Module: "api", Keywords: []string{"API"}},
	}
	assert.Equal(t, Uncategorized, Infer("调用 api 超时", rules))
	assert.Equal(t, "api", Infer("调用 API 超时", rules))
}

func TestBucket_ModulesSortUncategorizedLast(t *testing.T) {
	points := SixDimension{
		Functional: {"zzz", "b 项", "a 项"},
	}
	rules := []Rule{
		{Module: "B", Keywords: []string{"b"}},
		{Module: "A", Keywords: []string{"a"}},
	}
	b := Group(points, rules)
	assert.Equal(t, []string{"A", "B", Uncategorized}, b.Modules())
	assert.Equal(t, 1, b.Count(Uncategorized))
}

func TestGroup_PreservesFirstSeenOrder(t *testing.T) {
	points := SixDimension{
		Boundary:   {"列表 分页 100 条", "列表 空"},
		Functional: {"列表 查询"},
	}
	b := Group(points, DefaultRules())
	assert.Equal(t, []string{"列表页"}, b.Modules())
	assert.Equal(t, []string{"列表 分页 100 条", "列表 空"}, b.Items("列表页", Boundary))
	assert.Equal(t, []string{"列表 查询"}, b.Items("列表页", Functional))
}

func TestBuildReviewSheet_NumbersResetPerModule(t *testing.T) {
	points := SixDimension{
		Functional: {"M1 a", "M1 b", "M2 c"},
		Boundary:   {"M1 d"},
	}
	rules := []Rule{
		{Module: "M1", Keywords: []string{"M1"}},
		{Module: "M2", Keywords: []string{"M2"}},
	}
	sheet := BuildReviewSheet(points, ReviewOptions{RootTitle: "req.md", Rules: rules, Quiet: true})

	assert.Equal(t, "req.md", sheet.Title)
	root := sheet.Root
	assert.Equal(t, "req.md", root.Title)
	require.Equal(t, []string{"M1", "M2"}, titles(root.Children))

	m1 := root.Children[0]
	require.Equal(t, []string{Functional, Boundary}, titles(m1.Children))
	assert.Equal(t, []string{"TP-FUNC-001  M1 a", "TP-FUNC-002  M1 b"}, titles(m1.Children[0].Children))
	assert.Equal(t, []string{"TP-BND-003  M1 d"}, titles(m1.Children[1].Children))

	m2 := root.Children[1]
	assert.Equal(t, []string{"TP-FUNC-001  M2 c"}, titles(m2.Children[0].Children))
}

func TestBuildReviewSheet_RiskPrefixAndPlaceholders(t *testing.T) {
	points := SixDimension{
		HiddenRisk: {"并发导出"},
	}
	sheet := BuildReviewSheet(points, ReviewOptions{
		RootTitle:    "R",
		SheetTitle:   "测试点评审-按模块",
		Rules:        DefaultRules(),
		Placeholders: true,
		Quiet:        true,
	})

	assert.Equal(t, "测试点评审-按模块", sheet.Title)
	mod := sheet.Root.Children[0]
	assert.Equal(t, "导出/下载", mod.Title)
	tp := mod.Children[0].Children[0]
	assert.Equal(t, "⚠ TP-RISK-001  并发导出", tp.Title)
	assert.Equal(t, Placeholders, titles(tp.Children))

	leaves, err := mindmap.LeafPaths(mindmap.NewWorkbook(sheet))
	require.NoError(t, err)
	assert.Len(t, leaves, 3)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "PERF", Code(Performance))
	assert.Equal(t, "GEN", Code("其他"))
}

func TestSixDimension_Total(t *testing.T) {
	s := SixDimension{Functional: {"a"}, Permission: {"b", "c"}, "其他": {"d"}}
	assert.Equal(t, 3, s.Total())
}
