package classify

import (
	"sort"
	"strings"
)

// Uncategorized collects items that no rule matched. It always sorts last.
const Uncategorized = "未归类"

// Rule maps test points to a module (page, dialog, API...) by keyword.
type Rule struct {
	Module   string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Infer returns the module of the first rule owning a non-empty keyword that
// occurs in item. Rule order is priority order; matching is case-sensitive.
func Infer(item string, rules []Rule) string {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(item, kw) {
				return r.Module
			}
		}
	}
	return Uncategorized
}

// DefaultRules is the generic page-oriented rule set used when none is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Module: "列表页", Keywords: []string{"列表", "表格", "筛选", "排序", "分页", "查询", "搜索"}},
		{Module: "详情页/弹窗", Keywords: []string{"详情", "弹窗", "对话框", "抽屉", "确认", "提示"}},
		{Module: "导出/下载", Keywords: []string{"导出", "下载", "文件", "任务", "数据导出"}},
		{Module: "批量操作", Keywords: []string{"批量", "多选", "勾选", "全选", "反选"}},
		{Module: "设置/配置", Keywords: []string{"设置", "配置", "规则", "开关"}},
		{Module: "接口/后端", Keywords: []string{"接口", "API", "请求", "入参", "返回", "字段"}},
	}
}

// Bucket holds items grouped by module then category, each list in first-seen order.
type Bucket struct {
	items map[string]map[string][]string
}

// Group files every item of points under its inferred module. Categories are
// visited in Categories order, so items keep that order within a module.
func Group(points SixDimension, rules []Rule) *Bucket {
	b := &Bucket{items: make(map[string]map[string][]string)}
	for _, cat := range Categories {
		for _, item := range points[cat] {
			mod := Infer(item, rules)
			if b.items[mod] == nil {
				b.items[mod] = make(map[string][]string)
			}
			b.items[mod][cat] = append(b.items[mod][cat], item)
		}
	}
	return b
}

// Modules lists the non-empty modules in lexicographic order, Uncategorized last.
func (b *Bucket) Modules() []string {
	out := make([]string, 0, len(b.items))
	for m := range b.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		ui, uj := out[i] == Uncategorized, out[j] == Uncategorized
		if ui != uj {
			return uj
		}
		return out[i] < out[j]
	})
	return out
}

// Items returns the items of one module and category.
func (b *Bucket) Items(module, category string) []string {
	return b.items[module][category]
}

// Count returns the number of items filed under module.
func (b *Bucket) Count(module string) int {
	n := 0
	for _, items := range b.items[module] {
		n += len(items)
	}
	return n
}
