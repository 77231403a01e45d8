package classify

// The six test dimensions, in the order they are presented.
const (
	Functional  = "功能测试"
	Boundary    = "边界测试"
	Exception   = "异常测试"
	Permission  = "权限测试"
	Performance = "性能与容量风险"
	HiddenRisk  = "隐藏雷点提示"
)

// Categories is the fixed presentation order of the six dimensions.
var Categories = []string{Functional, Boundary, Exception, Permission, Performance, HiddenRisk}

var categoryCodes = map[string]string{
	Functional:  "FUNC",
	Boundary:    "BND",
	Exception:   "ERR",
	Permission:  "AUTH",
	Performance: "PERF",
	HiddenRisk:  "RISK",
}

// Code returns the short id code of a category, "GEN" for unknown ones.
func Code(category string) string {
	if c, ok := categoryCodes[category]; ok {
		return c
	}
	return "GEN"
}

// SixDimension is a flat test-point list per dimension, keyed by category name.
type SixDimension map[string][]string

// Total counts the items across the known categories.
func (s SixDimension) Total() int {
	n := 0
	for _, cat := range Categories {
		n += len(s[cat])
	}
	return n
}
