package cases

import (
	"fmt"
	"regexp"
	"strings"
)

var leadingOrdinalRe = regexp.MustCompile(`^\s*\d+[.．、，]\s*`)

type role int

const (
	roleNone role = iota
	roleSummary
	rolePrecondition
	roleStep
	roleExpected
	rolePriority
)

// roleMatcher pairs lower-cased English keywords with CJK keywords matched
// against the column name as written.
type roleMatcher struct {
	role    role
	english []string
	cjk     []string
	// allOf requires every listed CJK keyword, e.g. 用例 and 名 for 用例名称.
	allOf []string
}

// Checked in order; the first match decides the column's role.
var roleTable = []roleMatcher{
	{role: roleSummary, english: []string{"summary"}, cjk: []string{"标题", "名称"}, allOf: []string{"用例", "名"}},
	{role: rolePrecondition, english: []string{"precondition"}, cjk: []string{"前置"}},
	{role: roleStep, english: []string{"step"}, cjk: []string{"步骤", "操作"}},
	{role: roleExpected, english: []string{"expected"}, cjk: []string{"预期", "结果"}},
	{role: rolePriority, english: []string{"priority"}, cjk: []string{"优先级"}},
}

func (m roleMatcher) matches(col, lower string) bool {
	for _, kw := range m.english {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range m.cjk {
		if strings.Contains(col, kw) {
			return true
		}
	}
	if len(m.allOf) == 0 {
		return false
	}
	for _, kw := range m.allOf {
		if !strings.Contains(col, kw) {
			return false
		}
	}
	return true
}

func columnRole(col string) role {
	lower := strings.ToLower(col)
	for _, m := range roleTable {
		if m.matches(col, lower) {
			return m.role
		}
	}
	return roleNone
}

// StripLeadingOrdinal removes an existing "1. ", "2、" or "3，" prefix so renumbering
// does not produce "1. 1. ...". If nothing would remain, the trimmed input is
// returned instead.
func StripLeadingOrdinal(s string) string {
	trimmed := strings.TrimSpace(s)
	if out := strings.TrimSpace(leadingOrdinalRe.ReplaceAllString(trimmed, "")); out != "" {
		return out
	}
	return trimmed
}

func numbered(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%d. %s", i+1, StripLeadingOrdinal(l))
	}
	return strings.Join(out, "\n")
}

// MapRow fills every template column the case has a value for. Columns are
// assigned a role by keyword; unrecognised columns are left empty.
func MapRow(c Case, columns []string) Row {
	row := make(Row, len(columns))
	for _, col := range columns {
		switch columnRole(col) {
		case roleSummary:
			row[col] = c.Title
		case rolePrecondition:
			row[col] = strings.Join(c.Preconditions, "\n")
		case roleStep:
			row[col] = numbered(c.Steps)
		case roleExpected:
			row[col] = numbered(c.Expected)
		case rolePriority:
			row[col] = c.Priority
		default:
			row[col] = ""
		}
	}
	return row
}

// MapRows maps each case in order.
func MapRows(cs []Case, columns []string) []Row {
	rows := make([]Row, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, MapRow(c, columns))
	}
	return rows
}
