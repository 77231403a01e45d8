package cases

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripLeadingOrdinal(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1. Click button", "Click button"},
		{"  2、输入 SKU ", "输入 SKU"},
		{"10.导出", "导出"},
		{"Click button", "Click button"},
		{"3.", "3."},
		{"", ""},
		{"   ", ""},
		{"1.5 kg", "5 kg"},
		{"2，全角", "全角"},
		{"3．全角句点", "全角句点"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripLeadingOrdinal(tt.in), "input %q", tt.in)
	}
}

func TestMapRow_RenumbersStepsWithoutDuplicates(t *testing.T) {
	c := Case{
		Title:    "导出为空",
		Steps:    []string{"1. Click button", "2. do X"},
		Expected: []string{"弹出提示", "2、无文件"},
	}
	row := MapRow(c, []string{"Steps", "预期结果"})

	assert.Equal(t, "1. Click button\n2. do X", row["Steps"])
	assert.Equal(t, "1. 弹出提示\n2. 无文件", row["预期结果"])

	row = MapRow(Case{Steps: []string{"1，打开", "2，全角"}}, []string{"步骤"})
	assert.Equal(t, "1. 打开\n2. 全角", row["步骤"])
}

func TestCase_PriorityDefaultsOnlyWhenMissing(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{`{"title": "T"}`, DefaultPriority},
		{`{"title": "T", "priority": null}`, DefaultPriority},
		{`{"title": "T", "priority": ""}`, ""},
		{`{"title": "T", "priority": "High"}`, "High"},
	} {
		var c Case
		require.NoError(t, json.Unmarshal([]byte(tc.in), &c), tc.in)
		assert.Equal(t, "T", c.Title)
		assert.Equal(t, tc.want, c.Priority, tc.in)
	}
}

func TestMapRow_ColumnRoles(t *testing.T) {
	c := Case{
		Title:         "T",
		Preconditions: []string{"已登录", "有数据"},
		Steps:         []string{"s"},
		Expected:      []string{"e"},
		Priority:      "High",
	}
	columns := []string{"用例编号", "用例名称", "Summary", "前置条件", "操作步骤", "Expected Result", "优先级", "备注"}
	row := MapRow(c, columns)

	assert.Equal(t, Row{
		"用例编号":            "",
		"用例名称":            "T",
		"Summary":         "T",
		"前置条件":            "已登录\n有数据",
		"操作步骤":            "1. s",
		"Expected Result": "1. e",
		"优先级":             "High",
		"备注":              "",
	}, row)
}

func TestMapRow_FirstRoleWins(t *testing.T) {
	// "结果" would be expected, but "标题" is checked first.
	row := MapRow(Case{Title: "T", Expected: []string{"e"}}, []string{"结果标题"})
	assert.Equal(t, "T", row["结果标题"])
}

func TestMapRow_DefaultsAndEmptyLists(t *testing.T) {
	var c Case
	require.NoError(t, json.Unmarshal([]byte(`{"title": "T"}`), &c))
	row := MapRow(c, []string{"Priority", "Preconditions", "Steps"})
	assert.Equal(t, DefaultPriority, row["Priority"])
	assert.Equal(t, "", row["Preconditions"])
	assert.Equal(t, "", row["Steps"])
}

func TestRowValues(t *testing.T) {
	r := Row{"a": "1", "c": "3"}
	assert.Equal(t, []string{"1", "", "3"}, r.Values([]string{"a", "b", "c"}))
}
