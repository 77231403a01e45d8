package llm

import (
	"fmt"
	"strings"
)

// PromptBuilder assembles the user prompts. BusinessContext, when set, is
// inserted ahead of the requirement text as reference material.
type PromptBuilder struct {
	BusinessContext string
}

const (
	jsonOnlySystem     = "You output ONLY valid JSON."
	strictJSONSystem   = "输出必须是严格JSON。"
	analysisSystem     = "你输出一篇简洁的 Markdown 需求分析，语言浅显易懂。"
	pathSeparator      = " > "
	testPointRoleLine  = "你是资深软件测试工程师，输出用于评审的【测试点清单模板】。"
	sixDimensionRole   = "你是资深软件测试工程师。"
	imageDescribeInstr = `请识别本图中的内容，并输出一份「软件需求描述」，便于后续编写测试点。要求：
- 若为需求文档/说明：提取并整理为条理清晰的需求正文（可保留小标题与要点）。
- 若为界面截图/原型图：描述页面元素、功能入口、主要操作与业务逻辑。
- 若为手写/拍照文档：尽量识别文字并整理为可读的需求说明。
只输出需求正文，不要输出“根据图片……”等前缀。`
)

const testPointInstructions = `严格只输出 JSON，不要任何解释文字。

输出必须是"清单式测试点模板"，且必须完全根据【需求正文】归纳出一级、二级结构：
- section 的 title：根据需求中的功能模块/业务块自行归纳（如"一、xxx""二、xxx"），不要使用与需求无关的固定标题。
- subsections：每个 section 下按测试维度拆分子标题（如 1️⃣ 展示与交互、2️⃣ 校验逻辑 等），子标题和 points/tables/callouts 都要紧扣该需求。

风格要求：
- points 必须是【短条目/短短句】，不要以"验证/确认/校验/检查/测试"开头，不要写成用例句式。
- 需要表格的地方用 tables 输出（如勾选逻辑、状态矩阵等）。
- 需要强调的边界/异常用 callouts 输出，title 以 "⚠️" 开头，例如 "⚠️ 边界点"。

JSON 结构示例（section 数量、标题、子标题均按需求灵活组织，至少 1 个 section）：
{
  "title": "测试点清单",
  "sections": [
    {
      "title": "一、<根据需求归纳的功能/模块名>",
      "subsections": [
        {
          "title": "1️⃣ <子维度>",
          "points": ["...", "..."],
          "tables": [],
          "callouts": []
        }
      ]
    }
  ]
}

注意：tables 的 rows 每行必须与 headers 列数一致。sections 至少 1 项，建议根据需求拆成 3～7 个一级模块为宜。`

const sixDimensionInstructions = `请输出“测试点清单”，必须严格符合 JSON 格式与字段，不要输出任何多余文字。

字段要求：
- 功能测试：功能正向/流程
- 边界测试：数量/长度/范围/分页/批量等边界
- 异常测试：参数非法/缺失/并发/网络/重复提交等
- 权限测试：不同角色、越权、数据范围
- 性能与容量风险：大数据量、导出、批量操作等
- 隐藏雷点提示：容易漏测/上线事故高发点（请更狠一点）`

// TestPoints is the prompt for the sectioned test-point document. It is also
// what gets saved next to the outputs for review.
func (pb *PromptBuilder) TestPoints(reqText string) string {
	parts := []string{testPointRoleLine}
	if ctx := strings.TrimSpace(pb.BusinessContext); ctx != "" {
		parts = append(parts, "【业务上下文】（供参考）：", ctx)
	}
	parts = append(parts, "【需求正文】：", reqText, testPointInstructions)
	return strings.Join(parts, "\n\n")
}

func (pb *PromptBuilder) SixDimension(reqText string) string {
	parts := []string{sixDimensionRole}
	if ctx := strings.TrimSpace(pb.BusinessContext); ctx != "" {
		parts = append(parts, "下面是【业务上下文】（请充分利用其中的信息）：", ctx)
	}
	parts = append(parts, "下面是【本次需求文档正文】：", reqText, sixDimensionInstructions)
	return strings.Join(parts, "\n\n")
}

func (pb *PromptBuilder) Cases(path []string) string {
	var sb strings.Builder
	sb.WriteString("你是资深测试工程师。根据“测试点路径”生成测试用例。\n")
	fmt.Fprintf(&sb, "测试点路径：%s\n\n", strings.Join(path, pathSeparator))
	sb.WriteString("要求：\n")
	sb.WriteString("- 输出 1~3 条测试用例（不要太多）\n")
	sb.WriteString("- 每条用例包含：title / preconditions / steps / expected / priority\n")
	sb.WriteString("- steps 和 expected 要一一对应、可执行\n")
	sb.WriteString("- 只能输出严格 JSON，不要解释、不要Markdown\n\n")
	sb.WriteString("输出JSON格式：\n")
	sb.WriteString(`{
  "cases": [
    {
      "title": "...",
      "preconditions": ["..."],
      "steps": ["1...", "2..."],
      "expected": ["1...", "2..."],
      "priority": "High|Medium|Low"
    }
  ]
}`)
	return sb.String()
}

func (pb *PromptBuilder) Analysis(reqText string) string {
	var sb strings.Builder
	sb.WriteString("请对下面这份【需求正文】用 5W1H 方法做一次简要分析，并写成一篇 Markdown 文档，让读者用最少时间搞懂「这次需求在干什么」。\n\n")
	sb.WriteString("要求：\n")
	sb.WriteString("1. 按 5W1H 组织：Who（谁/角色）、What（做什么）、When（什么时候/时机）、Where（在哪/范围）、Why（为什么做）、How（怎么实现/怎么做）。每项用浅显的话写 1～3 句即可，不要堆术语。\n")
	sb.WriteString("2. 语言通俗，像在给同事口头解释需求，避免冗长和官话。\n")
	sb.WriteString("3. 文末用 2～3 句话做「一句话总结」：这次需求本质上是在做什么。\n")
	sb.WriteString("4. 直接输出 Markdown（可用 ## 小标题），不要输出 JSON、不要代码块包裹、不要「根据需求……」等前缀。\n\n")
	sb.WriteString("【需求正文】\n")
	sb.WriteString(reqText)
	sb.WriteString("\n")
	return sb.String()
}
