package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MMMZZYz/aitest/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient replays canned replies in order and records every request.
type mockClient struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	requests []Request
}

func (m *mockClient) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.requests)
	m.requests = append(m.requests, req)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	reply := ""
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	return reply, err
}

func newTestGenerator(c Client) *Generator {
	return NewGenerator(c, GeneratorOptions{
		VisionModel: "vl",
		RetryDelay:  time.Millisecond,
	})
}

func TestGenerator_TestPoints_RepairsAndValidates(t *testing.T) {
	reply := `好的，结果如下：
{
  "title": "测试点清单",
  "sections": [{
    "title": "一、导出",
    "subsections": [{
      "title": "1️⃣ 展示",
      "points": ["按钮位置"],
      "tables": [{"headers": ["场景", "预期"], "rows": [["空数据", "提示"]]}],
      "callouts": [{"title": "⚠️ 边界点", "content": "超过 10 万行"}]
    }]
  }]
}
以上。`
	client := &mockClient{replies: []string{reply}}
	g := newTestGenerator(client)

	doc, err := g.TestPoints(context.Background(), "需求")
	require.NoError(t, err)

	sub := doc.Sections[0].Subsections[0]
	assert.Equal(t, []string{"按钮位置"}, sub.Points)
	assert.Equal(t, "表格1", sub.Tables[0].Title)
	assert.Equal(t, []string{"超过 10 万行"}, sub.Callouts[0].Items)
	assert.Equal(t, 3, doc.PointCount())

	require.Len(t, client.requests, 1)
	assert.Equal(t, jsonOnlySystem, client.requests[0].System)
	assert.Equal(t, g.TestPointPrompt("需求"), client.requests[0].Prompt)
}

func TestGenerator_TestPoints_Errors(t *testing.T) {
	t.Run("no json", func(t *testing.T) {
		g := newTestGenerator(&mockClient{replies: []string{"sorry"}})
		_, err := g.TestPoints(context.Background(), "x")
		require.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("schema violation", func(t *testing.T) {
		g := newTestGenerator(&mockClient{replies: []string{`{"title": "t", "sections": []}`}})
		_, err := g.TestPoints(context.Background(), "x")
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, testPointsSchema, verr.Schema)
	})

	t.Run("client error", func(t *testing.T) {
		boom := errors.New("boom")
		g := newTestGenerator(&mockClient{errs: []error{boom}})
		_, err := g.TestPoints(context.Background(), "x")
		require.ErrorIs(t, err, boom)
	})
}

func TestGenerator_SixDimension(t *testing.T) {
	reply := `{"功能测试": ["a"], "边界测试": [], "异常测试": ["b"], "权限测试": [], "性能与容量风险": [], "隐藏雷点提示": ["c"]}`
	g := newTestGenerator(&mockClient{replies: []string{reply}})

	got, err := g.SixDimension(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got[classify.Functional])
	assert.Equal(t, []string{"c"}, got[classify.HiddenRisk])
	assert.Equal(t, 3, got.Total())

	g = newTestGenerator(&mockClient{replies: []string{`{"功能测试": ["a"]}`}})
	_, err = g.SixDimension(context.Background(), "x")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestGenerator_Cases_RetriesUntilValid(t *testing.T) {
	client := &mockClient{
		replies: []string{
			"not json",
			`{"cases": "nope"}`,
			"```json\n{\"cases\": [{\"title\": \"T\", \"preconditions\": null, \"steps\": [\"1. a\"], \"expected\": [\"ok\"], \"priority\": \"High\"}]}\n```",
		},
	}
	g := newTestGenerator(client)

	got, err := g.Cases(context.Background(), []string{"R", "A", "B"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T", got[0].Title)
	assert.Empty(t, got[0].Preconditions)
	assert.Equal(t, "High", got[0].Priority)

	require.Len(t, client.requests, 3)
	assert.Equal(t, strictJSONSystem, client.requests[0].System)
	assert.Contains(t, client.requests[0].Prompt, "测试点路径：R > A > B")
}

func TestGenerator_Cases_GivesUp(t *testing.T) {
	client := &mockClient{errs: []error{errors.New("a"), errors.New("b"), errors.New("c"), errors.New("d")}}
	g := newTestGenerator(client)

	_, err := g.Cases(context.Background(), []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Len(t, client.requests, 3)
}

func TestGenerator_Cases_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGenerator(&mockClient{replies: []string{"bad"}}, GeneratorOptions{RetryDelay: time.Hour})

	_, err := g.Cases(ctx, []string{"A"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_Backoff(t *testing.T) {
	g := NewGenerator(&mockClient{}, GeneratorOptions{})
	assert.Equal(t, time.Second, g.backoff(1))
	assert.Equal(t, 2*time.Second, g.backoff(2))
	assert.Equal(t, 4*time.Second, g.backoff(3))
	assert.Equal(t, 8*time.Second, g.backoff(4))
	assert.Equal(t, 8*time.Second, g.backoff(9))
}

func TestGenerator_Temperature(t *testing.T) {
	client := &mockClient{}
	_, _ = NewGenerator(client, GeneratorOptions{MaxAttempts: 1}).Cases(context.Background(), []string{"A"})
	require.Len(t, client.requests, 1)
	assert.Equal(t, defaultTemperature, client.requests[0].Temperature)

	zero := 0.0
	client = &mockClient{}
	_, _ = NewGenerator(client, GeneratorOptions{MaxAttempts: 1, Temperature: &zero, CasesModel: "qwen-max"}).
		Cases(context.Background(), []string{"A"})
	require.Len(t, client.requests, 1)
	assert.Zero(t, client.requests[0].Temperature)
	assert.Equal(t, "qwen-max", client.requests[0].Model)
}

func TestGenerator_Analyze_StripsFence(t *testing.T) {
	client := &mockClient{replies: []string{"```markdown\n## Who\n运营\n```"}}
	g := newTestGenerator(client)

	got, err := g.Analyze(context.Background(), "需求")
	require.NoError(t, err)
	assert.Equal(t, "## Who\n运营", got)
	assert.Equal(t, analysisTemperature, client.requests[0].Temperature)
}

func TestGenerator_DescribeImage(t *testing.T) {
	client := &mockClient{replies: []string{"  登录页需求  "}}
	g := newTestGenerator(client)

	got, err := g.DescribeImage(context.Background(), Image{MIMEType: "image/png", Data: []byte{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "登录页需求", got)

	req := client.requests[0]
	assert.Equal(t, "vl", req.Model)
	require.NotNil(t, req.Image)
	assert.Equal(t, "image/png", req.Image.MIMEType)
}

func TestPromptBuilder_BusinessContext(t *testing.T) {
	plain := (&PromptBuilder{}).TestPoints("REQ")
	assert.NotContains(t, plain, "业务上下文")

	withCtx := (&PromptBuilder{BusinessContext: "商品有 SKU 与 SPU"}).TestPoints("REQ")
	assert.Contains(t, withCtx, "【业务上下文】（供参考）：\n\n商品有 SKU 与 SPU\n\n【需求正文】：\n\nREQ")
}
