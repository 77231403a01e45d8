package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MMMZZYz/aitest/internal/cases"
	"github.com/MMMZZYz/aitest/internal/classify"
	"github.com/MMMZZYz/aitest/internal/outline"
	"github.com/ohler55/ojg/jp"
)

const (
	defaultTemperature   = 0.2
	analysisTemperature  = 0.3
	defaultMaxAttempts   = 3
	defaultRetryDelay    = time.Second
	defaultMaxRetryDelay = 8 * time.Second
)

var (
	subsectionsExpr = jp.MustParseString("$.sections[*].subsections[*]")
	calloutsExpr    = jp.MustParseString("$.callouts[*]")
	tablesExpr      = jp.MustParseString("$.tables[*]")
)

type GeneratorOptions struct {
	// VisionModel is used for image description; empty means the client default.
	VisionModel string
	// CasesModel is used for case generation; empty means the client default.
	CasesModel string

	// Temperature applies to every call but analysis; nil means 0.2. A
	// pointer so that an explicit 0 is honoured.
	Temperature     *float64
	MaxAttempts     int
	RetryDelay      time.Duration
	MaxRetryDelay   time.Duration
	BusinessContext string
}

// Generator turns requirement text into structured records by prompting a
// chat model and validating what comes back.
type Generator struct {
	client      Client
	prompts     *PromptBuilder
	opts        GeneratorOptions
	temperature float64
}

func NewGenerator(client Client, opts GeneratorOptions) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.MaxRetryDelay < opts.RetryDelay {
		opts.MaxRetryDelay = defaultMaxRetryDelay
		if opts.MaxRetryDelay < opts.RetryDelay {
			opts.MaxRetryDelay = opts.RetryDelay
		}
	}
	temperature := defaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	return &Generator{
		client:      client,
		prompts:     &PromptBuilder{BusinessContext: opts.BusinessContext},
		opts:        opts,
		temperature: temperature,
	}
}

// TestPointPrompt returns the exact prompt TestPoints sends for reqText.
func (g *Generator) TestPointPrompt(reqText string) string {
	return g.prompts.TestPoints(reqText)
}

// TestPoints asks for the sectioned test-point document.
//
// Two common slips are repaired before validation: a callout written as
// {title, content} becomes {title, items: [content]}, and a table without a
// title is named "表格N" after its position in the subsection.
func (g *Generator) TestPoints(ctx context.Context, reqText string) (*outline.Document, error) {
	raw, err := g.client.Complete(ctx, Request{
		System:      jsonOnlySystem,
		Prompt:      g.prompts.TestPoints(reqText),
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("test point generation failed: %w", err)
	}

	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	repairTestPoints(data)
	if err := validate(testPointsSchema, data); err != nil {
		return nil, err
	}

	var doc outline.Document
	if err := remarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func repairTestPoints(data any) {
	for _, sub := range subsectionsExpr.Get(data) {
		for _, c := range calloutsExpr.Get(sub) {
			callout, ok := c.(map[string]any)
			if !ok {
				continue
			}
			content, hasContent := callout["content"]
			if _, hasItems := callout["items"]; !hasContent || hasItems {
				continue
			}
			delete(callout, "content")
			if content == nil {
				callout["items"] = []any{}
			} else {
				callout["items"] = []any{fmt.Sprint(content)}
			}
		}
		for i, t := range tablesExpr.Get(sub) {
			table, ok := t.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := table["title"]; !ok {
				table["title"] = fmt.Sprintf("表格%d", i+1)
			}
		}
	}
}

// SixDimension asks for flat test-point lists under the six fixed dimensions.
func (g *Generator) SixDimension(ctx context.Context, reqText string) (classify.SixDimension, error) {
	raw, err := g.client.Complete(ctx, Request{
		System:      jsonOnlySystem,
		Prompt:      g.prompts.SixDimension(reqText),
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("six-dimension generation failed: %w", err)
	}

	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(sixDimensionSchema, data); err != nil {
		return nil, err
	}

	out := classify.SixDimension{}
	if err := remarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cases generates 1-3 executable cases for one test-point path. Any failure,
// including malformed output, is retried with exponential backoff up to
// MaxAttempts times.
func (g *Generator) Cases(ctx context.Context, path []string) ([]cases.Case, error) {
	req := Request{
		Model:       g.opts.CasesModel,
		System:      strictJSONSystem,
		Prompt:      g.prompts.Cases(path),
		Temperature: g.temperature,
	}

	var lastErr error
	for attempt := 0; attempt < g.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		out, err := g.casesOnce(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("case generation for %q failed after %d attempts: %w",
		strings.Join(path, pathSeparator), g.opts.MaxAttempts, lastErr)
}

// backoff returns the wait before the given retry: RetryDelay doubled per
// attempt, capped at MaxRetryDelay.
func (g *Generator) backoff(attempt int) time.Duration {
	d := g.opts.RetryDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= g.opts.MaxRetryDelay {
			return g.opts.MaxRetryDelay
		}
	}
	return d
}

func (g *Generator) casesOnce(ctx context.Context, req Request) ([]cases.Case, error) {
	raw, err := g.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := decodeObject(cleanMarkdownOutput(raw))
	if err != nil {
		return nil, err
	}
	if err := validate(casesSchema, data); err != nil {
		return nil, err
	}
	var env cases.Envelope
	if err := remarshal(data, &env); err != nil {
		return nil, err
	}
	return env.Cases, nil
}

// Analyze writes a plain-language 5W1H analysis of the requirement as markdown.
func (g *Generator) Analyze(ctx context.Context, reqText string) (string, error) {
	raw, err := g.client.Complete(ctx, Request{
		System:      analysisSystem,
		Prompt:      g.prompts.Analysis(reqText),
		Temperature: analysisTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("requirement analysis failed: %w", err)
	}
	return cleanMarkdownOutput(raw), nil
}

// DescribeImage asks the vision model to transcribe a requirement picture
// (document photo, screenshot, prototype) into requirement text.
func (g *Generator) DescribeImage(ctx context.Context, img Image) (string, error) {
	out, err := g.client.Complete(ctx, Request{
		Model:       g.opts.VisionModel,
		Prompt:      imageDescribeInstr,
		Temperature: defaultTemperature,
		Image:       &img,
	})
	if err != nil {
		return "", fmt.Errorf("image recognition failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func decodeObject(raw string) (any, error) {
	text, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return data, nil
}

func remarshal(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
