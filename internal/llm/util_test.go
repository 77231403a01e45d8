package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMarkdownOutput(t *testing.T) {
	tests := map[string]string{
		"plain":                     "plain",
		"```json\n{\"a\":1}\n```":   `{"a":1}`,
		"```\nbody\n```":            "body",
		"```markdown\n# T\n- x```":  "# T\n- x",
		"```json {\"a\":1}```":      `{"a":1}`,
		"  ```\n\nx\n\n```  ":       "x",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanMarkdownOutput(in), "input %q", in)
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := extractJSON(`Here: {"a": {"b": 1}} thanks`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, err = extractJSON("} nothing {")
	require.ErrorIs(t, err, ErrNoJSON)

	_, err = extractJSON("")
	require.ErrorIs(t, err, ErrNoJSON)
}
