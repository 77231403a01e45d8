package llm

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when a reply holds no {...} object at all.
var ErrNoJSON = errors.New("no JSON object found in model output")

// cleanMarkdownOutput drops a surrounding code fence such as ```markdown or
// ```json, keeping the body.
func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		body := strings.TrimSpace(strings.Trim(text, "`"))
		for _, lang := range []string{"json", "markdown"} {
			if len(body) >= len(lang) && strings.EqualFold(body[:len(lang)], lang) {
				body = body[len(lang):]
				break
			}
		}
		return strings.TrimSpace(body)
	}
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	body := strings.TrimSpace(strings.Join(lines, "\n"))
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

// extractJSON returns the span from the first '{' to the last '}', which
// tolerates prose the model puts around the object.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text, nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}
