package llm

import "context"

// Image is an inline picture sent alongside a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is a single-turn chat completion.
type Request struct {
	// Model overrides the client's default model, e.g. for vision calls.
	Model       string
	System      string
	Prompt      string
	Temperature float64
	Image       *Image
}

// Client sends one request to a chat model and returns the reply text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
