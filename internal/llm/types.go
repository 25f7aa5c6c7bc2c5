package llm

import "context"

// Request is one prompt sent to the language model
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	// JSON asks the provider for a JSON-only reply. The reply is still untrusted.
	JSON bool
}

// Client completes a prompt and returns the model's raw text reply
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
