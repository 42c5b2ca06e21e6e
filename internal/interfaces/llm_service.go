package interfaces

import "context"

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// Embedder generates vector embeddings for text. Implementations wrap a
// black-box embedding model; the rest of the system treats the vectors as
// opaque except for cosine comparison.
type Embedder interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimensionality.
	Dimension() int
}

// Completer generates chat completions. Implementations wrap a black-box
// text completion service; output may be non-deterministic (model sampling).
type Completer interface {
	// Complete generates an assistant response for the conversation history.
	Complete(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the completion service is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases underlying client resources.
	Close() error
}
