package concepts

import (
	"strings"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// Extractor derives concept tokens from chunk sequences. Pure and
// deterministic: same chunks in, same concepts out, input order preserved.
type Extractor struct {
	maxChunks int
}

// NewExtractor creates an extractor that inspects at most maxChunks leading
// chunks of an ingestion.
func NewExtractor(maxChunks int) *Extractor {
	return &Extractor{maxChunks: maxChunks}
}

// Extract returns the first whitespace-delimited token of each of the first
// maxChunks chunks, skipping chunks that are empty or whitespace-only.
// The result ordering matches chunk ordering; consecutive concepts become
// graph edges downstream.
func (e *Extractor) Extract(chunks []models.Chunk) []string {
	limit := e.maxChunks
	if limit > len(chunks) {
		limit = len(chunks)
	}

	concepts := make([]string, 0, limit)
	for _, chunk := range chunks[:limit] {
		token := FirstToken(chunk.Content)
		if token == "" {
			continue
		}
		concepts = append(concepts, token)
	}

	return concepts
}

// FirstToken returns the first whitespace-delimited token of s, or "" when
// s is empty or whitespace-only. The same token rule applies to retrieved
// chunk content when deriving a question's relevant concepts.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
