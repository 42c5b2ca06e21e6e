package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewChunkID generates a chunk ID scoped to its document and sequence.
// Format: <docID>_chunk_<seq>
func NewChunkID(documentID string, sequence int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, sequence)
}
