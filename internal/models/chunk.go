package models

import "time"

// Chunk is a bounded text segment produced by splitting a document. Chunks
// from one ingestion form an ordered sequence; the sequence index drives
// concept-graph edge creation and retrieval metadata.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Sequence   int    `json:"sequence"`
	Content    string `json:"content"`
	Source     string `json:"source"`         // original filename
	Page       int    `json:"page,omitempty"` // 1-based page number for PDF sources, 0 otherwise
}

// RetrievedChunk is a similarity-search hit, nearest-first ordering is
// preserved by the retriever.
type RetrievedChunk struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// VectorEntry is the durable record the vector index keeps per chunk.
type VectorEntry struct {
	ID         string    `json:"id" badgerhold:"key"`
	DocumentID string    `json:"document_id"`
	Sequence   int       `json:"sequence"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	Page       int       `json:"page,omitempty"`
	Embedding  []float32 `json:"embedding"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChunkList is the persisted record of the most recent ingestion's chunk
// contents. Replaced wholesale on every upload.
type ChunkList struct {
	Chunks    []string  `json:"chunks"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IngestResult summarizes a completed document ingestion.
type IngestResult struct {
	Message    string `json:"message"`
	ChunkCount int    `json:"chunk_count"`
}

// Answer is the orchestrator's response to a question, including the
// provenance classification of where the answer came from.
type Answer struct {
	Answer            string   `json:"answer"`
	RelevantConcepts  []string `json:"relevant_concepts"`
	AnswerSource      string   `json:"answer_source"`
	SourceMessage     string   `json:"source_message"`
	RetrievedDocCount int      `json:"retrieved_docs_count"`
}

// Answer source labels.
const (
	SourceDocument         = "document"
	SourceGeneralKnowledge = "general_knowledge"
)

// GraphEdge is a directed relation between two concept nodes.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rel  string `json:"rel"`
}

// GraphSnapshot is a read-only view of the concept graph.
type GraphSnapshot struct {
	Nodes []string    `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
