package handlers

import (
	"context"
	"io"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/pipeline"
)

// Ingestor accepts an uploaded document and runs it through the pipeline
type Ingestor interface {
	Ingest(ctx context.Context, filename string, content io.Reader) (*models.IngestResult, error)
}

// StateReader exposes the current query generation to read-only handlers
type StateReader interface {
	Get() pipeline.Generation
	Ready() bool
}

// Asker answers questions against the current query generation
type Asker interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
}

// GraphReader exposes the concept graph to read-only handlers
type GraphReader interface {
	ConceptNames(ctx context.Context) ([]string, error)
	Snapshot(ctx context.Context) (*models.GraphSnapshot, error)
}
