package interfaces

import (
	"context"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// GraphStore is a labeled-graph store with MERGE-style idempotent upsert
// semantics. Node identity is (label, name); edge identity is
// (from, to, relation type). Re-upserting an existing node or edge is a
// no-op, so repeated ingestions never create duplicate parallel edges.
type GraphStore interface {
	// UpsertConcepts merges one Concept node per name and one RELATED_TO
	// edge per consecutive pair. Each node and edge write is its own
	// transaction; a failure partway through leaves a partially-updated
	// graph (accepted weak-consistency point).
	UpsertConcepts(ctx context.Context, concepts []string) error

	// ConceptNames returns all concept node names sorted ascending.
	ConceptNames(ctx context.Context) ([]string, error)

	// Snapshot returns all nodes and edges for external inspection.
	Snapshot(ctx context.Context) (*models.GraphSnapshot, error)

	// Close releases the driver connection.
	Close(ctx context.Context) error
}
