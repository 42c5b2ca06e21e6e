package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/answer"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/chunker"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/concepts"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/relevance"
)

// Coordinator runs the full ingestion flow for an uploaded document: chunk,
// extract concepts into the graph, rebuild the vector index, and publish the
// new generation. Graph failures are non-fatal; an index rebuild failure
// leaves the previous generation in place.
type Coordinator struct {
	chunker      *chunker.Chunker
	conceptExt   *concepts.Extractor
	graphStore   interfaces.GraphStore
	indexService interfaces.VectorIndexService
	completer    interfaces.Completer
	filter       *relevance.Filter
	retrievalCfg common.RetrievalConfig
	state        *State
	logger       arbor.ILogger
}

// NewCoordinator wires the ingestion pipeline. graphStore may be nil when the
// concept graph is disabled.
func NewCoordinator(
	ch *chunker.Chunker,
	conceptExt *concepts.Extractor,
	graphStore interfaces.GraphStore,
	indexService interfaces.VectorIndexService,
	completer interfaces.Completer,
	filter *relevance.Filter,
	retrievalCfg common.RetrievalConfig,
	state *State,
	logger arbor.ILogger,
) *Coordinator {
	return &Coordinator{
		chunker:      ch,
		conceptExt:   conceptExt,
		graphStore:   graphStore,
		indexService: indexService,
		completer:    completer,
		filter:       filter,
		retrievalCfg: retrievalCfg,
		state:        state,
		logger:       logger,
	}
}

// Ingest processes one uploaded document end to end and atomically replaces
// the query state on success.
func (c *Coordinator) Ingest(ctx context.Context, filename string, content io.Reader) (*models.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	// Reject unsupported types before any file I/O
	if !chunker.IsSupported(ext) {
		return nil, fmt.Errorf("%w: %s (supported: %s)",
			models.ErrUnsupportedFileType, ext, strings.Join(chunker.SupportedExtensions(), ", "))
	}

	tmpPath, err := c.spool(filename, ext, content)
	if err != nil {
		return nil, err
	}
	defer func() {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			c.logger.Warn().Err(removeErr).Str("path", tmpPath).Msg("Failed to remove temporary upload")
		}
	}()

	chunks, err := c.chunker.SplitFile(ctx, tmpPath, filename)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %q produced no chunks", models.ErrIndexBuild, filename)
	}

	c.updateGraph(ctx, chunks)

	retriever, err := c.indexService.RebuildFrom(ctx, chunks)
	if err != nil {
		// Previous generation stays live
		return nil, err
	}

	answerer := answer.New(retriever, c.completer, c.filter, c.retrievalCfg, c.logger)

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	c.state.Swap(Generation{
		Retriever: retriever,
		Answerer:  answerer,
		Chunks:    contents,
	})

	c.logger.Info().
		Str("file", filename).
		Int("chunks", len(chunks)).
		Msg("Document ingested")

	return &models.IngestResult{
		Message:    fmt.Sprintf("Uploaded %s (%s), stored %d chunks.", filename, ext, len(chunks)),
		ChunkCount: len(chunks),
	}, nil
}

// RestoreGeneration publishes a generation rebuilt from persisted data at
// startup, so questions can be answered before any new upload.
func (c *Coordinator) RestoreGeneration(retriever interfaces.Retriever, chunks []string) {
	answerer := answer.New(retriever, c.completer, c.filter, c.retrievalCfg, c.logger)
	c.state.Swap(Generation{
		Retriever: retriever,
		Answerer:  answerer,
		Chunks:    chunks,
	})
	c.logger.Info().Int("chunks", len(chunks)).Msg("Restored query state from persisted index")
}

// spool writes the upload to a temp file carrying the original extension so
// downstream extraction can dispatch on it.
func (c *Coordinator) spool(filename, ext string, content io.Reader) (string, error) {
	tmpFile, err := os.CreateTemp("", "graphkg-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmpFile, content); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to spool upload %q: %w", filename, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to finalize upload %q: %w", filename, err)
	}

	return tmpFile.Name(), nil
}

// updateGraph extracts concepts and upserts them into the graph store.
// Graph unavailability must not block ingestion.
func (c *Coordinator) updateGraph(ctx context.Context, chunks []models.Chunk) {
	if c.graphStore == nil {
		return
	}

	names := c.conceptExt.Extract(chunks)
	if len(names) == 0 {
		return
	}

	if err := c.graphStore.UpsertConcepts(ctx, names); err != nil {
		c.logger.Warn().Err(err).Msg("Concept graph update failed, continuing ingestion")
		return
	}

	c.logger.Debug().Int("concepts", len(names)).Msg("Concept graph updated")
}
