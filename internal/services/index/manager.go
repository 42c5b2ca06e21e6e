package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	badgerstore "github.com/AnjiB/graphkg-rag-demo/internal/storage/badger"
)

// Manager embeds chunks and maintains the durable similarity index at the
// fixed Badger path. The store is opened lazily: at startup only when the
// path already holds data, otherwise on the first ingestion.
type Manager struct {
	badgerCfg common.BadgerConfig
	embedder  interfaces.Embedder
	logger    arbor.ILogger

	mu      sync.Mutex
	storage *badgerstore.VectorStorage
}

// Compile-time interface assertion
var _ interfaces.VectorIndexService = (*Manager)(nil)

// NewManager creates a vector index manager bound to the configured path
func NewManager(badgerCfg common.BadgerConfig, embedder interfaces.Embedder, logger arbor.ILogger) *Manager {
	return &Manager{
		badgerCfg: badgerCfg,
		embedder:  embedder,
		logger:    logger,
	}
}

// LoadExisting attempts to reopen a previously persisted index. A missing
// or empty path means a fresh start and returns (nil, nil, nil); a store
// that exists but fails to open is logged as a warning and also treated as
// a fresh start rather than a fatal error.
func (m *Manager) LoadExisting(ctx context.Context) (interfaces.Retriever, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !badgerstore.PathHasData(m.badgerCfg.Path) {
		m.logger.Info().Str("path", m.badgerCfg.Path).Msg("No existing vector index found, starting fresh")
		return nil, nil, nil
	}

	if err := m.openLocked(); err != nil {
		m.logger.Warn().Err(err).Str("path", m.badgerCfg.Path).Msg("Could not load existing vector index, starting fresh")
		return nil, nil, nil
	}

	count, err := m.storage.CountEntries()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Could not read existing vector index, starting fresh")
		return nil, nil, nil
	}

	var chunks []string
	if list, err := m.storage.LoadChunkList(); err != nil {
		m.logger.Warn().Err(err).Msg("Could not load persisted chunk list")
	} else if list != nil {
		chunks = list.Chunks
	}

	m.logger.Info().
		Int("entries", count).
		Int("chunks", len(chunks)).
		Msg("Loaded existing vector index")

	return m.newRetriever(), chunks, nil
}

// RebuildFrom embeds every chunk's content and persists the entries plus
// the replacement chunk list. Entries accumulate across uploads; repeated
// uploads of the same content are not deduplicated. Any embedding or
// storage failure surfaces as models.ErrIndexBuild.
func (m *Manager) RebuildFrom(ctx context.Context, chunks []models.Chunk) (interfaces.Retriever, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.openLocked(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexBuild, err)
	}

	entries := make([]models.VectorEntry, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := m.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding chunk %d: %v", models.ErrIndexBuild, chunk.Sequence, err)
		}
		entries = append(entries, models.VectorEntry{
			ID:         chunk.ID,
			DocumentID: chunk.DocumentID,
			Sequence:   chunk.Sequence,
			Content:    chunk.Content,
			Source:     chunk.Source,
			Page:       chunk.Page,
			Embedding:  embedding,
		})
	}

	if err := m.storage.SaveEntries(entries); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexBuild, err)
	}

	list := &models.ChunkList{Chunks: make([]string, len(chunks))}
	for i, chunk := range chunks {
		list.Chunks[i] = chunk.Content
		list.Source = chunk.Source
	}
	if err := m.storage.SaveChunkList(list); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexBuild, err)
	}

	m.logger.Info().
		Int("chunks", len(chunks)).
		Str("path", m.badgerCfg.Path).
		Msg("Vector index rebuilt")

	return m.newRetriever(), nil
}

// Storage returns the open vector storage, or nil before the first open.
// Used by the maintenance service for value-log GC.
func (m *Manager) Storage() *badgerstore.VectorStorage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storage
}

// Close closes the underlying store if it was opened
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		return nil
	}
	err := m.storage.Close()
	m.storage = nil
	return err
}

func (m *Manager) openLocked() error {
	if m.storage != nil {
		return nil
	}
	db, err := badgerstore.NewBadgerDB(m.logger, &m.badgerCfg)
	if err != nil {
		return err
	}
	m.storage = badgerstore.NewVectorStorage(db, m.logger)
	return nil
}

func (m *Manager) newRetriever() *Retriever {
	return &Retriever{
		storage:  m.storage,
		embedder: m.embedder,
		logger:   m.logger,
	}
}

// Retriever is a handle over the vector index configured for similarity
// queries. Handles captured by in-flight requests stay valid across
// generation swaps because they all share the same durable store.
type Retriever struct {
	storage  *badgerstore.VectorStorage
	embedder interfaces.Embedder
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.Retriever = (*Retriever)(nil)

// Query embeds the question and returns up to k entries ranked
// nearest-first by cosine similarity. Failures surface as
// models.ErrRetrieval; stored state is never affected.
func (r *Retriever) Query(ctx context.Context, question string, k int) ([]models.RetrievedChunk, error) {
	queryVec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", models.ErrRetrieval, err)
	}

	entries, err := r.storage.AllEntries()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRetrieval, err)
	}

	scored := make([]models.RetrievedChunk, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, models.RetrievedChunk{
			Content: entry.Content,
			Metadata: map[string]any{
				"document_id": entry.DocumentID,
				"source":      entry.Source,
				"sequence":    entry.Sequence,
				"page":        entry.Page,
			},
			Score: CosineSimilarity(queryVec, entry.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}

	r.logger.Debug().
		Int("retrieved", len(scored)).
		Int("k", k).
		Msg("Similarity query completed")

	return scored, nil
}
