package badger

import (
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// currentChunksKey is the fixed key for the latest ingestion's chunk list.
// The list is replaced wholesale on every upload; vector entries accumulate.
const currentChunksKey = "current_chunks"

// VectorStorage persists vector index entries and the current chunk list
type VectorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStorage creates a new VectorStorage instance
func NewVectorStorage(db *BadgerDB, logger arbor.ILogger) *VectorStorage {
	return &VectorStorage{
		db:     db,
		logger: logger,
	}
}

// SaveEntries persists vector entries, overwriting entries with the same ID
func (s *VectorStorage) SaveEntries(entries []models.VectorEntry) error {
	now := time.Now()
	for i := range entries {
		if entries[i].ID == "" {
			return fmt.Errorf("vector entry ID is required")
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		if err := s.db.Store().Upsert(entries[i].ID, &entries[i]); err != nil {
			return fmt.Errorf("failed to save vector entry %s: %w", entries[i].ID, err)
		}
	}
	return nil
}

// AllEntries returns every persisted vector entry
func (s *VectorStorage) AllEntries() ([]models.VectorEntry, error) {
	var entries []models.VectorEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to load vector entries: %w", err)
	}
	return entries, nil
}

// CountEntries returns the number of persisted vector entries
func (s *VectorStorage) CountEntries() (int, error) {
	count, err := s.db.Store().Count(&models.VectorEntry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count vector entries: %w", err)
	}
	return int(count), nil
}

// SaveChunkList replaces the persisted chunk list of the latest ingestion
func (s *VectorStorage) SaveChunkList(list *models.ChunkList) error {
	list.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(currentChunksKey, list); err != nil {
		return fmt.Errorf("failed to save chunk list: %w", err)
	}
	return nil
}

// LoadChunkList returns the persisted chunk list, or nil when none exists
func (s *VectorStorage) LoadChunkList() (*models.ChunkList, error) {
	var list models.ChunkList
	if err := s.db.Store().Get(currentChunksKey, &list); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load chunk list: %w", err)
	}
	return &list, nil
}

// Badger exposes the raw badger handle for maintenance (value-log GC)
func (s *VectorStorage) Badger() *badgerdb.DB {
	return s.db.Store().Badger()
}

// Close closes the underlying database connection
func (s *VectorStorage) Close() error {
	return s.db.Close()
}
