package index

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// wordHashEmbedder is a deterministic bag-of-words embedder for tests:
// identical text maps to identical vectors.
type wordHashEmbedder struct {
	failing bool
}

func (e *wordHashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failing {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	vec := make([]float32, 64)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:")
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

func (e *wordHashEmbedder) Dimension() int { return 64 }

func newTestManager(t *testing.T, embedder *wordHashEmbedder) *Manager {
	t.Helper()
	cfg := common.BadgerConfig{Path: filepath.Join(t.TempDir(), "vectordb")}
	m := NewManager(cfg, embedder, common.GetLogger())
	t.Cleanup(func() { m.Close() })
	return m
}

func testChunks() []models.Chunk {
	contents := []string{
		"Kubernetes orchestrates containerized workloads across clusters.",
		"Sourdough bread needs a mature starter and patient fermentation.",
		"Quarterly revenue grew eight percent year over year.",
	}
	chunks := make([]models.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = models.Chunk{
			ID:         fmt.Sprintf("doc_t_chunk_%d", i),
			DocumentID: "doc_t",
			Sequence:   i,
			Content:    c,
			Source:     "test.txt",
		}
	}
	return chunks
}

func TestRebuildFrom_SelfRetrieval(t *testing.T) {
	m := newTestManager(t, &wordHashEmbedder{})
	chunks := testChunks()

	retriever, err := m.RebuildFrom(context.Background(), chunks)
	require.NoError(t, err)
	require.NotNil(t, retriever)

	results, err := retriever.Query(context.Background(), chunks[0].Content, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunks[0].Content, results[0].Content)
}

func TestRebuildFrom_EmbeddingFailureIsIndexBuildError(t *testing.T) {
	m := newTestManager(t, &wordHashEmbedder{failing: true})

	_, err := m.RebuildFrom(context.Background(), testChunks())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIndexBuild)
}

func TestQuery_RanksNearestFirstAndCapsAtK(t *testing.T) {
	m := newTestManager(t, &wordHashEmbedder{})
	chunks := testChunks()

	retriever, err := m.RebuildFrom(context.Background(), chunks)
	require.NoError(t, err)

	results, err := retriever.Query(context.Background(), "how does sourdough fermentation work", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, chunks[1].Content, results[0].Content)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRebuildFrom_ReuploadAccumulates(t *testing.T) {
	m := newTestManager(t, &wordHashEmbedder{})

	first := testChunks()
	_, err := m.RebuildFrom(context.Background(), first)
	require.NoError(t, err)

	// A re-upload of the same file mints a fresh document ID, so its chunk
	// IDs never collide with the first upload's and entries accumulate.
	second := testChunks()
	for i := range second {
		second[i].ID = fmt.Sprintf("doc_u_chunk_%d", i)
		second[i].DocumentID = "doc_u"
	}
	retriever, err := m.RebuildFrom(context.Background(), second)
	require.NoError(t, err)

	count, err := m.Storage().CountEntries()
	require.NoError(t, err)
	assert.Equal(t, len(first)+len(second), count)

	results, err := retriever.Query(context.Background(), first[0].Content, count)
	require.NoError(t, err)
	require.Len(t, results, count)
	assert.Equal(t, first[0].Content, results[0].Content)
	assert.Equal(t, first[0].Content, results[1].Content)
}

func TestLoadExisting_FreshStart(t *testing.T) {
	m := newTestManager(t, &wordHashEmbedder{})

	retriever, chunks, err := m.LoadExisting(context.Background())
	require.NoError(t, err)
	assert.Nil(t, retriever)
	assert.Nil(t, chunks)
}

func TestLoadExisting_RestoresPersistedIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectordb")
	cfg := common.BadgerConfig{Path: dir}
	embedder := &wordHashEmbedder{}

	first := NewManager(cfg, embedder, common.GetLogger())
	chunks := testChunks()
	_, err := first.RebuildFrom(context.Background(), chunks)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := NewManager(cfg, embedder, common.GetLogger())
	t.Cleanup(func() { second.Close() })

	retriever, restored, err := second.LoadExisting(context.Background())
	require.NoError(t, err)
	require.NotNil(t, retriever)
	assert.Len(t, restored, len(chunks))

	results, err := retriever.Query(context.Background(), chunks[2].Content, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunks[2].Content, results[0].Content)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})) // length mismatch
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1})) // zero vector
}
