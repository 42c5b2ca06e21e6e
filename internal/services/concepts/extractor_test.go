package concepts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

func chunksOf(contents ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = models.Chunk{Sequence: i, Content: c}
	}
	return chunks
}

func TestExtract_SkipsBlankChunksPreservesOrder(t *testing.T) {
	e := NewExtractor(5)
	chunks := chunksOf("Apple pie", "", "Banana split", "   ", "Cherry cake")

	got := e.Extract(chunks)
	assert.Equal(t, []string{"Apple", "Banana", "Cherry"}, got)
}

func TestExtract_LimitsToMaxChunks(t *testing.T) {
	e := NewExtractor(5)
	chunks := chunksOf("one a", "two b", "three c", "four d", "five e", "six f", "seven g")

	got := e.Extract(chunks)
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, got)
}

func TestExtract_FewerChunksThanLimit(t *testing.T) {
	e := NewExtractor(5)

	got := e.Extract(chunksOf("solo chunk"))
	assert.Equal(t, []string{"solo"}, got)
}

func TestExtract_Empty(t *testing.T) {
	e := NewExtractor(5)

	assert.Empty(t, e.Extract(nil))
	assert.Empty(t, e.Extract(chunksOf("", "  \t\n")))
}

func TestExtract_Pure(t *testing.T) {
	e := NewExtractor(5)
	chunks := chunksOf("Graphs model relations", "Vectors model similarity")

	first := e.Extract(chunks)
	second := e.Extract(chunks)
	assert.Equal(t, first, second)
}

func TestFirstToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Apple pie", "Apple"},
		{"  leading spaces", "leading"},
		{"single", "single"},
		{"", ""},
		{"   ", ""},
		{"\tTabbed\ttokens", "Tabbed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstToken(tt.in))
	}
}
