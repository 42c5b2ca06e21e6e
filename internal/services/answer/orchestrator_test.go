package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/relevance"
)

type stubRetriever struct {
	chunks []models.RetrievedChunk
	err    error
	lastK  int
}

func (s *stubRetriever) Query(_ context.Context, _ string, k int) ([]models.RetrievedChunk, error) {
	s.lastK = k
	if s.err != nil {
		return nil, s.err
	}
	if len(s.chunks) > k {
		return s.chunks[:k], nil
	}
	return s.chunks, nil
}

type stubCompleter struct {
	response string
	err      error
	lastMsgs []interfaces.Message
}

func (s *stubCompleter) Complete(_ context.Context, messages []interfaces.Message) (string, error) {
	s.lastMsgs = messages
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubCompleter) HealthCheck(context.Context) error { return nil }
func (s *stubCompleter) Close() error                      { return nil }

func testFilter() *relevance.Filter {
	return relevance.NewFilter(common.RelevanceConfig{
		MinContentLength: 50,
		MinWordCount:     5,
		SentinelPrefixes: []string{"Test", "grains"},
		GeneralTriggers:  []string{"who is", "elon musk"},
		InjectionMarkers: []string{"<script>"},
	})
}

func newTestOrchestrator(r interfaces.Retriever, c interfaces.Completer) *Orchestrator {
	return New(r, c, testFilter(), common.RetrievalConfig{TopK: 3}, arbor.NewLogger())
}

func meaningfulChunk(first string) models.RetrievedChunk {
	return models.RetrievedChunk{
		Content: first + " onboarding takes two weeks and covers the build system, the deploy pipeline, and code review practices in detail.",
		Score:   0.9,
	}
}

func TestAnswer_GroundedResponse(t *testing.T) {
	retriever := &stubRetriever{chunks: []models.RetrievedChunk{
		meaningfulChunk("Engineering"),
		meaningfulChunk("Security"),
	}}
	completer := &stubCompleter{response: "Onboarding takes two weeks."}
	orch := newTestOrchestrator(retriever, completer)

	answer, err := orch.Answer(context.Background(), "How long does onboarding take?")
	require.NoError(t, err)

	assert.Equal(t, "Onboarding takes two weeks.", answer.Answer)
	assert.Equal(t, models.SourceDocument, answer.AnswerSource)
	assert.Equal(t, 2, answer.RetrievedDocCount)
	assert.Equal(t, []string{"Engineering", "Security"}, answer.RelevantConcepts)
	assert.Equal(t, 3, retriever.lastK)

	// Grounded questions carry the retrieved context in the prompt
	require.Len(t, completer.lastMsgs, 2)
	assert.Contains(t, completer.lastMsgs[1].Content, "Context:")
	assert.Contains(t, completer.lastMsgs[1].Content, "Engineering onboarding")
}

func TestAnswer_GeneralKnowledgeStillIncludesContext(t *testing.T) {
	retriever := &stubRetriever{chunks: []models.RetrievedChunk{
		meaningfulChunk("Engineering"),
	}}
	completer := &stubCompleter{response: "He founded several companies."}
	orch := newTestOrchestrator(retriever, completer)

	answer, err := orch.Answer(context.Background(), "Who is Elon Musk?")
	require.NoError(t, err)

	assert.Equal(t, models.SourceGeneralKnowledge, answer.AnswerSource)
	assert.Contains(t, answer.SourceMessage, "general knowledge")

	// The verdict only labels provenance; retrieved chunks are always
	// stuffed into the prompt
	require.Len(t, completer.lastMsgs, 2)
	assert.Contains(t, completer.lastMsgs[1].Content, "Context:")
	assert.Contains(t, completer.lastMsgs[1].Content, "Engineering onboarding")
}

func TestAnswer_EmptyIndexSendsBareQuestion(t *testing.T) {
	retriever := &stubRetriever{}
	completer := &stubCompleter{response: "Nothing to cite."}
	orch := newTestOrchestrator(retriever, completer)

	_, err := orch.Answer(context.Background(), "What is in the handbook?")
	require.NoError(t, err)

	require.Len(t, completer.lastMsgs, 2)
	assert.False(t, strings.Contains(completer.lastMsgs[1].Content, "Context:"))
}

func TestAnswer_NoRetrievedChunks(t *testing.T) {
	retriever := &stubRetriever{}
	completer := &stubCompleter{response: "I don't have documents for that."}
	orch := newTestOrchestrator(retriever, completer)

	answer, err := orch.Answer(context.Background(), "What is in the handbook?")
	require.NoError(t, err)

	assert.Equal(t, models.SourceGeneralKnowledge, answer.AnswerSource)
	assert.Equal(t, 0, answer.RetrievedDocCount)
	assert.Empty(t, answer.RelevantConcepts)
}

func TestAnswer_RetrievalError(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("index gone")}
	orch := newTestOrchestrator(retriever, &stubCompleter{response: "x"})

	_, err := orch.Answer(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRetrieval)
}

func TestAnswer_CompletionError(t *testing.T) {
	retriever := &stubRetriever{chunks: []models.RetrievedChunk{meaningfulChunk("Engineering")}}
	completer := &stubCompleter{err: errors.New("quota exceeded")}
	orch := newTestOrchestrator(retriever, completer)

	_, err := orch.Answer(context.Background(), "How long does onboarding take?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer generation failed")
}

func TestConceptsFromChunks_OnePerChunk(t *testing.T) {
	chunks := []models.RetrievedChunk{
		meaningfulChunk("Engineering"),
		meaningfulChunk("Engineering"),
		meaningfulChunk("Security"),
	}
	// One entry per retrieved chunk, duplicates kept
	assert.Equal(t, []string{"Engineering", "Engineering", "Security"}, conceptsFromChunks(chunks))
}
