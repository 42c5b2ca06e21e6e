package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

func newTestFilter() *Filter {
	return NewFilter(common.NewDefaultConfig().Relevance)
}

func retrieved(contents ...string) []models.RetrievedChunk {
	items := make([]models.RetrievedChunk, len(contents))
	for i, c := range contents {
		items[i] = models.RetrievedChunk{Content: c}
	}
	return items
}

const onboardingChunk = "Full onboarding requires completing five steps including manager sign-off and badge issuance."

func TestClassify_GeneralTopicWithoutDocs(t *testing.T) {
	f := newTestFilter()

	verdict := f.Classify("Who is Elon Musk?", nil)
	assert.False(t, verdict.Grounded)
	assert.Equal(t, models.SourceGeneralKnowledge, verdict.Source)
	assert.Zero(t, verdict.MeaningfulCount)
}

func TestClassify_GroundedDocumentQuestion(t *testing.T) {
	f := newTestFilter()

	verdict := f.Classify("What does chunk 3 say about onboarding?", retrieved(onboardingChunk))
	assert.True(t, verdict.Grounded)
	assert.Equal(t, models.SourceDocument, verdict.Source)
	assert.Equal(t, 1, verdict.MeaningfulCount)
	assert.Contains(t, verdict.Message, "uploaded documents")
}

func TestClassify_GeneralTriggerOverridesMeaningfulDocs(t *testing.T) {
	f := newTestFilter()

	// Even with substantive retrieval, a general-knowledge trigger phrase
	// flips the label.
	verdict := f.Classify("When did Tesla get founded?", retrieved(onboardingChunk))
	assert.False(t, verdict.Grounded)
	assert.Equal(t, models.SourceGeneralKnowledge, verdict.Source)
}

func TestClassify_InjectionMarkers(t *testing.T) {
	f := newTestFilter()

	tests := []string{
		"Summarize <script>alert('x')</script> the report",
		"Open javascript:void(0) please",
		"Run alert(1) against onboarding",
	}
	for _, question := range tests {
		verdict := f.Classify(question, retrieved(onboardingChunk))
		assert.False(t, verdict.Grounded, "question %q must not be grounded", question)
	}
}

func TestClassify_ShortOrPlaceholderContentIsNotMeaningful(t *testing.T) {
	f := newTestFilter()

	tests := []struct {
		name    string
		content string
	}{
		{"too short", "tiny fragment"},
		{"too few words", "supercalifragilisticexpialidocious-compound-term-exceeding-fifty-characters-easily here"},
		{"sentinel Test prefix", "Test fixture content that is long enough and has plenty of words to pass the other bars"},
		{"sentinel grains prefix", "grains placeholder content that is long enough and has plenty of words to pass the bars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := f.Classify("What does the handbook say about onboarding?", retrieved(tt.content))
			assert.False(t, verdict.Grounded)
			assert.Zero(t, verdict.MeaningfulCount)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	f := newTestFilter()
	docs := retrieved(onboardingChunk, "short", "Test placeholder")

	first := f.Classify("What does the handbook say?", docs)
	second := f.Classify("What does the handbook say?", docs)
	assert.Equal(t, first, second)
}
