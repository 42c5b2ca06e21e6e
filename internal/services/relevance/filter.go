package relevance

import (
	"strings"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// Verdict is the filter's classification of where an answer will come from
type Verdict struct {
	// Grounded is true when the answer can be attributed to the user's
	// uploaded documents rather than the model's general knowledge.
	Grounded bool

	// Source is models.SourceDocument or models.SourceGeneralKnowledge.
	Source string

	// Message is the human-readable provenance explanation.
	Message string

	// MeaningfulCount is how many retrieved items passed the content bar.
	MeaningfulCount int
}

const (
	documentMessage = "This answer is based on your uploaded documents."

	generalMessage = "⚠️ This answer is from the AI's general knowledge, " +
		"not from your uploaded documents. No relevant content was found " +
		"in your documents for this question."
)

// Filter decides whether retrieved content is trustworthy grounding for a
// question. Deterministic given its configuration: same inputs, same
// verdict, bit for bit. It is a conservative heuristic, not a semantic
// relevance model.
type Filter struct {
	cfg common.RelevanceConfig
}

// NewFilter creates a filter with the given phrase lists and thresholds
func NewFilter(cfg common.RelevanceConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Classify applies the grounding policy:
//  1. an item is meaningful iff it clears the length and word-count bars
//     and does not carry a placeholder sentinel prefix;
//  2. a question containing a general-knowledge trigger phrase is answered
//     from general knowledge regardless of retrieval;
//  3. markup/script injection markers in the question force the
//     general-knowledge label.
func (f *Filter) Classify(question string, retrieved []models.RetrievedChunk) Verdict {
	meaningful := 0
	for _, item := range retrieved {
		if f.isMeaningful(item.Content) {
			meaningful++
		}
	}

	questionLower := strings.ToLower(question)
	isGeneral := containsAny(questionLower, f.cfg.GeneralTriggers)
	isInjected := containsAny(questionLower, f.cfg.InjectionMarkers)

	grounded := meaningful > 0 && !isGeneral && !isInjected
	verdict := Verdict{
		Grounded:        grounded,
		MeaningfulCount: meaningful,
	}
	if grounded {
		verdict.Source = models.SourceDocument
		verdict.Message = documentMessage
	} else {
		verdict.Source = models.SourceGeneralKnowledge
		verdict.Message = generalMessage
	}
	return verdict
}

func (f *Filter) isMeaningful(content string) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) <= f.cfg.MinContentLength {
		return false
	}
	if len(strings.Fields(trimmed)) <= f.cfg.MinWordCount {
		return false
	}
	for _, prefix := range f.cfg.SentinelPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}
	return true
}

func containsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(s, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
