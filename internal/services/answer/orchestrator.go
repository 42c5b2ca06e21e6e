package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/concepts"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/relevance"
)

const systemPrompt = "You are a helpful assistant. Answer the question using the provided context. " +
	"If the context does not contain the answer, say so and answer from general knowledge."

// Orchestrator answers questions against a built retriever: it retrieves the
// top matching chunks, classifies whether the answer is grounded in the
// uploaded documents, and generates the final answer text.
type Orchestrator struct {
	retriever interfaces.Retriever
	completer interfaces.Completer
	filter    *relevance.Filter
	topK      int
	logger    arbor.ILogger
}

// New creates an orchestrator bound to a specific retriever generation
func New(retriever interfaces.Retriever, completer interfaces.Completer, filter *relevance.Filter, cfg common.RetrievalConfig, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		completer: completer,
		filter:    filter,
		topK:      cfg.TopK,
		logger:    logger,
	}
}

// Answer retrieves relevant chunks for the question, determines the answer
// source, and produces the answer with its provenance metadata.
func (o *Orchestrator) Answer(ctx context.Context, question string) (*models.Answer, error) {
	retrieved, err := o.retriever.Query(ctx, question, o.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRetrieval, err)
	}

	verdict := o.filter.Classify(question, retrieved)

	relevantConcepts := conceptsFromChunks(retrieved)

	o.logger.Debug().
		Str("source", verdict.Source).
		Int("retrieved", len(retrieved)).
		Int("meaningful", verdict.MeaningfulCount).
		Msg("Classified question relevance")

	text, err := o.generate(ctx, question, retrieved)
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Answer:            text,
		RelevantConcepts:  relevantConcepts,
		AnswerSource:      verdict.Source,
		SourceMessage:     verdict.Message,
		RetrievedDocCount: len(retrieved),
	}, nil
}

// generate always stuffs the retrieved chunks into the prompt; the relevance
// verdict labels provenance but never changes what the model sees.
func (o *Orchestrator) generate(ctx context.Context, question string, retrieved []models.RetrievedChunk) (string, error) {
	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
	}

	if len(retrieved) > 0 {
		var sb strings.Builder
		sb.WriteString("Context:\n\n")
		for i, chunk := range retrieved {
			fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, chunk.Content)
		}
		sb.WriteString("Question: ")
		sb.WriteString(question)
		messages = append(messages, interfaces.Message{Role: "user", Content: sb.String()})
	} else {
		messages = append(messages, interfaces.Message{Role: "user", Content: question})
	}

	text, err := o.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	return text, nil
}

// conceptsFromChunks takes the first token of each retrieved chunk, one
// entry per chunk in retrieval order. Chunks sharing a first token yield
// repeated entries.
func conceptsFromChunks(retrieved []models.RetrievedChunk) []string {
	names := make([]string, 0, len(retrieved))

	for _, chunk := range retrieved {
		if name := concepts.FirstToken(chunk.Content); name != "" {
			names = append(names, name)
		}
	}

	return names
}
