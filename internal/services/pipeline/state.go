package pipeline

import (
	"context"
	"sync"

	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// Answerer produces an answer for a question. Implemented by the answer
// orchestrator; declared here so the pipeline does not depend on it directly.
type Answerer interface {
	Answer(ctx context.Context, question string) (*models.Answer, error)
}

// Generation is one consistent unit of query state: the retriever built from
// an upload, the answerer bound to it, and the chunk contents it was built
// from. Swapped atomically so readers never observe a half-updated pipeline.
type Generation struct {
	Retriever interfaces.Retriever
	Answerer  Answerer
	Chunks    []string
}

// State guards the current generation behind a read-write lock
type State struct {
	mu  sync.RWMutex
	gen Generation
}

// NewState creates an empty state with no generation loaded
func NewState() *State {
	return &State{}
}

// Get returns the current generation as one consistent snapshot
func (s *State) Get() Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Swap replaces the entire generation in one step
func (s *State) Swap(gen Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen = gen
}

// Ready reports whether a retriever generation has been built
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen.Retriever != nil
}

// Ask answers the question against the current generation. Returns
// models.ErrNotReady before the first document has been ingested. The
// generation is captured once, so a concurrent swap does not affect an
// in-flight question.
func (s *State) Ask(ctx context.Context, question string) (*models.Answer, error) {
	gen := s.Get()
	if gen.Answerer == nil {
		return nil, models.ErrNotReady
	}
	return gen.Answerer.Answer(ctx, question)
}
