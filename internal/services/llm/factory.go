package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
)

// Services bundles the embedding and completion providers selected by config.
// Gemini always serves embeddings; the completer is switchable.
type Services struct {
	Embedder  interfaces.Embedder
	Completer interfaces.Completer

	gemini *GeminiService
	claude *ClaudeService
}

// NewServices builds LLM providers according to cfg.LLM.Provider.
func NewServices(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*Services, error) {
	gemini, err := NewGeminiService(ctx, cfg.Gemini, cfg.GeminiTimeout(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini service: %w", err)
	}

	svcs := &Services{
		Embedder: gemini,
		gemini:   gemini,
	}

	switch cfg.LLM.Provider {
	case "gemini", "":
		svcs.Completer = gemini
	case "claude":
		claude, err := NewClaudeService(cfg.Claude, cfg.ClaudeTimeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		svcs.Completer = claude
		svcs.claude = claude
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLM.Provider)
	}

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Str("embed_model", cfg.Gemini.EmbedModel).
		Msg("LLM services initialized")

	return svcs, nil
}

// Close releases all underlying providers
func (s *Services) Close() error {
	if s.claude != nil {
		_ = s.claude.Close()
	}
	if s.gemini != nil {
		return s.gemini.Close()
	}
	return nil
}
