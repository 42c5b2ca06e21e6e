package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
)

// GeminiService provides embeddings and chat completions via the Gemini API
type GeminiService struct {
	client  *genai.Client
	config  common.GeminiConfig
	timeout time.Duration
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// Compile-time interface assertions
var (
	_ interfaces.Embedder  = (*GeminiService)(nil)
	_ interfaces.Completer = (*GeminiService)(nil)
)

// NewGeminiService creates a Gemini-backed embedding and completion service
func NewGeminiService(ctx context.Context, cfg common.GeminiConfig, timeout time.Duration, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.EmbedRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.EmbedRate), 1)
	}

	return &GeminiService{
		client:  client,
		config:  cfg,
		timeout: timeout,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Embed generates an embedding vector for the given text. Calls are rate
// limited to stay inside API quotas during bulk chunk embedding.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.config.EmbedDimension)
	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != s.config.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			s.config.EmbedDimension, len(embedding))
	}

	return embedding, nil
}

// Dimension returns the configured embedding dimensionality
func (s *GeminiService) Dimension() int {
	return s.config.EmbedDimension
}

// Complete generates an assistant response for the conversation history
func (s *GeminiService) Complete(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents, systemText := convertMessagesToGemini(messages)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	// Iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return response.String(), nil
}

// HealthCheck verifies the Gemini API is reachable with the configured key
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.Embed(timeoutCtx, "ping")
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// Close releases the client
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}

// convertMessagesToGemini maps conversation messages to Gemini contents,
// extracting system messages into a separate system instruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	var systemText string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemText = msg.Content
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	return contents, systemText
}
