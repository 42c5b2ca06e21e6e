package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
)

// ClaudeService provides chat completions via the Anthropic API
type ClaudeService struct {
	client  anthropic.Client
	config  common.ClaudeConfig
	timeout time.Duration
	logger  arbor.ILogger
}

var _ interfaces.Completer = (*ClaudeService)(nil)

// NewClaudeService creates a Claude-backed completion service
func NewClaudeService(cfg common.ClaudeConfig, timeout time.Duration, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	return &ClaudeService{
		client:  client,
		config:  cfg,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Complete generates an assistant response for the conversation history
func (s *ClaudeService) Complete(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params, systemText := convertMessagesToClaude(messages)

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.config.MaxTokens),
		Messages:  params,
	}
	if s.config.Temperature > 0 {
		req.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		req.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := s.client.Messages.New(timeoutCtx, req)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), nil
}

// HealthCheck verifies the Anthropic API is reachable with the configured key
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.Complete(timeoutCtx, []interfaces.Message{
		{Role: "user", Content: "ping"},
	})
	if err != nil {
		return fmt.Errorf("claude health check failed: %w", err)
	}
	return nil
}

// Close releases the client
func (s *ClaudeService) Close() error {
	return nil
}

func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string) {
	var params []anthropic.MessageParam
	var systemText string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemText = msg.Content
		case "assistant":
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return params, systemText
}
