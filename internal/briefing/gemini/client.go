package gemini

import (
	"context"
	"fmt"

	"github.com/skybrief/skybrief/internal/briefing"
	"github.com/skybrief/skybrief/pkg/logger"
	"google.golang.org/genai"
)

// Client represents a Google Gemini API client
type Client struct {
	apiKey string
	logger *logger.Logger
}

// NewClient creates a new Gemini Client
func NewClient(apiKey string, log *logger.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		logger: log.Named("gemini"),
	}
}

// ChatCompletion sends a conversation to Gemini and returns the text response.
// Messages with the "system" role become the system instruction; "assistant"
// maps to Gemini's model role.
func (c *Client) ChatCompletion(ctx context.Context, messages []briefing.ChatMessage, config briefing.ChatConfig) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	genConfig := &genai.GenerateContentConfig{}
	if config.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(float32(config.Temperature))
	}
	if config.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(config.MaxTokens)
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			genConfig.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	c.logger.Debug("Sending chat completion request",
		logger.String("model", config.Model),
		logger.Int("message_count", len(messages)))

	resp, err := client.Models.GenerateContent(ctx, config.Model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini chat completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
