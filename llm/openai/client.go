// Package openai implements the llm.Provider interface on top of the OpenAI
// chat completion API.
package openai

import (
	"context"
	"fmt"

	"github.com/alt-coder/chartflow/llm"
	"github.com/sashabaranov/go-openai"
)

// Client implements llm.Provider for OpenAI's models.
type Client struct {
	client *openai.Client
	config *Config
}

// NewClient creates a configured OpenAI client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.OrgID != "" {
		clientConfig.OrgID = config.OrgID
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// CallLLM implements the generic interface, converting messages internally.
func (c *Client) CallLLM(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	if len(messages) == 0 {
		return llm.Message{}, fmt.Errorf("no messages to send")
	}

	request := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    convertMessages(messages),
		Temperature: c.config.Temperature,
	}
	if c.config.MaxTokens > 0 {
		request.MaxTokens = c.config.MaxTokens
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return llm.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("no choices in response")
	}

	return llm.Message{
		Role:    llm.RoleAssistant,
		Content: response.Choices[0].Message.Content,
	}, nil
}

// GetName returns the provider identifier.
func (c *Client) GetName() string { return "openai" }

func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case llm.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case llm.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		converted[i] = openai.ChatCompletionMessage{Role: role, Content: msg.Content}
	}
	return converted
}
