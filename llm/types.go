package llm

import "context"

// Message represents a generic chat message that can be used across different
// LLM providers.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string // The actual message content
}

// Provider defines the contract that all LLM implementations must follow.
type Provider interface {
	// CallLLM sends messages to the LLM and returns the response.
	CallLLM(ctx context.Context, messages []Message) (Message, error)

	// GetName returns the name/identifier of the LLM provider.
	GetName() string
}

const (
	// RoleSystem is used for system-level messages
	RoleSystem = "system"
	// RoleUser is used for user messages
	RoleUser = "user"
	// RoleAssistant is used for assistant messages
	RoleAssistant = "assistant"
)
