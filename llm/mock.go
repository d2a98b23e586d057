package llm

import (
	"context"
	"errors"
	"sync"
)

// MockProvider implements Provider for testing purposes. It replays a fixed
// sequence of responses and can simulate errors.
type MockProvider struct {
	name string

	mu            sync.Mutex
	responses     []string
	responseIndex int
	err           error
	callCount     int
}

// NewMockProvider creates a new mock provider with predefined responses.
func NewMockProvider(name string, responses ...string) *MockProvider {
	return &MockProvider{
		name:      name,
		responses: responses,
	}
}

// FailWith makes every subsequent call return err.
func (m *MockProvider) FailWith(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// CallLLM returns the next configured response, cycling when exhausted.
func (m *MockProvider) CallLLM(_ context.Context, messages []Message) (Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.err != nil {
		return Message{}, m.err
	}
	if len(messages) == 0 {
		return Message{}, errors.New("no messages to send")
	}
	if len(m.responses) == 0 {
		return Message{}, errors.New("no responses configured")
	}
	response := m.responses[m.responseIndex%len(m.responses)]
	m.responseIndex++
	return Message{Role: RoleAssistant, Content: response}, nil
}

// GetName returns the mock provider's name.
func (m *MockProvider) GetName() string { return m.name }

// CallCount reports how many times CallLLM was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
