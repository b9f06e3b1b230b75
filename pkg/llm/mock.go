package llm

import (
	"context"
	"sync"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	mu sync.Mutex

	// ChatFunc allows customizing the completion behavior
	ChatFunc func(context.Context, ChatRequest) (*ChatResponse, error)

	// Tracking for assertions
	ChatCalls []ChatRequest
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock client with default behavior
func NewMockClient() *MockClient {
	return &MockClient{
		ChatCalls: make([]ChatRequest, 0),
	}
}

// NewTextResponse builds a single-choice response holding text
func NewTextResponse(model, text string) *ChatResponse {
	return &ChatResponse{
		ID:      "mock-response-1",
		Object:  "chat.completion",
		Created: 1234567890,
		Model:   model,
		Choices: []Choice{
			{
				Index: 0,
				Message: ResponseMessage{
					Role:    RoleAssistant,
					Content: NewTextContent(text),
				},
				FinishReason: "stop",
			},
		},
	}
}

// ChatCompletion implements Client.ChatCompletion
func (m *MockClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	// Snapshot messages so later mutation by the caller can't affect assertions
	captured := req
	captured.Messages = append([]ChatMessage(nil), req.Messages...)
	m.ChatCalls = append(m.ChatCalls, captured)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}

	return NewTextResponse(req.Model, "This is a mock response."), nil
}

// GetChatCallCount returns the number of chat calls made
func (m *MockClient) GetChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// LastRequest returns the most recent request, if any
func (m *MockClient) LastRequest() (ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatCalls) == 0 {
		return ChatRequest{}, false
	}
	return m.ChatCalls[len(m.ChatCalls)-1], true
}
