package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Message roles accepted by OpenAI-compatible chat APIs
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a message in the conversation
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// ChatRequest represents a generic request to an LLM API
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// ContentPart is one typed segment of a multi-part message content
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessageContent holds a completion message content, which vendors send
// either as a plain string or as a list of typed segments.
type MessageContent struct {
	text    string
	parts   []ContentPart
	isParts bool
	present bool
}

// NewTextContent builds a plain string content
func NewTextContent(text string) MessageContent {
	return MessageContent{text: text, present: true}
}

// NewPartsContent builds a segmented content
func NewPartsContent(parts ...ContentPart) MessageContent {
	return MessageContent{parts: parts, isParts: true, present: true}
}

// Text returns the plain text of the content. Segmented content is reduced
// to its text-typed segments, concatenated in order. The second value is
// false when the payload carried no content at all.
func (c MessageContent) Text() (string, bool) {
	if !c.present {
		return "", false
	}
	if !c.isParts {
		return c.text, true
	}

	var sb strings.Builder
	for _, part := range c.parts {
		if part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), true
}

// UnmarshalJSON implements json.Unmarshaler
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	*c = MessageContent{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &c.text); err != nil {
			return fmt.Errorf("failed to decode content string: %w", err)
		}
		c.present = true
	case '[':
		if err := json.Unmarshal(trimmed, &c.parts); err != nil {
			return fmt.Errorf("failed to decode content parts: %w", err)
		}
		c.isParts = true
		c.present = true
	default:
		return fmt.Errorf("unsupported content shape: %s", string(trimmed[:1]))
	}

	return nil
}

// MarshalJSON implements json.Marshaler
func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch {
	case !c.present:
		return []byte("null"), nil
	case c.isParts:
		return json.Marshal(c.parts)
	default:
		return json.Marshal(c.text)
	}
}

// ResponseMessage is the assistant message of a completion choice
type ResponseMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// Choice is one completion alternative
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// Usage reports token accounting for a completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse represents a non-streaming response
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}
