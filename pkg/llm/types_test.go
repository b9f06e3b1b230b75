package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageContent_Unmarshal(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantText    string
		wantPresent bool
	}{
		{
			name:        "plain string",
			payload:     `{"role":"assistant","content":"  Happy  "}`,
			wantText:    "  Happy  ",
			wantPresent: true,
		},
		{
			name:        "typed segments",
			payload:     `{"role":"assistant","content":[{"type":"text","text":"Hello "},{"type":"image_url"},{"type":"text","text":"world"}]}`,
			wantText:    "Hello world",
			wantPresent: true,
		},
		{
			name:        "null content",
			payload:     `{"role":"assistant","content":null}`,
			wantText:    "",
			wantPresent: false,
		},
		{
			name:        "missing content",
			payload:     `{"role":"assistant"}`,
			wantText:    "",
			wantPresent: false,
		},
		{
			name:        "segments without text",
			payload:     `{"role":"assistant","content":[{"type":"reasoning","text":"hidden"}]}`,
			wantText:    "",
			wantPresent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg ResponseMessage
			if err := json.Unmarshal([]byte(tt.payload), &msg); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			text, present := msg.Content.Text()
			if text != tt.wantText {
				t.Errorf("Text() = %q, want %q", text, tt.wantText)
			}
			if present != tt.wantPresent {
				t.Errorf("present = %v, want %v", present, tt.wantPresent)
			}
		})
	}
}

func TestMessageContent_UnmarshalRejectsObjects(t *testing.T) {
	var msg ResponseMessage
	if err := json.Unmarshal([]byte(`{"content":{"text":"x"}}`), &msg); err == nil {
		t.Error("expected error for object content")
	}
}

func TestChatRequest_StreamAlwaysSerialized(t *testing.T) {
	body, err := json.Marshal(ChatRequest{Model: "m", Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(body), `"stream":false`) {
		t.Errorf("expected stream:false in %s", body)
	}
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name             string
		status           int
		body             string
		wantErrorMessage string
		wantErrorCode    int
		wantErrorType    string
		wantMessage      string
		wantCode         int
	}{
		{
			name:             "openrouter nested error",
			status:           429,
			body:             `{"error":{"message":"Rate limit exceeded: free-models-per-min","code":429}}`,
			wantErrorMessage: "Rate limit exceeded: free-models-per-min",
			wantErrorCode:    429,
		},
		{
			name:             "groq string code",
			status:           429,
			body:             `{"error":{"message":"Rate limit reached","type":"tokens","code":"rate_limit_exceeded"}}`,
			wantErrorMessage: "Rate limit reached",
			wantErrorType:    "tokens",
		},
		{
			name:             "plain string error",
			status:           401,
			body:             `{"error": "Invalid API key"}`,
			wantErrorMessage: "Invalid API key",
		},
		{
			name:        "top-level message",
			status:      503,
			body:        `{"message":"upstream unavailable"}`,
			wantMessage: "upstream unavailable",
		},
		{
			name:        "top-level numeric code",
			status:      500,
			body:        `{"message":"Service overloaded","code":503}`,
			wantMessage: "Service overloaded",
			wantCode:    503,
		},
		{
			name:        "top-level string code",
			status:      500,
			body:        `{"message":"throttled","code":"429"}`,
			wantMessage: "throttled",
			wantCode:    429,
		},
		{
			name:   "not json",
			status: 502,
			body:   `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.status, []byte(tt.body))

			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
			if err.ErrorMessage != tt.wantErrorMessage {
				t.Errorf("ErrorMessage = %q, want %q", err.ErrorMessage, tt.wantErrorMessage)
			}
			if err.ErrorCode != tt.wantErrorCode {
				t.Errorf("ErrorCode = %d, want %d", err.ErrorCode, tt.wantErrorCode)
			}
			if err.ErrorType != tt.wantErrorType {
				t.Errorf("ErrorType = %q, want %q", err.ErrorType, tt.wantErrorType)
			}
			if err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", err.Code, tt.wantCode)
			}
			if err.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMessage)
			}
			if err.Body != tt.body {
				t.Errorf("Body = %q, want %q", err.Body, tt.body)
			}
		})
	}
}
