package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// APIError is returned by vendor clients when the API answers with a
// non-200 status. Fields decoded from the body are best effort.
type APIError struct {
	StatusCode int
	Body       string

	// Message is a top-level "message" field, if the body had one
	Message string
	// Code is a numeric top-level "code", zero when absent or non-numeric
	Code int
	// ErrorMessage is the nested error.message (or a plain string "error")
	ErrorMessage string
	// ErrorCode is a numeric error.code, zero when absent or non-numeric
	ErrorCode int
	// ErrorType is error.type or a string error.code
	ErrorType string
}

func (e *APIError) Error() string {
	msg := e.ErrorMessage
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, msg)
}

// NewAPIError builds an APIError from a raw response status and body
func NewAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       string(body),
	}

	var envelope struct {
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}
	apiErr.Message = envelope.Message
	if code, ok := parseCode(envelope.Code); ok {
		apiErr.Code = code
	}

	if len(envelope.Error) == 0 {
		return apiErr
	}

	// {"error": "Invalid API key"}
	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		apiErr.ErrorMessage = plain
		return apiErr
	}

	var nested struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
		Status  json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err != nil {
		return apiErr
	}
	apiErr.ErrorMessage = nested.Message
	apiErr.ErrorType = nested.Type

	if code, ok := parseCode(nested.Code); ok {
		apiErr.ErrorCode = code
	} else if s := unquote(nested.Code); s != "" && apiErr.ErrorType == "" {
		apiErr.ErrorType = s
	}

	return apiErr
}

func parseCode(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	if n, err := strconv.Atoi(unquote(raw)); err == nil {
		return n, true
	}
	return 0, false
}

func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
