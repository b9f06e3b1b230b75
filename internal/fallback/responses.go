package fallback

import "fmt"

// Response represents a user-facing failure message
type Response struct {
	Content string
}

// GetRateLimitedResponse is used once rate-limit retries are exhausted
func GetRateLimitedResponse(retries int) Response {
	return Response{
		Content: fmt.Sprintf("The AI service is receiving too many requests. We retried %d times without success. Please wait 30-60 seconds and try again.", retries),
	}
}

// GetAuthResponse is used when the upstream rejects our credentials
func GetAuthResponse() Response {
	return Response{
		Content: "Authentication with the AI service failed. Please check the API key configuration.",
	}
}

// GetProviderResponse is used when the model or its provider is unavailable
func GetProviderResponse() Response {
	return Response{
		Content: "The AI provider is currently unavailable. Please try again later or choose a different model.",
	}
}

// GetNoResponse is used when the upstream returned no usable text
func GetNoResponse() Response {
	return Response{
		Content: "no response from AI agent",
	}
}
