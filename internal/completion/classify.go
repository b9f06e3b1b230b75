package completion

import (
	"errors"
	"net/http"
	"strings"

	"github.com/themobileprof/mindpage-be/internal/privacy"
	"github.com/themobileprof/mindpage-be/pkg/llm"
)

// Kind is the failure class of an upstream error
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindAuth        Kind = "auth"
	KindProvider    Kind = "provider"
	KindUnknown     Kind = "unknown"
)

// ErrorDescription is a vendor-neutral view of an upstream failure. Zero
// values mean "absent".
type ErrorDescription struct {
	// Message candidates, highest priority first
	Message      string
	ErrorMessage string
	Text         string

	// Status candidates, highest priority first
	Status         int
	StatusCode     int
	Code           int
	ResponseStatus int
	ErrorCode      int

	// Body is the raw upstream error body, if any
	Body string
}

// Classification is the outcome of Classify
type Classification struct {
	Message     string
	StatusCode  int
	StatusFound bool
	RateLimited bool
	Kind        Kind
}

var (
	rateLimitTerms = []string{"rate", "limit", "quota"}
	authTerms      = []string{"auth", "cookie", "api key", "unauthorized"}
	providerTerms  = []string{"provider", "unavailable", "overloaded", "no endpoints"}
)

type statusCoder interface {
	StatusCode() int
}

type responseStatuser interface {
	ResponseStatus() int
}

// Describe adapts an error returned by an llm.Client into an
// ErrorDescription. Credentials echoed by the vendor are redacted.
func Describe(err error) ErrorDescription {
	if err == nil {
		return ErrorDescription{}
	}

	desc := ErrorDescription{
		Text: privacy.RedactSecrets(err.Error()),
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		desc.Status = apiErr.StatusCode
		desc.Message = privacy.RedactSecrets(apiErr.Message)
		desc.ErrorMessage = privacy.RedactSecrets(apiErr.ErrorMessage)
		desc.Code = apiErr.Code
		desc.ErrorCode = apiErr.ErrorCode
		desc.Body = privacy.RedactSecrets(apiErr.Body)
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		desc.StatusCode = sc.StatusCode()
	}

	var rs responseStatuser
	if errors.As(err, &rs) {
		desc.ResponseStatus = rs.ResponseStatus()
	}

	return desc
}

// Classify decides message, status and failure class for a description.
// It has no side effects.
func Classify(desc ErrorDescription) Classification {
	c := Classification{
		Message:    firstNonEmpty(desc.Message, desc.ErrorMessage, desc.Text),
		StatusCode: http.StatusInternalServerError,
	}

	for _, status := range []int{desc.Status, desc.StatusCode, desc.Code, desc.ResponseStatus, desc.ErrorCode} {
		if status > 0 {
			c.StatusCode = status
			c.StatusFound = true
			break
		}
	}

	lowerMsg := strings.ToLower(c.Message)
	lowerBody := strings.ToLower(desc.Body)

	c.RateLimited = c.StatusCode == http.StatusTooManyRequests ||
		containsAny(lowerMsg, rateLimitTerms) ||
		containsAny(lowerBody, rateLimitTerms)

	switch {
	case c.RateLimited:
		c.Kind = KindRateLimited
	case containsAny(lowerMsg, authTerms):
		c.Kind = KindAuth
		c.StatusCode = http.StatusUnauthorized
	case containsAny(lowerMsg, providerTerms):
		c.Kind = KindProvider
	default:
		c.Kind = KindUnknown
	}

	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
