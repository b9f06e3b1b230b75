package privacy

import (
	"regexp"
)

var (
	// Email pattern
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Phone patterns (US, international, 7-digit local)
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]\d{4}|\b\d{3}[-.\s]\d{4}\b`)

	// Credit card pattern (basic) - must have 4 groups
	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`)

	// Vendor API keys: sk-or-v1-..., gsk_..., AIza...
	apiKeyRegex = regexp.MustCompile(`\b(sk-[A-Za-z0-9_-]{8,}|gsk_[A-Za-z0-9]{8,}|AIza[0-9A-Za-z_-]{20,})`)

	// Authorization headers and key query params echoed back in errors
	bearerRegex   = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
	keyParamRegex = regexp.MustCompile(`(?i)([?&]key=)[^&\s"]+`)
)

const maxLogLength = 200

// RedactSensitiveData removes PII from text
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	text = creditCardRegex.ReplaceAllString(text, "[CARD]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	return text
}

// RedactSecrets removes credentials that upstream errors sometimes echo
func RedactSecrets(text string) string {
	text = bearerRegex.ReplaceAllString(text, "Bearer [REDACTED]")
	text = keyParamRegex.ReplaceAllString(text, "${1}[REDACTED]")
	text = apiKeyRegex.ReplaceAllString(text, "[API_KEY]")
	return text
}

// SanitizeForLogging prepares text for safe logging
func SanitizeForLogging(text string) string {
	redacted := RedactSecrets(RedactSensitiveData(text))

	if len(redacted) > maxLogLength {
		return truncate(redacted, maxLogLength-3) + "..."
	}

	return redacted
}

// ContainsPII checks if text contains potential PII
func ContainsPII(text string) bool {
	return emailRegex.MatchString(text) ||
		phoneRegex.MatchString(text) ||
		creditCardRegex.MatchString(text)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
