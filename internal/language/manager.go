package language

import (
	"sort"
	"strings"
)

const DefaultLanguage = "en"

// LanguageInfo contains information about a supported language
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// ValidationResult represents the result of language validation
type ValidationResult struct {
	Code         string `json:"code"`
	UsedFallback bool   `json:"used_fallback"`
}

// supported is the closed language table. It is never mutated.
var supported = []LanguageInfo{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം"},
}

var (
	byCode = make(map[string]LanguageInfo, len(supported))
	byName = make(map[string]string, 2*len(supported))
)

func init() {
	for _, lang := range supported {
		byCode[lang.Code] = lang
		byName[strings.ToLower(lang.Name)] = lang.Code
		byName[strings.ToLower(lang.NativeName)] = lang.Code
	}
}

// Normalize maps a code or language name to a canonical code.
// Unknown input resolves to DefaultLanguage.
func Normalize(input string) string {
	code, _ := resolve(input)
	return code
}

func resolve(input string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(input))

	if len(key) == 2 {
		if _, ok := byCode[key]; ok {
			return key, true
		}
	}

	if code, ok := byName[key]; ok {
		return code, true
	}

	return DefaultLanguage, false
}

// Manager handles language support and validation
type Manager struct{}

// NewManager creates a new language manager
func NewManager() *Manager {
	return &Manager{}
}

// Validate normalizes free-form input and reports whether the default
// language had to be used
func (m *Manager) Validate(input string) ValidationResult {
	code, ok := resolve(input)
	return ValidationResult{
		Code:         code,
		UsedFallback: !ok,
	}
}

// GetLanguageInfo returns information about a language
func (m *Manager) GetLanguageInfo(code string) (LanguageInfo, bool) {
	lang, exists := byCode[code]
	return lang, exists
}

// Info returns the language info for a code, falling back to the default
func (m *Manager) Info(code string) LanguageInfo {
	if lang, ok := byCode[code]; ok {
		return lang
	}
	return byCode[DefaultLanguage]
}

// GetSupportedLanguages returns all languages ordered by code
func (m *Manager) GetSupportedLanguages() []LanguageInfo {
	languages := make([]LanguageInfo, len(supported))
	copy(languages, supported)

	sort.Slice(languages, func(i, j int) bool {
		return languages[i].Code < languages[j].Code
	})

	return languages
}
