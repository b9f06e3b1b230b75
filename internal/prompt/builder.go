package prompt

import (
	"fmt"
	"strings"

	"github.com/themobileprof/mindpage-be/internal/classifier"
	"github.com/themobileprof/mindpage-be/internal/language"
	"github.com/themobileprof/mindpage-be/pkg/llm"
)

// Operation is a logical text-processing step
type Operation string

const (
	OpCleanText      Operation = "clean_text"
	OpDetectEmotion  Operation = "detect_emotion"
	OpCategorizeText Operation = "categorize_text"
	OpSummarize      Operation = "summarize"
	OpTranslate      Operation = "translate"
	OpBookChat       Operation = "book_chat"
)

// IsKnown reports whether op has a dedicated template
func (op Operation) IsKnown() bool {
	switch op {
	case OpCleanText, OpDetectEmotion, OpCategorizeText, OpSummarize, OpTranslate, OpBookChat:
		return true
	}
	return false
}

const (
	// NoContentMarker replaces empty book content in the book chat prompt
	NoContentMarker = "No content available."

	// NotFoundSentinel is the exact reply requested when the book has no answer
	NotFoundSentinel = "Sorry, I could not find that in the book."
)

// PromptRequest contains everything needed to render a prompt
type PromptRequest struct {
	Operation Operation
	Text      string
	Language  language.LanguageInfo
	History   []llm.ChatMessage
	Context   string // retrieved book content, book_chat only
}

// Builder renders prompt templates
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the prompt for req. Unknown operations return the raw text.
func (b *Builder) Build(req PromptRequest) string {
	switch req.Operation {
	case OpCleanText:
		return buildCleanText(req.Text)
	case OpDetectEmotion:
		return buildDetectEmotion(req.Text)
	case OpCategorizeText:
		return buildCategorize(req.Text)
	case OpSummarize:
		return buildSummarize(req.Text, req.Language)
	case OpTranslate:
		return buildTranslate(req.Text, req.Language)
	case OpBookChat:
		return b.buildBookChat(req)
	default:
		return req.Text
	}
}

func buildCleanText(text string) string {
	return fmt.Sprintf(`Clean up the following text. Fix spelling, grammar and punctuation, and remove filler words, but keep the original meaning, tone and language.
Return ONLY the cleaned text, with no explanation, quotes or preamble.

Text:
%s`, text)
}

func buildDetectEmotion(text string) string {
	return fmt.Sprintf(`Identify the dominant emotion expressed in the following text.
Respond with EXACTLY ONE word from this list: %s.
Do not add any explanation or punctuation.

Text:
%s`, joinLabels(classifier.Emotions), text)
}

func buildCategorize(text string) string {
	return fmt.Sprintf(`Classify the following text into exactly one category.
Respond with EXACTLY ONE of these categories, written exactly as shown: %s.
Do not add any explanation.

Text:
%s`, joinLabels(classifier.Categories), text)
}

func buildSummarize(text string, lang language.LanguageInfo) string {
	return fmt.Sprintf(`Summarize the following text in %s in 2-3 concise sentences. Keep the key points and do not add new information.
Return ONLY the summary.

Text:
%s`, lang.Name, text)
}

func buildTranslate(text string, lang language.LanguageInfo) string {
	return fmt.Sprintf(`Translate the following text into %s. Preserve meaning and tone.
Return ONLY the translated text, with no notes or transliteration.

Text:
%s`, lang.Name, text)
}

func (b *Builder) buildBookChat(req PromptRequest) string {
	var sb strings.Builder
	sb.Grow(1024 + len(req.Context))

	content := strings.TrimSpace(req.Context)
	if content == "" {
		content = NoContentMarker
	}

	sb.WriteString("You are a helpful assistant that answers questions about a book.\n\n")

	sb.WriteString("BOOK CONTENT:\n")
	sb.WriteString(content)
	sb.WriteString("\n\n")

	if transcript := RenderTranscript(req.History); transcript != "" {
		sb.WriteString("CONVERSATION SO FAR:\n")
		sb.WriteString(transcript)
		sb.WriteString("\n\n")
	}

	sb.WriteString("RULES:\n")
	sb.WriteString("1. Answer ONLY using the book content above. Do not use outside knowledge.\n")
	sb.WriteString(fmt.Sprintf("2. The user may type %s phonetically in Latin letters or mix scripts and English. Understand such spelling.\n", req.Language.Name))
	sb.WriteString(fmt.Sprintf("3. Reply in %s using its native script (%s) by default. Only reply in another language if the user explicitly asks for it.\n", req.Language.Name, req.Language.NativeName))
	sb.WriteString(fmt.Sprintf("4. If the answer is not in the book content, reply exactly: \"%s\"\n", NotFoundSentinel))
	sb.WriteString("5. Format any URL as a markdown link, for example [title](https://example.com).\n\n")

	sb.WriteString("QUESTION:\n")
	sb.WriteString(req.Text)

	return sb.String()
}

// RenderTranscript formats prior turns as "User: ..." / "Assistant: ..."
// lines. Empty history renders as an empty string.
func RenderTranscript(history []llm.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		speaker := "User"
		if msg.Role == llm.RoleAssistant {
			speaker = "Assistant"
		}
		lines = append(lines, speaker+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

func joinLabels[T ~string](labels []T) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
