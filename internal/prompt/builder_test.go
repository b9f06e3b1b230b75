package prompt

import (
	"strings"
	"testing"

	"github.com/themobileprof/mindpage-be/internal/language"
	"github.com/themobileprof/mindpage-be/pkg/llm"
)

var tamil = language.LanguageInfo{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"}

func TestBuilder_WorkflowTemplates(t *testing.T) {
	builder := NewBuilder()

	tests := []struct {
		name      string
		operation Operation
		contains  []string
	}{
		{
			name:      "clean text",
			operation: OpCleanText,
			contains:  []string{"Return ONLY the cleaned text", "i has a apple"},
		},
		{
			name:      "detect emotion lists labels",
			operation: OpDetectEmotion,
			contains:  []string{"Stressed, Happy, Sad, Angry, Neutral", "EXACTLY ONE"},
		},
		{
			name:      "categorize lists labels",
			operation: OpCategorizeText,
			contains:  []string{"Work & Career, Family & Relationships, Health & Wellness, Finance & Money, Personal & General"},
		},
		{
			name:      "summarize uses display name",
			operation: OpSummarize,
			contains:  []string{"in Tamil"},
		},
		{
			name:      "translate uses display name",
			operation: OpTranslate,
			contains:  []string{"into Tamil", "Return ONLY the translated text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builder.Build(PromptRequest{
				Operation: tt.operation,
				Text:      "i has a apple",
				Language:  tamil,
			})

			if !strings.Contains(got, "i has a apple") {
				t.Errorf("prompt should include the input text:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("prompt should contain %q, got:\n%s", want, got)
				}
			}
		})
	}
}

func TestBuilder_PassthroughOperation(t *testing.T) {
	builder := NewBuilder()

	for _, op := range []Operation{"", "write_poem", "CLEAN_TEXT"} {
		got := builder.Build(PromptRequest{Operation: op, Text: "  raw text  ", Language: tamil})
		if got != "  raw text  " {
			t.Errorf("Build(%q) = %q, want raw text unchanged", op, got)
		}
	}
}

func TestBuilder_BookChat(t *testing.T) {
	builder := NewBuilder()

	got := builder.Build(PromptRequest{
		Operation: OpBookChat,
		Text:      "Who is the hero?",
		Language:  tamil,
		Context:   "Chapter 1. The hero is Arun.",
		History: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: "vanakkam"},
			{Role: llm.RoleAssistant, Content: "வணக்கம்!"},
		},
	})

	wants := []string{
		"Chapter 1. The hero is Arun.",
		"CONVERSATION SO FAR:\nUser: vanakkam\nAssistant: வணக்கம்!",
		"phonetically",
		"Reply in Tamil using its native script (தமிழ்)",
		NotFoundSentinel,
		"markdown link",
		"QUESTION:\nWho is the hero?",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("book chat prompt should contain %q, got:\n%s", want, got)
		}
	}
}

func TestBuilder_BookChatEmptyContentAndHistory(t *testing.T) {
	builder := NewBuilder()

	got := builder.Build(PromptRequest{
		Operation: OpBookChat,
		Text:      "Anything?",
		Language:  tamil,
		Context:   "   ",
	})

	if !strings.Contains(got, NoContentMarker) {
		t.Errorf("expected no-content marker, got:\n%s", got)
	}
	if strings.Contains(got, "CONVERSATION SO FAR") {
		t.Errorf("transcript section should be omitted for empty history, got:\n%s", got)
	}
}

func TestRenderTranscript(t *testing.T) {
	if got := RenderTranscript(nil); got != "" {
		t.Errorf("RenderTranscript(nil) = %q, want empty", got)
	}

	got := RenderTranscript([]llm.ChatMessage{
		{Role: llm.RoleUser, Content: "a"},
		{Role: llm.RoleAssistant, Content: "b"},
		{Role: llm.RoleUser, Content: "c"},
	})
	want := "User: a\nAssistant: b\nUser: c"
	if got != want {
		t.Errorf("RenderTranscript() = %q, want %q", got, want)
	}
}

func TestOperation_IsKnown(t *testing.T) {
	if !OpBookChat.IsKnown() || !OpTranslate.IsKnown() {
		t.Error("expected built-in operations to be known")
	}
	if Operation("write_poem").IsKnown() {
		t.Error("write_poem should not be known")
	}
}
