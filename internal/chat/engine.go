package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/themobileprof/mindpage-be/internal/classifier"
	"github.com/themobileprof/mindpage-be/internal/completion"
	"github.com/themobileprof/mindpage-be/internal/language"
	"github.com/themobileprof/mindpage-be/internal/logger"
	"github.com/themobileprof/mindpage-be/internal/privacy"
	"github.com/themobileprof/mindpage-be/internal/prompt"
	"github.com/themobileprof/mindpage-be/pkg/llm"
)

// Response types reported to callers
const (
	TypeWorkflow    = "workflow"
	TypeBookChatbot = "book_chatbot"
)

var (
	ErrTextRequired     = errors.New("Text is required")
	ErrStepTypeRequired = errors.New("stepType is required")
)

// Request is one inbound relay request
type Request struct {
	Text      string
	Language  string
	History   []llm.ChatMessage
	Operation prompt.Operation // empty means book chat
}

// Response is the processed completion
type Response struct {
	Text      string
	Model     string
	Operation prompt.Operation
	Language  string
	Type      string
	Retries   int
}

// Interfaces for dependencies
type LanguageInterface interface {
	Validate(input string) language.ValidationResult
	Info(code string) language.LanguageInfo
}

type PromptInterface interface {
	Build(req prompt.PromptRequest) string
}

type CompletionInterface interface {
	Complete(ctx context.Context, prompt string, history []llm.ChatMessage) (completion.Result, error)
}

type BookInterface interface {
	Content(code string) string
}

// Engine handles relay logic independent of transport
type Engine struct {
	langManager   LanguageInterface
	promptBuilder PromptInterface
	completer     CompletionInterface
	books         BookInterface
}

// NewEngine creates a new transport-agnostic engine
func NewEngine(lm LanguageInterface, pb PromptInterface, c CompletionInterface, books BookInterface) *Engine {
	return &Engine{
		langManager:   lm,
		promptBuilder: pb,
		completer:     c,
		books:         books,
	}
}

// Process validates req, builds the prompt, requests a completion and
// normalizes classification replies.
func (e *Engine) Process(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Response{}, ErrTextRequired
	}

	op := req.Operation
	if op == "" {
		op = prompt.OpBookChat
	}

	validation := e.langManager.Validate(req.Language)
	lang := e.langManager.Info(validation.Code)
	history := normalizeHistory(req.History)

	log := logger.FromContext(ctx).With(
		zap.String("operation", string(op)),
		zap.String("language", lang.Code),
	)
	if validation.UsedFallback && strings.TrimSpace(req.Language) != "" {
		log.Debug("unsupported language, using default", zap.String("requested", req.Language))
	}
	if !op.IsKnown() {
		log.Debug("no template for operation, sending text as is")
	}
	if privacy.ContainsPII(req.Text) {
		log.Warn("request text contains PII")
	}
	log.Info("processing request",
		zap.Int("text_length", len(req.Text)),
		zap.Int("history", len(history)),
		zap.String("text", privacy.SanitizeForLogging(req.Text)),
	)

	promptReq := prompt.PromptRequest{
		Operation: op,
		Text:      req.Text,
		Language:  lang,
		History:   history,
	}
	if op == prompt.OpBookChat && e.books != nil {
		promptReq.Context = e.books.Content(lang.Code)
	}

	result, err := e.completer.Complete(ctx, e.promptBuilder.Build(promptReq), history)
	if err != nil {
		log.Error("completion failed", zap.Error(err))
		return Response{}, err
	}

	resp := Response{
		Text:      normalizeOutput(op, result.Text),
		Model:     result.Model,
		Operation: op,
		Language:  lang.Code,
		Type:      TypeWorkflow,
		Retries:   result.Retries,
	}
	if op == prompt.OpBookChat {
		resp.Type = TypeBookChatbot
	}

	log.Info("request processed", zap.Int("retries", result.Retries))
	return resp, nil
}

func normalizeOutput(op prompt.Operation, text string) string {
	switch op {
	case prompt.OpDetectEmotion:
		return string(classifier.NormalizeEmotion(text))
	case prompt.OpCategorizeText:
		return string(classifier.NormalizeCategory(text))
	default:
		return text
	}
}

// normalizeHistory maps every role other than assistant to user
func normalizeHistory(history []llm.ChatMessage) []llm.ChatMessage {
	if len(history) == 0 {
		return nil
	}

	out := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.ChatMessage{Role: role, Content: msg.Content})
	}
	return out
}
