package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/mindpage-be/internal/chat"
	"github.com/themobileprof/mindpage-be/internal/completion"
	"github.com/themobileprof/mindpage-be/internal/language"
	"github.com/themobileprof/mindpage-be/internal/logger"
	"github.com/themobileprof/mindpage-be/internal/privacy"
	"github.com/themobileprof/mindpage-be/internal/prompt"
	"github.com/themobileprof/mindpage-be/pkg/llm"
)

const maxStackLines = 10

// Processor runs a relay request
type Processor interface {
	Process(ctx context.Context, req chat.Request) (chat.Response, error)
}

// LanguageLister lists supported languages
type LanguageLister interface {
	GetSupportedLanguages() []language.LanguageInfo
}

type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type relayRequest struct {
	Text     string         `json:"text"`
	Language string         `json:"language"`
	History  []historyEntry `json:"history"`
	StepType string         `json:"stepType"`
}

// ChatHandler serves the relay endpoints
type ChatHandler struct {
	engine     Processor
	languages  LanguageLister
	production bool
}

func NewChatHandler(engine Processor, languages LanguageLister, production bool) *ChatHandler {
	return &ChatHandler{
		engine:     engine,
		languages:  languages,
		production: production,
	}
}

func (h *ChatHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/languages", h.Languages)
	r.POST("/chat", h.Chat)
	r.POST("/workflow", h.Workflow)
}

func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Server is running",
	})
}

func (h *ChatHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"languages": h.languages.GetSupportedLanguages(),
	})
}

// Chat runs book chat unless stepType names a workflow operation
func (h *ChatHandler) Chat(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	h.process(c, req, prompt.Operation(strings.TrimSpace(req.StepType)))
}

// Workflow requires an explicit stepType
func (h *ChatHandler) Workflow(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.fail(c, chat.ErrTextRequired)
		return
	}
	stepType := strings.TrimSpace(req.StepType)
	if stepType == "" {
		h.fail(c, chat.ErrStepTypeRequired)
		return
	}
	h.process(c, req, prompt.Operation(stepType))
}

func (h *ChatHandler) bind(c *gin.Context) (relayRequest, bool) {
	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"success": false,
		})
		return req, false
	}
	return req, true
}

func (h *ChatHandler) process(c *gin.Context, req relayRequest, op prompt.Operation) {
	history := make([]llm.ChatMessage, 0, len(req.History))
	for _, entry := range req.History {
		history = append(history, llm.ChatMessage{Role: entry.Role, Content: entry.Content})
	}

	// Retries keep going if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())

	resp, err := h.engine.Process(ctx, chat.Request{
		Text:      req.Text,
		Language:  req.Language,
		History:   history,
		Operation: op,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if resp.Type == chat.TypeBookChatbot {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"answer":   resp.Text,
			"model":    resp.Model,
			"language": resp.Language,
			"type":     resp.Type,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"response": resp.Text,
		"model":    resp.Model,
		"stepType": string(resp.Operation),
		"language": resp.Language,
		"type":     resp.Type,
	})
}

func (h *ChatHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, chat.ErrTextRequired) || errors.Is(err, chat.ErrStepTypeRequired) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   err.Error(),
			"success": false,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	body := gin.H{}

	var cerr *completion.Error
	if errors.As(err, &cerr) {
		status = cerr.StatusCode
		message = cerr.Message
		if !h.production {
			if cerr.Cause != nil {
				body["originalError"] = privacy.RedactSecrets(cerr.Cause.Error())
			}
			body["stack"] = truncateStack(cerr.Stack(), maxStackLines)
		}
	} else if !h.production {
		body["originalError"] = privacy.RedactSecrets(err.Error())
	}

	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	body["error"] = message
	body["statusCode"] = status

	logger.FromContext(c.Request.Context()).Error("request failed",
		zap.Int("status", status),
		zap.String("error", message),
	)

	c.JSON(status, body)
}

func truncateStack(stack string, n int) string {
	lines := strings.Split(strings.TrimRight(stack, "\n"), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
