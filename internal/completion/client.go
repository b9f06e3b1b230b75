package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/themobileprof/mindpage-be/internal/fallback"
	"github.com/themobileprof/mindpage-be/internal/logger"
	"github.com/themobileprof/mindpage-be/internal/privacy"
	"github.com/themobileprof/mindpage-be/pkg/llm"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
	DefaultMaxDelay   = 30 * time.Second
)

var errNoResponse = errors.New(fallback.GetNoResponse().Content)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds configuration for the completion client
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int

	MaxRetries int           // Default: 3
	BaseDelay  time.Duration // Default: 2s
	MaxDelay   time.Duration // Default: 30s

	// Sleep is replaced in tests
	Sleep SleepFunc
}

// Result is a successful completion
type Result struct {
	Text    string
	Model   string
	Retries int
}

// Client sends prompts upstream and retries rate-limited failures
type Client struct {
	llm         llm.Client
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleep       SleepFunc
}

// NewClient wraps an llm.Client
func NewClient(client llm.Client, config Config) *Client {
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultBaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultMaxDelay
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}

	return &Client{
		llm:         client,
		model:       config.Model,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		maxRetries:  config.MaxRetries,
		baseDelay:   config.BaseDelay,
		maxDelay:    config.MaxDelay,
		sleep:       config.Sleep,
	}
}

// Model returns the model identifier sent upstream
func (c *Client) Model() string {
	return c.model
}

// Complete sends history plus a new user turn holding prompt. Rate-limited
// failures are retried with exponential backoff; everything else fails on
// first occurrence. Errors are always *Error.
func (c *Client) Complete(ctx context.Context, prompt string, history []llm.ChatMessage) (Result, error) {
	messages := make([]llm.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: prompt})

	req := llm.ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	}

	log := logger.FromContext(ctx).With(zap.String("model", c.model))
	schedule := c.newSchedule()

	for retries := 0; ; retries++ {
		log.Info("calling completion API",
			zap.Int("attempt", retries+1),
			zap.Int("messages", len(messages)),
		)

		text, err := c.attempt(ctx, req)
		if err == nil {
			log.Info("completion received",
				zap.Int("retries", retries),
				zap.Int("bytes", len(text)),
			)
			return Result{Text: text, Model: c.model, Retries: retries}, nil
		}

		cls := Classify(Describe(err))
		log.Warn("completion attempt failed",
			zap.Int("attempt", retries+1),
			zap.Int("status", cls.StatusCode),
			zap.String("kind", string(cls.Kind)),
			zap.String("error", privacy.SanitizeForLogging(cls.Message)),
		)

		if !cls.RateLimited || retries >= c.maxRetries {
			return Result{}, c.terminalError(log, cls, retries, err)
		}

		delay := schedule.NextBackOff()
		log.Info("rate limited, backing off",
			zap.Duration("delay", delay),
			zap.Int("retry", retries+1),
			zap.Int("max_retries", c.maxRetries),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return Result{}, newError(err.Error(), http.StatusInternalServerError, KindUnknown, retries, err)
		}
	}
}

// attempt performs one upstream call and extracts the first choice text
func (c *Client) attempt(ctx context.Context, req llm.ChatRequest) (string, error) {
	resp, err := c.llm.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errNoResponse
	}

	text, present := resp.Choices[0].Message.Content.Text()
	text = strings.TrimSpace(text)
	if !present || text == "" {
		return "", errNoResponse
	}

	return text, nil
}

func (c *Client) terminalError(log *zap.Logger, cls Classification, retries int, cause error) *Error {
	status := cls.StatusCode
	var message string

	switch cls.Kind {
	case KindRateLimited:
		message = fallback.GetRateLimitedResponse(retries).Content
		if !cls.StatusFound {
			status = http.StatusTooManyRequests
		}
	case KindAuth:
		message = fallback.GetAuthResponse().Content
	case KindProvider:
		message = fallback.GetProviderResponse().Content
	default:
		message = cls.Message
	}

	log.Error("completion failed",
		zap.String("kind", string(cls.Kind)),
		zap.Int("status", status),
		zap.Int("retries", retries),
	)

	return newError(message, status, cls.Kind, retries, cause)
}

// newSchedule yields min(base * 2^n, max) for n = 0, 1, 2, ...
func (c *Client) newSchedule() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = 2
	b.MaxInterval = c.maxDelay
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
