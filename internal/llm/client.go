package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/scaffold"
	"github.com/cmap-scaffold/backend/pkg/circuitbreaker"
	"github.com/cmap-scaffold/backend/pkg/logger"
	"github.com/cmap-scaffold/backend/pkg/retry"
)

// Apology is returned verbatim when every attempt fails. Generation fails
// closed: callers always get text, never an error.
const Apology = "I apologize, but I'm experiencing technical difficulties. Please try again."

type Result struct {
	Text             string
	ModelUsed        string
	FallbackOccurred bool
}

// Generator is the text-generation boundary. Implementations must fail
// closed with apology text rather than propagating errors.
type Generator interface {
	Generate(ctx context.Context, prompt, systemMessage string) Result
}

type Client struct {
	client        *openai.Client
	primaryModel  string
	fallbackModel string
	temperature   float32
	maxTokens     int
	timeout       time.Duration
	cb            *circuitbreaker.CircuitBreaker
	retryConfig   retry.Config
}

func NewClient(apiKey, primaryModel, fallbackModel string, temperature float32, maxTokens, maxRetries, timeoutSec int) *Client {
	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    maxRetries,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized",
		zap.String("primary_model", primaryModel),
		zap.String("fallback_model", fallbackModel),
	)

	return &Client{
		client:        openai.NewClient(apiKey),
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
		temperature:   temperature,
		maxTokens:     maxTokens,
		timeout:       time.Duration(timeoutSec) * time.Second,
		cb:            cb,
		retryConfig:   retryConfig,
	}
}

// Generate runs one completion, switching to the fallback model once after
// the first failure and retrying up to the configured attempt count.
func (c *Client) Generate(ctx context.Context, prompt, systemMessage string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	model := c.primaryModel
	fallbackOccurred := false
	var text string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       model,
				Messages:    messages,
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			})
			if err != nil {
				if !fallbackOccurred && c.fallbackModel != "" && c.fallbackModel != model {
					logger.Warn("Primary model failed, switching to fallback",
						zap.String("primary_model", model),
						zap.String("fallback_model", c.fallbackModel),
						zap.Error(err),
					)
					model = c.fallbackModel
					fallbackOccurred = true
				}
				return fmt.Errorf("chat completion failed: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("chat completion returned no choices")
			}
			text = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		logger.Error("All generation attempts failed", zap.Error(err))
		return Result{Text: Apology, ModelUsed: "", FallbackOccurred: true}
	}

	return Result{Text: text, ModelUsed: model, FallbackOccurred: fallbackOccurred}
}

// Disabled is the Generator used when no API key is configured. It returns
// empty text so callers fall back to template output.
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) Generate(_ context.Context, _, _ string) Result {
	return Result{Text: "", ModelUsed: "disabled", FallbackOccurred: false}
}

// SystemMessageFor frames the model as a tutor working in one scaffolding
// register.
func SystemMessageFor(c scaffold.Category) string {
	base := "You are a supportive tutor helping a learner build a concept map. Keep responses under three sentences and never give the answer outright. "
	switch c {
	case scaffold.Strategic:
		return base + "Focus on planning: help the learner decide what to work on next and how to approach it."
	case scaffold.Metacognitive:
		return base + "Focus on reflection: help the learner assess their own understanding and monitor their progress."
	case scaffold.Procedural:
		return base + "Focus on mechanics: help the learner use the mapping tools, especially labeling links."
	case scaffold.Conceptual:
		return base + "Focus on content: help the learner identify missing concepts and relationships."
	default:
		return base
	}
}
