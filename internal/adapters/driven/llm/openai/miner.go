// Package openai provides an entity-mining adapter using the OpenAI
// API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Miner implements the interface.
var _ driven.EntityMiner = (*Miner)(nil)

// Default configuration values. Mining is a narrow extraction task,
// so the default model is the cheapest current one.
const (
	DefaultModel     = openai.ChatModelGPT4oMini
	DefaultMaxTokens = 1024
)

// systemPrompt fixes the extraction role and output shape. The model
// may still answer loosely; tolerating that is the normaliser's job.
const systemPrompt = `You extract clinical entities from medical documents.

Respond with ONLY a JSON object, no prose, in this shape:
{"conditions": [], "medications": [], "symptoms": []}

Rules:
- conditions: diagnosed or suspected conditions of the patient, not family history
- medications: drug names only, without dose or frequency
- symptoms: complaints the patient reports
- Use [] for any category the document does not mention.`

// Config holds configuration for the OpenAI miner.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL. Useful for Azure OpenAI or
	// compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// RequestsPerMinute throttles mining calls. Zero means no
	// throttle.
	RequestsPerMinute int
}

// Miner mines entities using the OpenAI API.
type Miner struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

// New creates a new OpenAI miner.
func New(cfg Config) (*Miner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(DefaultModel)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Miner{
		client:  openai.NewClient(opts...),
		model:   model,
		limiter: limiter,
	}, nil
}

// MineEntities requests entity extraction for one document and
// returns the model's raw text response.
func (m *Miner) MineEntities(ctx context.Context, content, date, docType string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(m.model),
		MaxTokens: openai.Int(DefaultMaxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserMessage(content, date, docType)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildUserMessage(content, date, docType string) string {
	if date == "" {
		date = "unknown"
	}
	if docType == "" {
		docType = "unknown"
	}
	return fmt.Sprintf("Document type: %s\nDocument date: %s\n\nDocument:\n%s", docType, date, content)
}

// ModelName returns the name of the model being used.
func (m *Miner) ModelName() string {
	return m.model
}

// Ping validates the API key by listing models. This is a lightweight
// check that runs no inference.
func (m *Miner) Ping(ctx context.Context) error {
	if _, err := m.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}
