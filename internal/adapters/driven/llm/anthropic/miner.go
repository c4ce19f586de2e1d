// Package anthropic provides an entity-mining adapter using the
// Anthropic API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Miner implements the interface.
var _ driven.EntityMiner = (*Miner)(nil)

// Default configuration values. Mining is a narrow extraction task,
// so the default model is the cheapest current one.
const (
	DefaultModel     = anthropic.ModelClaude3_5HaikuLatest
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

// Config holds configuration for the Anthropic miner.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// Model is the model to use (default: claude-3-5-haiku-latest).
	Model string

	// RequestsPerMinute throttles mining calls. Zero means no
	// throttle.
	RequestsPerMinute int
}

// Miner mines entities using the Anthropic API.
type Miner struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
}

// New creates a new Anthropic miner.
func New(cfg Config) (*Miner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
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
		client:  anthropic.NewClient(opts...),
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

	resp, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: DefaultMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserMessage(content, date, docType))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			text = b.Text
		}
	}
	return strings.TrimSpace(text), nil
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
	if _, err := m.client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1)}); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}
