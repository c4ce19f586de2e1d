// Package ai provides factory functions for creating embedding and
// entity-mining adapters from configuration.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chartsift/chartsift/internal/adapters/driven/embedding/cache"
	"github.com/chartsift/chartsift/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/chartsift/chartsift/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/chartsift/chartsift/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/chartsift/chartsift/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/chartsift/chartsift/internal/adapters/driven/llm/ollama"
	openaillm "github.com/chartsift/chartsift/internal/adapters/driven/llm/openai"
	"github.com/chartsift/chartsift/internal/config"
	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity
// validation.
const pingTimeout = 5 * time.Second

// API key environment variables. Keys never live in the config file.
const (
	openaiKeyEnv    = "OPENAI_API_KEY"
	anthropicKeyEnv = "ANTHROPIC_API_KEY"
)

// NewEmbedder creates the configured embedding provider, wrapped in
// the content-hash LRU when caching is enabled.
func NewEmbedder(cfg config.EmbeddingConfig) (driven.Embedder, error) {
	base, err := newBaseEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.CacheSize > 0 {
		cached, err := cache.New(base, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return base, nil
}

func newBaseEmbedder(cfg config.EmbeddingConfig) (driven.Embedder, error) {
	switch cfg.Provider {
	case "", "local":
		return local.New(local.Config{Dimensions: cfg.Dimensions}), nil

	case "ollama":
		return ollamaembed.New(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil

	case "openai":
		embedder, err := openaiembed.New(openaiembed.Config{
			APIKey:     os.Getenv(openaiKeyEnv),
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v (set %s)", domain.ErrEmbedderUnavailable, err, openaiKeyEnv)
		}
		return embedder, nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrEmbedderUnavailable, cfg.Provider)
	}
}

// NewMiner creates the configured entity miner. Provider "none" (the
// default) yields a nil miner: ingestion then relies on rule-based
// extraction alone.
func NewMiner(cfg config.LLMConfig) (driven.EntityMiner, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil

	case "ollama":
		return ollamallm.New(ollamallm.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}), nil

	case "anthropic":
		miner, err := anthropicllm.New(anthropicllm.Config{
			APIKey:            os.Getenv(anthropicKeyEnv),
			Model:             cfg.Model,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v (set %s)", domain.ErrLLMUnavailable, err, anthropicKeyEnv)
		}
		return miner, nil

	case "openai":
		miner, err := openaillm.New(openaillm.Config{
			APIKey:            os.Getenv(openaiKeyEnv),
			Model:             cfg.Model,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v (set %s)", domain.ErrLLMUnavailable, err, openaiKeyEnv)
		}
		return miner, nil

	default:
		return nil, fmt.Errorf("%w: unsupported llm provider %q",
			domain.ErrLLMUnavailable, cfg.Provider)
	}
}

// ValidateEmbedder pings the embedder with a bounded timeout. Run
// this before committing to a long ingestion, not per document.
func ValidateEmbedder(embedder driven.Embedder) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %v",
			domain.ErrEmbedderUnavailable, embedder.ModelName(), err)
	}
	return nil
}

// ValidateMiner pings the miner with a bounded timeout. A nil miner
// is valid: mining is optional.
func ValidateMiner(miner driven.EntityMiner) error {
	if miner == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := miner.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %v",
			domain.ErrLLMUnavailable, miner.ModelName(), err)
	}
	return nil
}
