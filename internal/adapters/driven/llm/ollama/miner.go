// Package ollama provides an entity-mining adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Miner implements the interface.
var _ driven.EntityMiner = (*Miner)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// maxContentChars bounds how much document text goes into the prompt.
// Local models have small context windows and entity density drops
// off sharply after the opening sections of a medical document.
const maxContentChars = 12000

// miningPrompt asks for the JSON shape the normaliser parses. The
// model may still answer loosely: fences, prose, bare arrays. That
// tolerance lives downstream, not here.
const miningPrompt = `You are reviewing one medical document. List the clinical entities it mentions.

Respond with ONLY a JSON object, no prose, in this shape:
{"conditions": [], "medications": [], "symptoms": []}

Rules:
- conditions: diagnosed or suspected conditions of the patient, not family history
- medications: drug names only, without dose or frequency
- symptoms: complaints the patient reports
- Use [] for any category the document does not mention.

Document type: %s
Document date: %s

Document:
%s`

// Config holds configuration for the Ollama miner.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute throttles mining calls. Zero means no
	// throttle.
	RequestsPerMinute int
}

// Miner mines entities using Ollama.
type Miner struct {
	client  *http.Client
	baseURL string
	model   string
	limiter *rate.Limiter
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates a new Ollama miner.
func New(cfg Config) *Miner {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Miner{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		limiter: limiter,
	}
}

// MineEntities requests entity extraction for one document and
// returns the model's raw text response.
func (m *Miner) MineEntities(ctx context.Context, content, date, docType string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	reqBody := generateRequest{
		Model:  m.model,
		Prompt: buildPrompt(content, date, docType),
		Stream: false,
		Options: &options{
			NumPredict:  1024,
			Temperature: 0.1,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// buildPrompt fills the mining template. Unknown metadata reads
// better to the model than empty placeholders.
func buildPrompt(content, date, docType string) string {
	if date == "" {
		date = "unknown"
	}
	if docType == "" {
		docType = "unknown"
	}
	if len(content) > maxContentChars {
		cut := maxContentChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return fmt.Sprintf(miningPrompt, docType, date, content)
}

// ModelName returns the name of the model being used.
func (m *Miner) ModelName() string {
	return m.model
}

// Ping validates the service is reachable by checking the /api/tags
// endpoint. This validates connectivity without running inference.
func (m *Miner) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
