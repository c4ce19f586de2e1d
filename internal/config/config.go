// Package config loads the ChartSift configuration file.
//
// Configuration lives in a TOML file, by default ~/.chartsift/config.toml.
// A missing file is not an error: defaults apply and the data directories
// are bootstrapped on first use. An unreadable or malformed file IS an
// error, because silently ignoring a config the user wrote would process
// their documents with the wrong settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "local", "ollama" or "openai".
	Provider string `toml:"provider"`

	// Model is the provider-specific model name. Ignored by the
	// local provider.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint (ollama only).
	BaseURL string `toml:"base_url"`

	// Dimensions fixes the vector width of the store. All vectors
	// written to a store must match it.
	Dimensions int `toml:"dimensions"`

	// CacheSize bounds the in-memory embedding cache (entries).
	// Zero disables caching.
	CacheSize int `toml:"cache_size"`
}

// LLMConfig selects the optional entity-mining collaborator.
type LLMConfig struct {
	// Provider is one of "none", "ollama", "anthropic" or "openai".
	Provider string `toml:"provider"`

	// Model is the provider-specific model name.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint (ollama only).
	BaseURL string `toml:"base_url"`

	// RequestsPerMinute throttles collaborator calls. Zero means
	// no throttle.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// NotionConfig configures the optional workspace sync target.
// The integration token is read from the NOTION_TOKEN environment
// variable, never from this file.
type NotionConfig struct {
	// DatabaseID is the target database. Empty disables sync.
	DatabaseID string `toml:"database_id"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	// DebounceMS is how long a file must stay quiet after its last
	// write event before it is ingested.
	DebounceMS int `toml:"debounce_ms"`
}

// Config is the full ChartSift configuration.
type Config struct {
	// Inbox is the default directory scanned for new documents.
	Inbox string `toml:"inbox"`

	// DataDir holds all derived state: records, embeddings,
	// registry and catalog.
	DataDir string `toml:"data_dir"`

	// ErrorDir receives copies of files that failed processing.
	ErrorDir string `toml:"error_dir"`

	// Workers bounds the ingestion pool. Zero means one worker
	// per CPU.
	Workers int `toml:"workers"`

	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Notion    NotionConfig    `toml:"notion"`
	Watch     WatchConfig     `toml:"watch"`
}

// DefaultDir returns the ChartSift home directory, ~/.chartsift.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".chartsift"), nil
}

// Default returns the configuration used when no file exists,
// rooted at dir.
func Default(dir string) Config {
	return Config{
		Inbox:    filepath.Join(dir, "inbox"),
		DataDir:  filepath.Join(dir, "data"),
		ErrorDir: filepath.Join(dir, "errors"),
		Workers:  0,
		Embedding: EmbeddingConfig{
			Provider:   "local",
			Dimensions: 256,
			CacheSize:  1024,
		},
		LLM: LLMConfig{
			Provider: "none",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}

// Load reads the configuration file at path. If path is empty the
// default location inside DefaultDir is used. A missing file yields
// the defaults; any other read or parse failure is returned.
func Load(path string) (Config, error) {
	dir := ""
	if path == "" {
		d, err := DefaultDir()
		if err != nil {
			return Config{}, err
		}
		dir = d
		path = filepath.Join(d, "config.toml")
	} else {
		dir = filepath.Dir(path)
	}

	cfg := Default(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// EnsureDirs creates the inbox, data and error directories. Documents
// and derived state are private to the user, hence the restricted
// permissions.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.Inbox, c.DataDir, c.RecordsDir(), c.ErrorDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// RecordsDir is where normalised record artifacts are written.
func (c Config) RecordsDir() string {
	return filepath.Join(c.DataDir, "records")
}

// RegistryPath is the processed-file registry artifact.
func (c Config) RegistryPath() string {
	return filepath.Join(c.DataDir, "registry.json")
}

// EmbeddingsPath is the vector store artifact.
func (c Config) EmbeddingsPath() string {
	return filepath.Join(c.DataDir, "embeddings.json")
}

// CatalogPath is the SQLite document catalog.
func (c Config) CatalogPath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}
