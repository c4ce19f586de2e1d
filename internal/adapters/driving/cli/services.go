package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chartsift/chartsift/internal/adapters/driven/ai"
	storejson "github.com/chartsift/chartsift/internal/adapters/driven/storage/jsonfile"
	"github.com/chartsift/chartsift/internal/adapters/driven/storage/sqlite"
	"github.com/chartsift/chartsift/internal/adapters/driven/sync/notion"
	vectorjson "github.com/chartsift/chartsift/internal/adapters/driven/vectorstore/jsonfile"
	"github.com/chartsift/chartsift/internal/config"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/core/ports/driving"
	"github.com/chartsift/chartsift/internal/core/services"
	"github.com/chartsift/chartsift/internal/extractors"
	"github.com/chartsift/chartsift/internal/logger"
	"github.com/chartsift/chartsift/internal/normaliser"
)

// notionTokenEnv names the environment variable holding the Notion
// integration token. The token never lives in the config file.
const notionTokenEnv = "NOTION_TOKEN"

// Services backing the commands. initServices wires them at startup;
// command handlers nil-check before use.
var (
	appConfig     config.Config
	ingestService driving.Ingestor
	searchService driving.Searcher
	syncService   driving.WorkspaceSyncer
	catalogStore  driven.Catalog
	runLogStore   driven.RunLog

	sqliteStore *sqlite.Store
)

// initServices loads the configuration and builds every adapter and
// service behind the package-level variables. version and help run
// without any of that.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Name() {
	case "version", "help":
		return nil
	}

	// Provider API keys may live in a .env beside the invocation.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	appConfig = cfg

	artifacts, err := storejson.NewArtifactStore(cfg.RecordsDir())
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	registry, err := storejson.NewRegistryStore(cfg.RegistryPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	vectors, err := vectorjson.New(cfg.EmbeddingsPath(), cfg.Embedding.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	store, err := sqlite.NewStore(cfg.CatalogPath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	sqliteStore = store

	embedder, err := ai.NewEmbedder(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to configure embedder: %w", err)
	}
	miner, err := ai.NewMiner(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to configure entity miner: %w", err)
	}

	// Surface unreachable providers before any files are touched.
	// Commands that never embed skip the ping.
	switch cmd.Name() {
	case "ingest", "watch", "search":
		if err := ai.ValidateEmbedder(embedder); err != nil {
			return err
		}
		if err := ai.ValidateMiner(miner); err != nil {
			return err
		}
	}

	norm, err := normaliser.New()
	if err != nil {
		return fmt.Errorf("failed to load normalisation tables: %w", err)
	}

	workspace, err := newWorkspace(cfg)
	if err != nil {
		return err
	}

	ingestService = services.NewIngestService(
		extractors.Defaults(), norm, embedder, miner,
		vectors, artifacts, registry, store, store,
		cfg.ErrorDir, cfg.Workers,
	)
	searchService = services.NewSearchService(embedder, vectors, store)
	syncService = services.NewSyncService(artifacts, workspace)
	catalogStore = store
	runLogStore = store
	return nil
}

// newWorkspace builds the Notion sync target when both the database id
// and the token are present. A nil workspace is valid: the sync
// service reports sync as unavailable.
func newWorkspace(cfg config.Config) (driven.WorkspaceSync, error) {
	if cfg.Notion.DatabaseID == "" {
		return nil, nil
	}
	token := os.Getenv(notionTokenEnv)
	if token == "" {
		logger.Warn("notion.database_id is set but %s is empty; sync disabled", notionTokenEnv)
		return nil, nil
	}
	ws, err := notion.New(notion.Config{Token: token, DatabaseID: cfg.Notion.DatabaseID})
	if err != nil {
		return nil, fmt.Errorf("failed to configure workspace sync: %w", err)
	}
	return ws, nil
}

func closeServices() {
	if sqliteStore != nil {
		_ = sqliteStore.Close()
		sqliteStore = nil
	}
}
