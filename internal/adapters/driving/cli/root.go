// Package cli implements the curio command line interface. Commands
// talk to the core services through the driving ports; all wiring of
// concrete adapters happens here, driven by the config store.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curio/internal/adapters/driven/config/file"
	embollama "github.com/custodia-labs/curio/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/curio/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/curio/internal/adapters/driven/lexical"
	llmollama "github.com/custodia-labs/curio/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/curio/internal/adapters/driven/llm/openai"
	rerankcohere "github.com/custodia-labs/curio/internal/adapters/driven/rerank/cohere"
	"github.com/custodia-labs/curio/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/curio/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/curio/internal/connectors/confluence"
	"github.com/custodia-labs/curio/internal/connectors/jira"
	"github.com/custodia-labs/curio/internal/connectors/stackexchange"
	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
	"github.com/custodia-labs/curio/internal/core/ports/driving"
	"github.com/custodia-labs/curio/internal/core/services"
	"github.com/custodia-labs/curio/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services wired by initServices. Tests preset these to mocks.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	fetchers        map[domain.SourceType]driven.Fetcher
	closers         []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "Knowledge ingestion and hybrid retrieval",
	Long: `Curio indexes tickets, wiki pages, Q&A threads and files into
per-source collections and answers natural-language queries with fused
semantic and keyword retrieval.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		for _, c := range closers {
			c.Close() //nolint:errcheck
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.curio)")
}

// initServices wires concrete adapters into the core services. A test
// that presets queryService skips wiring entirely.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if queryService != nil {
		return nil
	}

	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Debug("Config loaded from %s", cfg.Path())

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, embedder)
	if err := embedder.Ping(cmd.Context()); err != nil {
		logger.Warn("Embedding service unreachable: %v", err)
	}

	llm := buildLLM(cfg)
	if llm != nil {
		closers = append(closers, llm)
		if err := llm.Ping(cmd.Context()); err != nil {
			logger.Warn("LLM service unreachable: %v", err)
		}
	}
	reranker, err := buildReranker(cfg)
	if err != nil {
		return err
	}

	ingestService = services.NewIngestService(store, embedder)
	documentService = services.NewDocumentService(store)
	queryService = buildQueryService(cfg, store, embedder, reranker, llm)

	fetchers = buildFetchers(cfg)
	return nil
}

// buildQueryService assembles the retrieval pipeline registry. The
// llm.require_augmentation key makes a missing LLM a build failure
// instead of a per-query warning.
func buildQueryService(cfg driven.ConfigStore, store driven.VectorStore, embedder driven.EmbeddingService, reranker driven.Reranker, llm driven.LLMService) driving.QueryService {
	return services.NewRegistry(services.PipelineDeps{
		Store:    store,
		Embedder: embedder,
		Reranker: reranker,
		LLM:      llm,
		BuildIndex: func(corpus []string) driven.LexicalIndex {
			return lexical.New(corpus)
		},
		RequireAugmentation: cfg.GetBool("llm.require_augmentation"),
	})
}

// buildStore selects the vector store backend from config. The
// persistent sqlite backend is the default.
func buildStore(cfg driven.ConfigStore) (driven.VectorStore, error) {
	kind := driven.BackendKind(cfg.GetString("store.kind"))
	switch kind {
	case driven.BackendMemory:
		return memory.NewStore(), nil
	case driven.BackendSQLite, "":
		dataDir := cfg.GetString("store.path")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dataDir = filepath.Join(home, ".curio", "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		closers = append(closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// buildEmbedder selects the embedding provider from config. Ollama is
// the default so a fresh install works without API keys.
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString("embedding.provider"); provider {
	case "openai":
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:     cfg.GetString("embedding.api_key"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	case "ollama", "":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildLLM selects the optional LLM provider. Nil means augmentation
// degrades to a per-query warning.
func buildLLM(cfg driven.ConfigStore) driven.LLMService {
	switch cfg.GetString("llm.provider") {
	case "openai":
		llm, err := llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.GetString("llm.api_key"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			logger.Warn("LLM unavailable, augmentation disabled: %v", err)
			return nil
		}
		return llm
	case "ollama":
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	default:
		return nil
	}
}

// buildReranker wires the optional Cohere reranker when a key is set.
func buildReranker(cfg driven.ConfigStore) (driven.Reranker, error) {
	apiKey := cfg.GetString("reranker.api_key")
	if apiKey == "" {
		return nil, nil
	}
	return rerankcohere.NewReranker(rerankcohere.Config{
		APIKey:  apiKey,
		Model:   cfg.GetString("reranker.model"),
		BaseURL: cfg.GetString("reranker.base_url"),
	})
}

// buildFetchers wires the external source fetchers that have
// credentials configured. Missing credentials just mean the
// corresponding --from lookups are unavailable.
func buildFetchers(cfg driven.ConfigStore) map[domain.SourceType]driven.Fetcher {
	result := make(map[domain.SourceType]driven.Fetcher)

	if jiraFetcher, err := jira.NewFetcher(jira.Config{
		BaseURL:  cfg.GetString("jira.base_url"),
		Email:    cfg.GetString("jira.email"),
		APIToken: cfg.GetString("jira.api_token"),
	}); err == nil {
		result[domain.SourceTicket] = jiraFetcher
	}

	if confluenceFetcher, err := confluence.NewFetcher(confluence.Config{
		BaseURL:  cfg.GetString("confluence.base_url"),
		Email:    cfg.GetString("confluence.email"),
		APIToken: cfg.GetString("confluence.api_token"),
	}); err == nil {
		result[domain.SourceWiki] = confluenceFetcher
	}

	result[domain.SourceQA] = stackexchange.NewFetcher(stackexchange.Config{
		Site: cfg.GetString("stackexchange.site"),
		Key:  cfg.GetString("stackexchange.key"),
	})

	return result
}
