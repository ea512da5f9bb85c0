// Package cli provides the lexbrief command line interface.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexbrief/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexbrief/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexbrief/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexbrief/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
	"github.com/custodia-labs/lexbrief/internal/core/services"
	"github.com/custodia-labs/lexbrief/internal/extractors"
	"github.com/custodia-labs/lexbrief/internal/logger"
	"github.com/custodia-labs/lexbrief/internal/postprocessors"
)

// Command annotations that limit what setupServices builds.
const (
	annotationSettingsOnly = "lexbrief/settings-only"
	annotationNoServices   = "lexbrief/no-services"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var (
	verbose   bool
	configDir string
	noConfig  bool
	sessionID string
)

// Services used by the commands. They are built on first use and may be
// replaced before Execute for testing.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	sessionService   driving.SessionService

	// appSettings is the settings snapshot the services were built from.
	appSettings *domain.AppSettings

	// servicesReady is true once the services above are wired.
	servicesReady bool

	// closers release what wiring acquired, in reverse order.
	closers []func()
)

var rootCmd = &cobra.Command{
	Use:   "lexbrief",
	Short: "Cited answers from legal documents",
	Long: `lexbrief answers questions about PDF, DOCX, HTML and text documents.

Documents are split into overlapping page-labelled chunks and embedded into
an in-memory session. Questions retrieve the closest chunks by cosine
similarity and an LLM composes a short answer citing the printed page numbers.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.lexbrief)")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"use defaults and environment variables only, reading and writing no files")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "cli", "session ID documents are stored under")
}

// Execute runs the root command with ctx and releases the services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// setupServices wires the service graph from the stored settings.
func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if servicesReady || !needsServices(cmd) {
		return nil
	}

	if settingsService == nil {
		configStore, err := openConfigStore()
		if err != nil {
			return err
		}
		settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())
	}
	if cmd.Annotations[annotationSettingsOnly] != "" {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w. Run 'lexbrief settings show' to check the configuration", err)
	}

	if err := wireServices(settings); err != nil {
		closeServices()
		return err
	}
	servicesReady = true
	return nil
}

// openConfigStore returns the TOML store under --config, or an empty
// in-memory store with --no-config.
func openConfigStore() (driven.ConfigStore, error) {
	if noConfig {
		if configDir != "" {
			return nil, fmt.Errorf("%w: --config and --no-config cannot be combined", domain.ErrInvalidConfiguration)
		}
		logger.Debug("config: defaults and environment only")
		return memory.NewConfigStore(), nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return store, nil
}

// wireServices builds storage, the AI adapters and the core services.
func wireServices(settings *domain.AppSettings) error {
	defer logger.Timed("wire services")()

	aiServices, err := ai.Initialise(settings)
	if err != nil {
		return err
	}
	closers = append(closers, aiServices.Close)

	store, err := openSessionStore(settings.Storage.Backend)
	if err != nil {
		return err
	}
	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing session store: %v", err)
		}
	})

	pipeline, err := postprocessors.NewPipelineFromSettings(settings.Chunking)
	if err != nil {
		return err
	}

	retrieval := services.NewRetrievalService(store, aiServices.EmbeddingService)
	answer := services.NewAnswerService(retrieval, aiServices.LLMService,
		services.WithTopK(settings.Retrieval.TopK),
		services.WithMaxPassageChars(settings.Retrieval.MaxPassageChars),
		services.WithTemperature(settings.LLM.Temperature),
	)

	if !noConfig {
		promptDir := ""
		if configDir != "" {
			promptDir = filepath.Join(configDir, file.PromptsDirName)
		}
		prompts, err := file.NewPromptStore(promptDir)
		if err != nil {
			logger.Warn("prompt store unavailable, using built-in prompts: %v", err)
		} else {
			answer.SetPromptStore(prompts)
		}
	}

	ingestService = services.NewIngestService(pipeline, aiServices.EmbeddingService, store,
		extractors.NewDefaultRegistry(),
		services.WithBatchSize(settings.Embedding.BatchSize),
	)
	retrievalService = retrieval
	answerService = answer
	sessionService = services.NewSessionService(store)
	appSettings = settings

	logger.Debug("storage=%s chunk=%d/%d top_k=%d", settings.Storage.Backend,
		settings.Chunking.Size, settings.Chunking.Overlap, settings.Retrieval.TopK)
	return nil
}

// needsServices reports whether cmd runs against the service graph.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return cmd.Annotations[annotationNoServices] == ""
}

func openSessionStore(backend domain.StorageBackend) (driven.SessionStore, error) {
	switch backend {
	case domain.StorageBackendSQLite:
		store, err := sqlite.NewSessionStore()
		if err != nil {
			return nil, fmt.Errorf("opening sqlite session store: %w", err)
		}
		return store, nil
	case domain.StorageBackendMemory, "":
		return memory.NewSessionRegistry(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfiguration, backend)
	}
}

// closeServices runs the registered closers in reverse order.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// currentSettings returns the settings the services were built from.
func currentSettings() domain.AppSettings {
	if appSettings != nil {
		return *appSettings
	}
	return domain.DefaultAppSettings()
}
