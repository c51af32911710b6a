package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/rag-gateway/internal/api"
	chatapi "github.com/futig/rag-gateway/internal/api/chat"
	managementapi "github.com/futig/rag-gateway/internal/api/management"
	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/integration/common"
	"github.com/futig/rag-gateway/internal/integration/index"
	"github.com/futig/rag-gateway/internal/integration/llm"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/futig/rag-gateway/internal/storage"
	chatuc "github.com/futig/rag-gateway/internal/usecase/chat"
	"github.com/futig/rag-gateway/internal/usecase/files"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// llmConnector is the full surface the application needs from the LLM
// integration: chat generation plus embeddings for indexing.
type llmConnector interface {
	chatuc.LLMClient
	index.Embedder
}

// indexProvider is the full surface of the retrieval index: lifecycle
// for the file controller, queries for the chat engines.
type indexProvider interface {
	files.Indexer
	chatuc.IndexProvider
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup file storage backend
	store, err := setupStorage(ctx, cfg.StorageCfg)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	logger.Info("Storage backend initialized", zap.String("backend", cfg.StorageCfg.Backend))

	// Initialize external service connectors (with mock support)
	var llmConn llmConnector
	var indexProv indexProvider

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		llmConn = llm.NewMockConnector(logger)
		indexProv = index.NewMockProvider(logger)
	} else {
		logger.Info("Using real connectors for external services")
		llmConn = llm.NewConnector(cfg.OpenAICfg, logger)

		provider, err := index.NewProvider(ctx, cfg.WeaviateCfg, cfg.RetrievalCfg, store, llmConn, logger)
		if err != nil {
			return nil, fmt.Errorf("setup index provider: %w", err)
		}
		indexProv = provider
	}

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Downloader for upload-by-URL and the url_reader tool
	downloader := common.NewBaseConnector(cfg.DownloadCfg.HTTPClientConfig, logger)

	// Initialize use cases
	tools, err := chatuc.NewToolsFromConfig(cfg.Tools, downloader)
	if err != nil {
		return nil, fmt.Errorf("setup tools: %w", err)
	}

	engineFactory := chatuc.NewEngineFactory(llmConn, indexProv, tools, cfg.RetrievalCfg, cfg.EngineCacheTTL, logger)

	chatUC := chatuc.NewUsecase(engineFactory, llmConn, cfg.RetrievalCfg, logger)
	filesUC := files.NewUsecase(store, indexProv, engineFactory, fileValidator, downloader, cfg.DownloadCfg.Retry, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC)
	managementHandler := managementapi.NewHandler(filesUC, cfg.FileUploadCfg)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, managementHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. WriteTimeout stays zero so chat streams can
	// outlive any fixed deadline.
	server := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

func setupStorage(ctx context.Context, cfg config.StorageConfig) (storage.Adapter, error) {
	switch cfg.Backend {
	case "gcs":
		return storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.CredentialsFile)
	default:
		return storage.NewLocal(cfg.DataDir), nil
	}
}

func setupLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
