package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/rag-gateway/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// OpenAI configuration
	OpenAICfg OpenAIConfig `envPrefix:"OPENAI_"`

	// Retrieval configuration
	RetrievalCfg RetrievalConfig

	// Vector index configuration
	WeaviateCfg WeaviateConfig `envPrefix:"WEAVIATE_"`

	// Storage backend configuration
	StorageCfg StorageConfig `envPrefix:"STORAGE_"`

	// Remote file download configuration
	DownloadCfg DownloadConfig `envPrefix:"DOWNLOAD_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Chat engine cache configuration
	EngineCacheTTL time.Duration `env:"ENGINE_CACHE_TTL" envDefault:"5m"`

	// Auxiliary agent tools, comma-separated (empty set selects the
	// plain context engine)
	Tools []string `env:"TOOLS" envDefault:""`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// OpenAIConfig holds LLM client configuration
type OpenAIConfig struct {
	APIKey         string `env:"API_KEY,notEmpty"`
	Model          string `env:"MODEL" envDefault:"gpt-4o"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	BaseURL        string `env:"BASE_URL"`
}

// RetrievalConfig holds retrieval breadth and prompt settings
type RetrievalConfig struct {
	SystemPrompt string `env:"SYSTEM_PROMPT" envDefault:"You are a helpful assistant that answers questions using the provided context."`
	TopK         int    `env:"TOP_K" envDefault:"3"`
	TopKComplex  int    `env:"TOP_K_COMPLEX" envDefault:"30"`
	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"1024"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"128"`
}

// WeaviateConfig holds vector store connection settings
type WeaviateConfig struct {
	Scheme    string `env:"SCHEME" envDefault:"http"`
	Host      string `env:"HOST" envDefault:"localhost:8080"`
	ClassName string `env:"CLASS" envDefault:"DocumentChunk"`
}

// StorageConfig selects and configures the file storage backend
type StorageConfig struct {
	// Backend is either "local" or "gcs"
	Backend         string `env:"BACKEND" envDefault:"local"`
	DataDir         string `env:"DATA_DIR" envDefault:"data"`
	GCSBucket       string `env:"GCS_BUCKET"`
	GCSPrefix       string `env:"GCS_PREFIX"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

// DownloadConfig configures upload-by-URL fetching
type DownloadConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// HTTPClientConfig configures an outbound HTTP client
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"52428800"`  // 50 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"67108864"` // 64 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	switch cfg.StorageCfg.Backend {
	case "local":
		if cfg.StorageCfg.DataDir == "" {
			errs = append(errs, "STORAGE_DATA_DIR must be set for the local backend")
		}
	case "gcs":
		if cfg.StorageCfg.GCSBucket == "" {
			errs = append(errs, "STORAGE_GCS_BUCKET must be set for the gcs backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND must be 'local' or 'gcs', got %q", cfg.StorageCfg.Backend))
	}

	if cfg.RetrievalCfg.TopK < 1 {
		errs = append(errs, fmt.Sprintf("TOP_K must be positive, got %d", cfg.RetrievalCfg.TopK))
	}
	if cfg.RetrievalCfg.TopKComplex < cfg.RetrievalCfg.TopK {
		errs = append(errs, fmt.Sprintf("TOP_K_COMPLEX must be >= TOP_K(%d), got %d", cfg.RetrievalCfg.TopK, cfg.RetrievalCfg.TopKComplex))
	}
	if cfg.RetrievalCfg.ChunkOverlap >= cfg.RetrievalCfg.ChunkSize {
		errs = append(errs, fmt.Sprintf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE(%d), got %d", cfg.RetrievalCfg.ChunkSize, cfg.RetrievalCfg.ChunkOverlap))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
