// Package config provides application configuration with multi-source
// priority: environment variables override the config file, which
// overrides built-in defaults.
//
// The config file lives at ~/.reposage/config.yaml; environment
// variables use the REPOSAGE_ prefix (REPOSAGE_POSTGRES_HOST, ...).
// DATABASE_URL, when set, overrides the individual postgres_* keys —
// the common shape for cloud deployments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for validation, checked with errors.Is.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidDimension indicates the embedding dimension is out of range.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidSimilarity indicates the similarity floor is out of range.
	ErrInvalidSimilarity = errors.New("invalid similarity threshold")

	// ErrInvalidTopK indicates the retrieval result limit is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidChunkPolicy indicates max length and overlap cannot
	// produce advancing chunks.
	ErrInvalidChunkPolicy = errors.New("invalid chunk policy")
)

// Config stores application configuration.
// SECURITY: PostgresPassword is sensitive; never log the struct verbatim.
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level"` // "debug", "info", "warn", "error"
	LogJSON  bool   `mapstructure:"log_json"`

	// Storage (see storage.go for DSN helpers)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Embedding model
	EmbedderModel          string  `mapstructure:"embedder_model"`
	EmbedderDimension      int     `mapstructure:"embedder_dimension"`
	EmbedderCallsPerSecond float64 `mapstructure:"embedder_calls_per_second"` // 0 = unlimited

	// Generation model
	GenerationModel string `mapstructure:"generation_model"`

	// Retrieval
	RetrievalTopK          int32   `mapstructure:"retrieval_top_k"`
	RetrievalMinSimilarity float64 `mapstructure:"retrieval_min_similarity"`

	// Chunking policy
	ChunkMaxLength int `mapstructure:"chunk_max_length"`
	ChunkOverlap   int `mapstructure:"chunk_overlap"`
}

// Load reads configuration from defaults, the config file (if present)
// and the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".reposage"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("REPOSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Missing file is fine; defaults plus env carry the load.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "reposage")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "reposage")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("embedder_model", "text-embedding-004")
	v.SetDefault("embedder_dimension", 384)
	v.SetDefault("embedder_calls_per_second", 0)

	v.SetDefault("generation_model", "gemini-2.5-flash")

	v.SetDefault("retrieval_top_k", 7)
	v.SetDefault("retrieval_min_similarity", 0.3)

	v.SetDefault("chunk_max_length", 500)
	v.SetDefault("chunk_overlap", 50)
}

// Validate checks the configuration for values that would misbehave at
// runtime.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidPostgresDBName)
	}

	// The schema's vector column width must match; 4096 is a generous
	// ceiling for current text embedding models.
	if c.EmbedderDimension < 1 || c.EmbedderDimension > 4096 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, c.EmbedderDimension)
	}

	if c.RetrievalTopK < 1 || c.RetrievalTopK > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidTopK, c.RetrievalTopK)
	}
	if c.RetrievalMinSimilarity < -1 || c.RetrievalMinSimilarity > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSimilarity, c.RetrievalMinSimilarity)
	}

	if c.ChunkMaxLength < 1 {
		return fmt.Errorf("%w: max length %d", ErrInvalidChunkPolicy, c.ChunkMaxLength)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkMaxLength {
		return fmt.Errorf("%w: overlap %d with max length %d",
			ErrInvalidChunkPolicy, c.ChunkOverlap, c.ChunkMaxLength)
	}

	return nil
}
