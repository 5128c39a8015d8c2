package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	// ProviderQdrant sends the query text to Qdrant, which embeds it server-side.
	ProviderQdrant = "qdrant"
	// ProviderOpenAI embeds the query through an OpenAI-compatible API first.
	ProviderOpenAI = "openai"
)

// VectorNamePrefix is the prefix fastembed-backed collections use for named vectors.
const VectorNamePrefix = "fast-"

// Config holds the clubsearch configuration. Built once at start-up, then read-only.
type Config struct {
	Qdrant     QdrantConfig    `yaml:"qdrant"`
	Collection string          `yaml:"collection"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
	Cache      CacheConfig     `yaml:"cache"`
	HTTP       HTTPConfig      `yaml:"http"`
	Auth       AuthConfig      `yaml:"auth"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// QdrantConfig holds the vector database endpoint.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	GRPCPort   int    `yaml:"grpc_port"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// EmbeddingConfig holds query embedding settings.
type EmbeddingConfig struct {
	Model            string `yaml:"model"`
	Provider         string `yaml:"provider"` // qdrant (default), openai
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// CacheConfig holds the optional embedding cache. Empty Addrs disables it.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// HTTPConfig holds settings for the serve subcommand.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds API keys for the serve subcommand. Empty disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, local, dev, docker (default: local)
	Level string `yaml:"level"` // debug, info, warn, error
}

// VectorName derives the named vector for the embedding model:
// "fast-" + lowercased last path segment. Collections indexed with fastembed
// use this exact name, so it must not change.
func VectorName(model string) string {
	slug := model
	if i := strings.LastIndex(model, "/"); i >= 0 {
		slug = model[i+1:]
	}
	return VectorNamePrefix + strings.ToLower(slug)
}

// VectorName returns the named vector targeted by queries.
func (c *Config) VectorName() string { return VectorName(c.Embedding.Model) }

// Timeout returns the per-request deadline for the vector database.
func (c *Config) Timeout() time.Duration { return time.Duration(c.Qdrant.TimeoutSec) * time.Second }

// CacheTTL returns the embedding cache entry lifetime.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.Cache.TTLSec) * time.Second }

// LoadDotEnv loads variables from .env files without overriding the environment.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	var err error

	cfg.Qdrant.URL = os.Getenv("QDRANT_URL")
	cfg.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
	cfg.Collection = os.Getenv("COLLECTION_NAME")
	cfg.Embedding.Model = os.Getenv("EMBEDDING_MODEL")
	cfg.Embedding.Provider = os.Getenv("EMBEDDING_PROVIDER")
	cfg.Embedding.BaseURL = os.Getenv("EMBEDDING_BASE_URL")
	cfg.Embedding.APIKey = os.Getenv("EMBEDDING_API_KEY")
	cfg.Embedding.QueryInstruction = os.Getenv("EMBEDDING_QUERY_INSTRUCTION")
	cfg.Cache.Addrs = splitList(os.Getenv("CACHE_REDIS_ADDRS"))
	cfg.Cache.Password = os.Getenv("CACHE_REDIS_PASSWORD")
	cfg.Auth.APIKeys = splitList(os.Getenv("AUTH_API_KEYS"))
	cfg.Logging.Env = os.Getenv("ENV")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	ints := []struct {
		name string
		dst  *int
	}{
		{"QDRANT_GRPC_PORT", &cfg.Qdrant.GRPCPort},
		{"QDRANT_TIMEOUT_SEC", &cfg.Qdrant.TimeoutSec},
		{"EMBEDDING_DIMENSIONS", &cfg.Embedding.Dimensions},
		{"CACHE_TTL_SEC", &cfg.Cache.TTLSec},
		{"HTTP_PORT", &cfg.HTTP.Port},
	}
	for _, v := range ints {
		if *v.dst, err = envInt(v.name); err != nil {
			return Config{}, err
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads configuration from a YAML file. ${VAR} and ${VAR:-default}
// are substituted from the environment before parsing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Qdrant.GRPCPort <= 0 {
		c.Qdrant.GRPCPort = 6334
	}
	if c.Qdrant.TimeoutSec <= 0 {
		c.Qdrant.TimeoutSec = 30
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderQdrant
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 40
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the settings this tool interprets itself.
// Endpoint, collection and model are left to the server to reject.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderQdrant, ProviderOpenAI:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderQdrant, ProviderOpenAI, c.Embedding.Provider)
	}
	return nil
}

// ValidateServe checks the settings only the HTTP server reads.
func (c *Config) ValidateServe() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	return nil
}

func envInt(name string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
