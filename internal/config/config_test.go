package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable FromEnv reads so host settings don't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"QDRANT_URL", "QDRANT_API_KEY", "QDRANT_GRPC_PORT", "QDRANT_TIMEOUT_SEC",
		"COLLECTION_NAME", "EMBEDDING_MODEL", "EMBEDDING_PROVIDER", "EMBEDDING_BASE_URL",
		"EMBEDDING_API_KEY", "EMBEDDING_DIMENSIONS", "EMBEDDING_QUERY_INSTRUCTION",
		"CACHE_REDIS_ADDRS", "CACHE_REDIS_PASSWORD", "CACHE_TTL_SEC",
		"HTTP_PORT", "AUTH_API_KEYS", "ENV", "LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestVectorName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2", "fast-paraphrase-multilingual-minilm-l12-v2"},
		{"BAAI/bge-small-en-v1.5", "fast-bge-small-en-v1.5"},
		{"intfloat/multilingual-e5-large", "fast-multilingual-e5-large"},
		{"NoSlash-Model", "fast-noslash-model"},
		{"org/sub/Deep", "fast-deep"},
		{"", "fast-"},
	}
	for _, tc := range tests {
		if got := VectorName(tc.model); got != tc.want {
			t.Errorf("VectorName(%q) = %q, want %q", tc.model, got, tc.want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("QDRANT_URL", "https://abc.cloud.qdrant.io:6333")
	t.Setenv("QDRANT_API_KEY", "secret")
	t.Setenv("EMBEDDING_MODEL", "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2")
	t.Setenv("COLLECTION_NAME", "clubs")
	t.Setenv("AUTH_API_KEYS", "k1, k2,,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Qdrant.URL != "https://abc.cloud.qdrant.io:6333" || cfg.Qdrant.APIKey != "secret" {
		t.Errorf("Qdrant = %+v", cfg.Qdrant)
	}
	if cfg.Collection != "clubs" {
		t.Errorf("Collection = %q", cfg.Collection)
	}
	if cfg.VectorName() != "fast-paraphrase-multilingual-minilm-l12-v2" {
		t.Errorf("VectorName() = %q", cfg.VectorName())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
	if cfg.Qdrant.GRPCPort != 6334 {
		t.Errorf("GRPCPort = %d, want 6334", cfg.Qdrant.GRPCPort)
	}
	if cfg.Embedding.Provider != ProviderQdrant {
		t.Errorf("Provider = %q, want %q", cfg.Embedding.Provider, ProviderQdrant)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[1] != "k2" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
	if len(cfg.Cache.Addrs) != 0 {
		t.Errorf("Cache.Addrs = %v, want empty (cache disabled)", cfg.Cache.Addrs)
	}
}

func TestFromEnv_EmptyValuesAreNotValidated(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Qdrant.URL != "" || cfg.Embedding.Model != "" {
		t.Errorf("expected empty URL and model, got %+v", cfg)
	}
}

func TestFromEnv_InvalidInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("QDRANT_TIMEOUT_SEC", "thirty")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "QDRANT_TIMEOUT_SEC") {
		t.Errorf("error = %q", err)
	}
}

func TestFromEnv_NegativeHTTPPortIgnoredBySearch(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "-1")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("one-shot search must load: %v", err)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Fatal("serve must reject the port")
	}
}

func TestFromEnv_InvalidProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "cohere")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 70000}, Embedding: EmbeddingConfig{Provider: ProviderQdrant}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("search path must not check the HTTP port: %v", err)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("QDRANT_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "clubsearch.yaml")
	content := `
qdrant:
  url: http://localhost:6333
  api_key: ${QDRANT_API_KEY}
  timeout_sec: 5
collection: ${COLLECTION_NAME:-clubs}
embedding:
  model: BAAI/bge-small-en-v1.5
  provider: openai
  base_url: http://localhost:11434/v1
cache:
  addrs: ["localhost:6379"]
  ttl_sec: 60
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Qdrant.APIKey != "from-env" {
		t.Errorf("APIKey = %q", cfg.Qdrant.APIKey)
	}
	if cfg.Collection != "clubs" {
		t.Errorf("Collection = %q, want default clubs", cfg.Collection)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q", cfg.Embedding.Provider)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("CacheTTL() = %v", cfg.CacheTTL())
	}
	if cfg.VectorName() != "fast-bge-small-en-v1.5" {
		t.Errorf("VectorName() = %q", cfg.VectorName())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("COLLECTION_NAME=clubs_dotenv\nQDRANT_URL=http://dotenv:6333\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Variables already set (even empty via t.Setenv) are not overridden by godotenv,
	// so unset the one we expect to load.
	os.Unsetenv("COLLECTION_NAME")
	t.Setenv("QDRANT_URL", "http://env:6333")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("COLLECTION_NAME"); got != "clubs_dotenv" {
		t.Errorf("COLLECTION_NAME = %q", got)
	}
	if got := os.Getenv("QDRANT_URL"); got != "http://env:6333" {
		t.Errorf("QDRANT_URL = %q, environment must win over .env", got)
	}
}
