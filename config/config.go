// Why this file: ./config/config.go
// Config is the fabric's viper-backed configuration, adapted from the
// teacher's config/config.go (same SetDefault/AutomaticEnv/ReadInConfig
// idiom) but covering the full SPEC_FULL.md configuration enumeration
// instead of the teacher's project-indexing settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all fabric configuration.
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	Debug       bool   `mapstructure:"debug"`

	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Vector     VectorConfig     `mapstructure:"vector"`
	Agents     AgentsConfig     `mapstructure:"agents"`
	AI         AIConfig         `mapstructure:"ai"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// ThresholdsConfig holds complexity/timeout thresholds.
type ThresholdsConfig struct {
	ComplexitySimple   float64 `mapstructure:"complexity_threshold_simple"`
	ComplexityComplex  float64 `mapstructure:"complexity_threshold_complex"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds"`
	MaxIterationsAgent int     `mapstructure:"max_iterations_agentic"`
}

// CacheConfig holds per-tier cache settings.
type CacheConfig struct {
	L1MaxSize int `mapstructure:"l1_max_size"`
	L1TTL     int `mapstructure:"l1_ttl"`

	L2SimilarityThreshold float64 `mapstructure:"l2_similarity_threshold"`
	L2MaxSize             int     `mapstructure:"l2_max_size"`
	L2TTL                 int     `mapstructure:"l2_ttl"`

	L3MaxPaths int `mapstructure:"l3_max_paths"`
	L3TTL      int `mapstructure:"l3_ttl"`

	// RedisAddr, when set, fronts L1 with a shared cache so multiple fabric
	// instances behind a load balancer share exact-match hits.
	RedisAddr string `mapstructure:"redis_addr"`
	RedisTTL  int    `mapstructure:"redis_ttl"`
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	CollectionName string `mapstructure:"collection_name"`
	VectorSize     int    `mapstructure:"vector_size"`
}

// AgentsConfig holds Agent Orchestrator behaviour settings.
type AgentsConfig struct {
	EnableSelfReflection bool    `mapstructure:"enable_self_reflection"`
	ParallelAgents       bool    `mapstructure:"parallel_agents"`
	ConfidenceThreshold  float64 `mapstructure:"confidence_threshold"`
}

// AIConfig holds LLM and embedding provider settings.
type AIConfig struct {
	Primary   string         `mapstructure:"primary"`
	Fallbacks []string       `mapstructure:"fallbacks"`
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
}

// ProviderConfig holds provider-specific settings.
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Timeout string `mapstructure:"timeout"`
}

// Load loads configuration from environment and an optional config file,
// falling back to the defaults listed in SPEC_FULL.md's configuration
// enumeration when neither is present.
func Load() (*Config, error) {
	viper.SetDefault("environment", "dev")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("debug", false)

	viper.SetDefault("thresholds.complexity_threshold_simple", 0.3)
	viper.SetDefault("thresholds.complexity_threshold_complex", 0.7)
	viper.SetDefault("thresholds.timeout_seconds", 30)
	viper.SetDefault("thresholds.max_iterations_agentic", 5)

	viper.SetDefault("cache.l1_max_size", 100)
	viper.SetDefault("cache.l1_ttl", 3600)
	viper.SetDefault("cache.l2_similarity_threshold", 0.95)
	viper.SetDefault("cache.l2_max_size", 500)
	viper.SetDefault("cache.l2_ttl", 7200)
	viper.SetDefault("cache.l3_max_paths", 100)
	viper.SetDefault("cache.l3_ttl", 86400)
	viper.SetDefault("cache.redis_addr", "")
	viper.SetDefault("cache.redis_ttl", 3600)

	viper.SetDefault("vector.host", "localhost")
	viper.SetDefault("vector.port", 6334)
	viper.SetDefault("vector.collection_name", "hybrid_rag_documents")
	viper.SetDefault("vector.vector_size", 1536)

	viper.SetDefault("agents.enable_self_reflection", true)
	viper.SetDefault("agents.parallel_agents", true)
	viper.SetDefault("agents.confidence_threshold", 0.8)

	viper.SetDefault("ai.primary", "openai")
	viper.SetDefault("ai.fallbacks", []string{})
	viper.SetDefault("ai.openai.model", "gpt-4-turbo-preview")
	viper.SetDefault("ai.openai.max_tokens", 4000)
	viper.SetDefault("ai.openai.temperature", 0.1)

	viper.SetDefault("database.path", "storage/hybridrag.db")
	viper.SetDefault("database.timeout", "30s")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		viper.Set("ai.openai.api_key", apiKey)
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		viper.Set("ai.gemini.api_key", apiKey)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Timeout returns the request deadline derived from TimeoutSeconds.
func (c *Config) Timeout() time.Duration {
	if c.Thresholds.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Thresholds.TimeoutSeconds) * time.Second
}

// DatabaseTimeout parses Database.Timeout, defaulting to 30s if unset or
// malformed.
func (c *Config) DatabaseTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Database.Timeout); err == nil {
		return d
	}
	return 30 * time.Second
}
