package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the comparison engine.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Graph     GraphConfig     `mapstructure:"graph"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Answer    AnswerConfig    `mapstructure:"answer"`
	Cypher    CypherConfig    `mapstructure:"cypher"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Judge     JudgeConfig     `mapstructure:"judge"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Session   SessionConfig   `mapstructure:"session"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// GraphConfig contains graph database connection settings.
type GraphConfig struct {
	URI      string        `mapstructure:"uri"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LLMConfig contains completion service settings.
type LLMConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// RetrievalConfig contains RAG retrieval settings.
type RetrievalConfig struct {
	Limit     int  `mapstructure:"limit"`
	UseVector bool `mapstructure:"use_vector"`
}

// AnswerConfig contains answer generation sampling settings.
type AnswerConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// CypherConfig contains text-to-Cypher translation settings. The schema
// description is an explicit configuration value so tests can inject
// synthetic schemas; when empty it is sampled from the graph at startup.
type CypherConfig struct {
	SchemaDescription string  `mapstructure:"schema_description"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	RowCap            int     `mapstructure:"row_cap"`
}

// ExtractorConfig contains subgraph extraction limits.
type ExtractorConfig struct {
	MaxCandidates int `mapstructure:"max_candidates"`
	LookupCap     int `mapstructure:"lookup_cap"`
}

// JudgeConfig contains judging protocol settings. Temperature zero and a
// fixed seed keep repeated judgments of the same pair reproducible.
type JudgeConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	Seed        int     `mapstructure:"seed"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// BatchConfig contains batch comparison settings.
type BatchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// SessionConfig contains comparison record store settings.
type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // inmemory or redis
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("graphjudge")
	viper.SetConfigType("yaml")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("GRAPHJUDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional; defaults plus env are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")

	viper.SetDefault("graph.database", "neo4j")
	viper.SetDefault("graph.timeout", "30s")

	viper.SetDefault("llm.completion_model", "gpt-4o-mini")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.timeout", "60s")

	viper.SetDefault("retrieval.limit", 5)
	viper.SetDefault("retrieval.use_vector", false)

	viper.SetDefault("answer.temperature", 0.7)
	viper.SetDefault("answer.max_tokens", 500)

	viper.SetDefault("cypher.temperature", 0.1)
	viper.SetDefault("cypher.max_tokens", 300)
	viper.SetDefault("cypher.row_cap", 20)

	viper.SetDefault("extractor.max_candidates", 50)
	viper.SetDefault("extractor.lookup_cap", 20)

	viper.SetDefault("judge.temperature", 0.0)
	viper.SetDefault("judge.seed", 42)
	viper.SetDefault("judge.max_tokens", 1000)

	viper.SetDefault("batch.delay", "1s")

	viper.SetDefault("session.backend", "inmemory")
	viper.SetDefault("session.ttl", "30m")
	viper.SetDefault("session.redis.host", "localhost")
	viper.SetDefault("session.redis.port", 6379)
	viper.SetDefault("session.redis.db", 0)
	viper.SetDefault("session.redis.timeout", "5s")

	viper.SetDefault("server.addr", ":10001")

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.periodic_logs", false)
}

// overrideFromEnv maps the well-known environment variables onto config
// keys, same names the graph and LLM vendors document.
func overrideFromEnv() {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		viper.Set("graph.uri", uri)
	}
	if user := os.Getenv("NEO4J_USERNAME"); user != "" {
		viper.Set("graph.username", user)
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		viper.Set("graph.password", pass)
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		viper.Set("graph.database", db)
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		viper.Set("llm.api_key", apiKey)
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		viper.Set("session.redis.host", host)
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		viper.Set("session.redis.password", pass)
	}
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Retrieval.Limit <= 0 {
		return fmt.Errorf("retrieval.limit must be positive")
	}
	if config.Extractor.MaxCandidates <= 0 || config.Extractor.LookupCap <= 0 {
		return fmt.Errorf("extractor limits must be positive")
	}
	if config.Extractor.LookupCap > config.Extractor.MaxCandidates {
		return fmt.Errorf("extractor.lookup_cap cannot exceed extractor.max_candidates")
	}
	switch config.Session.Backend {
	case "inmemory", "redis":
	default:
		return fmt.Errorf("unsupported session backend: %s", config.Session.Backend)
	}
	return nil
}
