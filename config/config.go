package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure for the docqa server
type Config struct {
	Backend BackendConfig `json:"backend" yaml:"backend"`
	LLM     LLMConfig     `json:"llm" yaml:"llm"`
	// Embedding is only consulted by the milvus backend.
	Embedding EmbeddingConfig `json:"embedding,omitempty" yaml:"embedding,omitempty"`
	Limits    LimitsConfig    `json:"limits,omitempty" yaml:"limits,omitempty"`
	Session   SessionConfig   `json:"session,omitempty" yaml:"session,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty" yaml:"logging,omitempty"`
	HTTP      *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
}

// BackendConfig defines the search backend and its two indexes
type BackendConfig struct {
	Provider string `json:"provider" yaml:"provider"` // Available options: elastic, milvus
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// MetadataIndex holds per-document summaries, ChunksIndex the content chunks.
	MetadataIndex string `json:"metadata_index" yaml:"metadata_index"`
	ChunksIndex   string `json:"chunks_index" yaml:"chunks_index"`
}

// LLMConfig defines configuration for Large Language Models
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai, dashscope, qwen
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// EmbeddingConfig defines configuration for embedding models
type EmbeddingConfig struct {
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// LimitsConfig bounds the retrieval and routing pipeline
type LimitsConfig struct {
	MetadataLimit    int `json:"metadata_limit,omitempty" yaml:"metadata_limit,omitempty"`
	ChunkLimit       int `json:"chunk_limit,omitempty" yaml:"chunk_limit,omitempty"`
	FilterCap        int `json:"filter_cap,omitempty" yaml:"filter_cap,omitempty"`
	MaxEntities      int `json:"max_entities,omitempty" yaml:"max_entities,omitempty"`
	EntityTimeoutSec int `json:"entity_timeout_seconds,omitempty" yaml:"entity_timeout_seconds,omitempty"`
	HistoryTurns     int `json:"history_turns,omitempty" yaml:"history_turns,omitempty"`
	MaxContextTokens int `json:"max_context_tokens,omitempty" yaml:"max_context_tokens,omitempty"`
}

// SessionConfig selects the chat session store
type SessionConfig struct {
	Store      string `json:"store,omitempty" yaml:"store,omitempty"` // Available options: memory, redis
	TTLSeconds int    `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	RedisAddr  string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisDB    int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	RedisPass  string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	MaxKeep    int    `json:"max_keep,omitempty" yaml:"max_keep,omitempty"`
}

// LoggingConfig controls the process logger
type LoggingConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Dev   bool   `json:"dev,omitempty" yaml:"dev,omitempty"`
}

// HTTPClientConfig tunes the outbound HTTP client used by the elastic backend
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// Load reads a YAML config file, expands ${ENV} references and applies defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	expanded := os.Expand(string(raw), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "${" + key + "}"
	})
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero values with working defaults.
func (c *Config) ApplyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.5
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.Limits.MetadataLimit == 0 {
		c.Limits.MetadataLimit = 50
	}
	if c.Limits.ChunkLimit == 0 {
		c.Limits.ChunkLimit = 5
	}
	if c.Limits.FilterCap == 0 {
		c.Limits.FilterCap = 10
	}
	if c.Limits.MaxEntities == 0 {
		c.Limits.MaxEntities = 6
	}
	if c.Limits.EntityTimeoutSec == 0 {
		c.Limits.EntityTimeoutSec = 45
	}
	if c.Limits.HistoryTurns == 0 {
		c.Limits.HistoryTurns = 5
	}
	if c.Limits.MaxContextTokens == 0 {
		c.Limits.MaxContextTokens = 6000
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = int((24 * time.Hour).Seconds())
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// EntityTimeout returns the per-entity retrieval deadline.
func (c *Config) EntityTimeout() time.Duration {
	return time.Duration(c.Limits.EntityTimeoutSec) * time.Second
}
