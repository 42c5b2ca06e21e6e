package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment" validate:"omitempty,oneof=development production"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Neo4j       Neo4jConfig       `toml:"neo4j"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Claude      ClaudeConfig      `toml:"claude"`
	LLM         LLMConfig         `toml:"llm"`
	Chunking    ChunkingConfig    `toml:"chunking"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Relevance   RelevanceConfig   `toml:"relevance"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration. Path is the fixed
// on-disk location of the vector index; its presence and non-emptiness at
// startup decides "load existing index" vs "start fresh".
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// Neo4jConfig configures the concept-graph store. An empty URI disables the
// graph entirely; ingestion then skips the graph-update step.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	Timeout  string `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	EmbedModel     string  `toml:"embed_model"`
	EmbedDimension int     `toml:"embed_dimension" validate:"gt=0"`
	Temperature    float32 `toml:"temperature"`
	Timeout        string  `toml:"timeout"`
	EmbedRate      float64 `toml:"embed_rate"` // embed calls per second, 0 = unlimited
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens" validate:"gt=0"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

type LLMConfig struct {
	Provider string `toml:"provider" validate:"oneof=gemini claude"`
}

type ChunkingConfig struct {
	ChunkSize        int `toml:"chunk_size" validate:"gt=0"`
	ChunkOverlap     int `toml:"chunk_overlap" validate:"gte=0"`
	MaxConceptChunks int `toml:"max_concept_chunks" validate:"gt=0"`
}

type RetrievalConfig struct {
	TopK int `toml:"top_k" validate:"gt=0"`
}

// RelevanceConfig is the tunable data behind the grounded-vs-general
// classification. The defaults reproduce the shipped heuristic exactly;
// changing them changes classification, so they live in configuration
// rather than code.
type RelevanceConfig struct {
	MinContentLength int      `toml:"min_content_length" validate:"gte=0"`
	MinWordCount     int      `toml:"min_word_count" validate:"gte=0"`
	SentinelPrefixes []string `toml:"sentinel_prefixes"`
	GeneralTriggers  []string `toml:"general_triggers"`
	InjectionMarkers []string `toml:"injection_markers"`
}

type MaintenanceConfig struct {
	Enabled    bool   `toml:"enabled"`
	GCSchedule string `toml:"gc_schedule"` // cron spec for Badger value-log GC
}

// NewDefaultConfig returns a config populated with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/vectordb",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Neo4j: Neo4jConfig{
			URI:      "", // empty = graph disabled
			Username: "neo4j",
			Database: "",
			Timeout:  "10s",
		},
		Gemini: GeminiConfig{
			APIKey:         "",
			Model:          "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Temperature:    0.7,
			Timeout:        "2m",
			EmbedRate:      4, // stays inside free-tier quotas
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			Temperature: 0.7,
			Timeout:     "2m",
		},
		LLM: LLMConfig{
			Provider: "gemini",
		},
		Chunking: ChunkingConfig{
			ChunkSize:        500,
			ChunkOverlap:     50,
			MaxConceptChunks: 5,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Relevance: RelevanceConfig{
			MinContentLength: 50,
			MinWordCount:     5,
			SentinelPrefixes: []string{"Test", "grains"},
			GeneralTriggers: []string{
				"who is", "what is", "when did", "where is", "how old",
				"birthday", "born", "died", "founded", "ceo", "president",
				"elon musk", "tesla", "spacex",
			},
			InjectionMarkers: []string{"<script>", "javascript:", "alert("},
		},
		Maintenance: MaintenanceConfig{
			Enabled:    true,
			GCSchedule: "@every 10m",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variables on top of file config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("GRAPHKG_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("GRAPHKG_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("GRAPHKG_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("GRAPHKG_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if level := os.Getenv("GRAPHKG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Neo4j.Username = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		config.Neo4j.Password = password
	}
	if database := os.Getenv("NEO4J_DATABASE"); database != "" {
		config.Neo4j.Database = database
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("GRAPHKG_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration for structural errors
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("invalid configuration: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	return nil
}

// GeminiTimeout returns the parsed Gemini call timeout
func (c *Config) GeminiTimeout() time.Duration {
	return parseDurationOr(c.Gemini.Timeout, 2*time.Minute)
}

// ClaudeTimeout returns the parsed Claude call timeout
func (c *Config) ClaudeTimeout() time.Duration {
	return parseDurationOr(c.Claude.Timeout, 2*time.Minute)
}

// Neo4jTimeout returns the parsed graph-store connection timeout
func (c *Config) Neo4jTimeout() time.Duration {
	return parseDurationOr(c.Neo4j.Timeout, 10*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
