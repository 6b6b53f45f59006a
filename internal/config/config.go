package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "TOS_ANALYZER_CONFIG"
	listenAddrEnv        = "LISTEN_ADDR"
	logLevelEnv          = "LOG_LEVEL"
	databaseDSNEnv       = "DATABASE_DSN"
	redisAddrEnv         = "REDIS_ADDR"
	mlInferenceURLEnv    = "ML_INFERENCE_URL"
	mlAPIKeyEnv          = "ML_API_KEY"
	ocrEndpointEnv       = "OCR_ENDPOINT"
	chatGPTAPIKeyEnv     = "CHATGPT_API_KEY"
	chatGPTModelEnv      = "CHATGPT_MODEL"
	summarizerBackendEnv = "SUMMARIZER_BACKEND"
	cacheBackendEnv      = "CACHE_BACKEND"
)

// Summarizer backends.
const (
	BackendML      = "ml"
	BackendChatGPT = "chatgpt"
	BackendNone    = "none"
)

// Cache backends.
const (
	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

// DefaultPlaceholder is the summary used when no model is available.
const DefaultPlaceholder = "Model failed to load. Cannot generate summary."

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	ML         MLConfig         `yaml:"ml"`
	ChatGPT    ChatGPTConfig    `yaml:"chatgpt"`
	OCR        OCRConfig        `yaml:"ocr"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Cache      CacheConfig      `yaml:"cache"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Risk       RiskConfig       `yaml:"risk"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SummarizerConfig picks the summarization backend and its readiness probe.
type SummarizerConfig struct {
	Backend       string        `yaml:"backend"`
	ProbeInterval time.Duration `yaml:"probeInterval"`
	Placeholder   string        `yaml:"placeholder"`
}

// MLConfig describes the inference service hosting the summarization model.
type MLConfig struct {
	InferenceURL        string        `yaml:"inferenceUrl"`
	APIKey              string        `yaml:"apiKey"`
	Timeout             time.Duration `yaml:"timeout"`
	MaxLength           int           `yaml:"maxLength"`
	MinLength           int           `yaml:"minLength"`
	NumBeams            int           `yaml:"numBeams"`
	ExtractiveSentences int           `yaml:"extractiveSentences"`
	Retries             int           `yaml:"retries"`
	RetryBaseDelay      time.Duration `yaml:"retryBaseDelay"`
	RequestsPerSecond   float64       `yaml:"requestsPerSecond"`
	Burst               int           `yaml:"burst"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
	MaxTokens    int    `yaml:"maxTokens"`
}

// OCRConfig describes the OCR service.
type OCRConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	APIKey         string        `yaml:"apiKey"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	RetryBaseDelay time.Duration `yaml:"retryBaseDelay"`
}

// FetcherConfig controls page downloads for URL extraction.
type FetcherConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
	MaxBytes  int64         `yaml:"maxBytes"`

	// AllowPrivateNetworks lets /extract_url reach loopback and private addresses.
	AllowPrivateNetworks bool `yaml:"allowPrivateNetworks"`
}

// CacheConfig selects where summaries are cached.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig describes the Redis connection.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// RiskConfig overrides the heuristic tables. Empty lists keep the built-in defaults.
type RiskConfig struct {
	Scorer            string              `yaml:"scorer"`
	Dimensions        []DimensionConfig   `yaml:"dimensions"`
	Indicators        map[string][]string `yaml:"indicators"`
	AggressivePhrases []string            `yaml:"aggressivePhrases"`
	Clauses           []ClauseConfig      `yaml:"clauses"`
}

// DimensionConfig is one row of the static scoring table.
type DimensionConfig struct {
	Name        string `yaml:"name"`
	Score       int    `yaml:"score"`
	Description string `yaml:"description"`
}

// ClauseConfig maps a trigger keyword to a suspicious clause flag.
type ClauseConfig struct {
	Trigger string `yaml:"trigger"`
	Name    string `yaml:"name"`
	Text    string `yaml:"text"`
}

// Load reads YAML configuration from path (or the env-provided path when empty),
// applies environment overrides and repairs invalid values.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.validate()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{listenAddrEnv, &c.Server.Addr},
		{logLevelEnv, &c.Logging.Level},
		{databaseDSNEnv, &c.Database.DSN},
		{redisAddrEnv, &c.Redis.Addr},
		{mlInferenceURLEnv, &c.ML.InferenceURL},
		{mlAPIKeyEnv, &c.ML.APIKey},
		{ocrEndpointEnv, &c.OCR.Endpoint},
		{chatGPTAPIKeyEnv, &c.ChatGPT.APIKey},
		{chatGPTModelEnv, &c.ChatGPT.Model},
		{summarizerBackendEnv, &c.Summarizer.Backend},
		{cacheBackendEnv, &c.Cache.Backend},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) validate() {
	def := defaultConfig()

	c.Summarizer.Backend = strings.ToLower(strings.TrimSpace(c.Summarizer.Backend))
	switch c.Summarizer.Backend {
	case BackendML, BackendChatGPT, BackendNone:
	default:
		log.Printf("config: unknown summarizer backend %q, reverting to %s", c.Summarizer.Backend, def.Summarizer.Backend)
		c.Summarizer.Backend = def.Summarizer.Backend
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case CacheNone, CachePostgres, CacheRedis:
	case "":
		c.Cache.Backend = CacheNone
	default:
		log.Printf("config: unknown cache backend %q, disabling cache", c.Cache.Backend)
		c.Cache.Backend = CacheNone
	}
	if c.Cache.Backend == CachePostgres && c.Database.DSN == "" {
		log.Printf("config: postgres cache requested without %s, disabling cache", databaseDSNEnv)
		c.Cache.Backend = CacheNone
	}

	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if c.Summarizer.ProbeInterval <= 0 {
		c.Summarizer.ProbeInterval = def.Summarizer.ProbeInterval
	}
	if strings.TrimSpace(c.Summarizer.Placeholder) == "" {
		c.Summarizer.Placeholder = DefaultPlaceholder
	}
	if c.ML.Retries < 1 {
		c.ML.Retries = 1
	}
	if c.OCR.Retries < 1 {
		c.OCR.Retries = 1
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = def.Cache.TTL
	}
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Summarizer: SummarizerConfig{
			Backend:       BackendML,
			ProbeInterval: 30 * time.Second,
			Placeholder:   DefaultPlaceholder,
		},
		ML: MLConfig{
			InferenceURL:        "http://localhost:8000",
			Timeout:             60 * time.Second,
			MaxLength:           150,
			MinLength:           30,
			NumBeams:            4,
			ExtractiveSentences: 12,
			Retries:             5,
			RetryBaseDelay:      time.Second,
			Burst:               1,
		},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You summarize terms of service documents for ordinary users in a few plain sentences.",
			MaxTokens:    200,
		},
		OCR: OCRConfig{
			Endpoint:       "http://localhost:8001",
			Timeout:        30 * time.Second,
			Retries:        3,
			RetryBaseDelay: time.Second,
		},
		Fetcher: FetcherConfig{
			Timeout:   20 * time.Second,
			UserAgent: "TOSAnalyzer/1.0",
			MaxBytes:  5 << 20,
		},
		Cache:    CacheConfig{Backend: CacheNone, TTL: 24 * time.Hour},
		Database: DatabaseConfig{DSN: ""},
		Redis:    RedisConfig{Addr: "localhost:6379", KeyPrefix: "tos:summary:"},
		Risk:     RiskConfig{Scorer: "static"},
	}
}
