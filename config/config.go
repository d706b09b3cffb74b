// Package config loads and validates the assistant configuration.
//
// Precedence is defaults, then the YAML file, then environment variables.
// API keys honor the conventional provider names (OPENAI_API_KEY,
// GEMINI_API_KEY, OPENWEATHER_API_KEY, ...) so a bare environment with no
// config file still works. Validation failures surface as
// *ConfigurationError before the first turn; nothing here is recoverable
// at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/krishidhan/sahayak/logging"
)

const (
	DefaultLLMModel         = "gemini-2.5-flash"
	DefaultLLMTemperature   = 0.3
	DefaultLLMMaxTokens     = 1024
	DefaultRequestTimeout   = 15
	DefaultMaxFPOResults    = 5
	DefaultPlacesCacheTTL   = 300
	DefaultPlacesRateLimit  = 20
	DefaultPlacesRateWindow = 60
	DefaultAdvisoryTopK     = 4
	DefaultAdvisoryMinScore = 0.25
	DefaultSchemeTopK       = 5
	DefaultTurnHistory      = 10
	DefaultVectorDir        = "data/vectors"
	DefaultCorpusDir        = "corpus/data"

	AdvisoryCollection = "icar_advisory"
	SchemeCollection   = "government_schemes"
)

// Config is the root configuration for the assistant.
type Config struct {
	Logging  logging.Config `yaml:"logging"`
	LLM      LLMConfig      `yaml:"llm"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Weather  WeatherConfig  `yaml:"weather"`
	Places   PlacesConfig   `yaml:"places"`
	FPO      FPOConfig      `yaml:"fpo"`
	Vector   VectorConfig   `yaml:"vector"`
	Session  SessionConfig  `yaml:"session"`
	Corpus   CorpusConfig   `yaml:"corpus"`
}

// LLMConfig selects the phrasing model. An empty provider keeps phrasing
// on the deterministic template composer.
type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"omitempty,oneof=openai anthropic cohere gemini"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// EmbedderConfig selects the embedding model used by retrieval and seeding.
type EmbedderConfig struct {
	Provider string `yaml:"provider" validate:"omitempty,oneof=openai gemini"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Model    string `yaml:"model"`
}

// WeatherConfig holds the weather provider keys. Either key alone is
// enough; with both, the secondary answers when the primary fails.
type WeatherConfig struct {
	OpenWeatherKey    string `yaml:"openweather_api_key"`
	VisualCrossingKey string `yaml:"visual_crossing_api_key"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// PlacesConfig holds the places provider keys and the local hygiene
// knobs (result cache, call budget) in front of them.
type PlacesConfig struct {
	GeoapifyKey       string `yaml:"geoapify_api_key"`
	FoursquareKey     string `yaml:"foursquare_api_key"`
	CacheTTLSeconds   int    `yaml:"cache_ttl_seconds" validate:"gte=0"`
	RateLimitCalls    int    `yaml:"rate_limit_calls" validate:"gte=0"`
	RateWindowSeconds int    `yaml:"rate_window_seconds" validate:"gte=0"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// FPOConfig points at the producer-organisation dataset. With no source
// configured the built-in dataset is used.
type FPOConfig struct {
	WorkbookPath string `yaml:"workbook_path"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Key        string `yaml:"s3_key"`
	S3Region     string `yaml:"s3_region"`
	MaxResults   int    `yaml:"max_results" validate:"gte=0"`
}

// VectorConfig selects the vector engine and retrieval tuning.
type VectorConfig struct {
	Engine           string  `yaml:"engine" validate:"omitempty,oneof=memory chromem milvus"`
	Dir              string  `yaml:"dir"`
	MilvusAddress    string  `yaml:"milvus_address"`
	AdvisoryTopK     int     `yaml:"advisory_top_k" validate:"gte=0"`
	AdvisoryMinScore float64 `yaml:"advisory_min_score" validate:"gte=0,lte=1"`
	SchemeTopK       int     `yaml:"scheme_top_k" validate:"gte=0"`
}

// SessionConfig tunes conversation memory.
type SessionConfig struct {
	TurnHistory int `yaml:"turn_history" validate:"gte=1"`
}

// CorpusConfig points at the seed documents.
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// ConfigurationError reports an unusable configuration. It is the only
// error this package returns and is always startup-fatal.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: logging.Config{Level: "info", Console: true},
		LLM: LLMConfig{
			Model:       DefaultLLMModel,
			Temperature: DefaultLLMTemperature,
			MaxTokens:   DefaultLLMMaxTokens,
		},
		Embedder: EmbedderConfig{},
		Weather:  WeatherConfig{TimeoutSeconds: DefaultRequestTimeout},
		Places: PlacesConfig{
			CacheTTLSeconds:   DefaultPlacesCacheTTL,
			RateLimitCalls:    DefaultPlacesRateLimit,
			RateWindowSeconds: DefaultPlacesRateWindow,
			TimeoutSeconds:    DefaultRequestTimeout,
		},
		FPO: FPOConfig{MaxResults: DefaultMaxFPOResults},
		Vector: VectorConfig{
			Engine:           "memory",
			Dir:              DefaultVectorDir,
			AdvisoryTopK:     DefaultAdvisoryTopK,
			AdvisoryMinScore: DefaultAdvisoryMinScore,
			SchemeTopK:       DefaultSchemeTopK,
		},
		Session: SessionConfig{TurnHistory: DefaultTurnHistory},
		Corpus:  CorpusConfig{Dir: DefaultCorpusDir},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, &ConfigurationError{Field: path, Err: err}
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigurationError{Field: path, Err: err}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills unset fields from the environment. SAHAYAK_* variables
// win over the config file; canonical provider keys only fill blanks.
func (c *Config) applyEnv() {
	if v := os.Getenv("SAHAYAK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SAHAYAK_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("SAHAYAK_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("SAHAYAK_VECTOR_ENGINE"); v != "" {
		c.Vector.Engine = v
	}
	if v := os.Getenv("SAHAYAK_VECTOR_DIR"); v != "" {
		c.Vector.Dir = v
	}
	if v := os.Getenv("SAHAYAK_CORPUS_DIR"); v != "" {
		c.Corpus.Dir = v
	}
	if v := os.Getenv("SAHAYAK_TURN_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.TurnHistory = n
		}
	}

	if c.LLM.APIKey == "" {
		c.LLM.APIKey = providerKey(c.LLM.Provider)
	}
	if c.Embedder.APIKey == "" {
		if c.Embedder.Provider == c.LLM.Provider && c.LLM.APIKey != "" {
			c.Embedder.APIKey = c.LLM.APIKey
		} else {
			c.Embedder.APIKey = providerKey(c.Embedder.Provider)
		}
	}
	if c.Weather.OpenWeatherKey == "" {
		c.Weather.OpenWeatherKey = os.Getenv("OPENWEATHER_API_KEY")
	}
	if c.Weather.VisualCrossingKey == "" {
		c.Weather.VisualCrossingKey = os.Getenv("VISUAL_CROSSING_API_KEY")
	}
	if c.Places.GeoapifyKey == "" {
		if v := os.Getenv("GEOAPIFY_API_KEY"); v != "" {
			c.Places.GeoapifyKey = v
		} else {
			c.Places.GeoapifyKey = os.Getenv("GEOAPIFY_MAPS_API")
		}
	}
	if c.Places.FoursquareKey == "" {
		c.Places.FoursquareKey = os.Getenv("FOURSQUARE_API_KEY")
	}
	if c.FPO.S3Bucket == "" {
		c.FPO.S3Bucket = os.Getenv("SAHAYAK_FPO_S3_BUCKET")
	}
	if c.FPO.S3Key == "" {
		c.FPO.S3Key = os.Getenv("SAHAYAK_FPO_S3_KEY")
	}
}

func providerKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "cohere":
		return os.Getenv("COHERE_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}

// Validate checks structural constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ConfigurationError{Err: err}
	}
	if c.LLM.Provider != "" && c.LLM.APIKey == "" {
		return &ConfigurationError{
			Field: "llm.api_key",
			Err:   fmt.Errorf("provider %q configured without an API key", c.LLM.Provider),
		}
	}
	if c.Embedder.Provider != "" && c.Embedder.APIKey == "" {
		return &ConfigurationError{
			Field: "embedder.api_key",
			Err:   fmt.Errorf("provider %q configured without an API key", c.Embedder.Provider),
		}
	}
	if c.Vector.Engine == "milvus" && c.Vector.MilvusAddress == "" {
		return &ConfigurationError{
			Field: "vector.milvus_address",
			Err:   fmt.Errorf("milvus engine configured without an address"),
		}
	}
	return nil
}
