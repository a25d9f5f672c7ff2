package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "HEADLINE_TRENDS_CONFIG"
	newsAPIKeyEnv       = "NEWSAPI_KEY"
	enrichmentAPIKeyEnv = "ENRICHMENT_API_KEY"
	workersEnv          = "ENRICHMENT_WORKERS"
	cacheBackendEnv     = "CACHE_BACKEND"
	cacheDirEnv         = "CACHE_DIR"
	cacheDSNEnv         = "CACHE_DSN"
	apiAddrEnv          = "API_ADDR"
	logLevelEnv         = "LOG_LEVEL"
	logFormatEnv        = "LOG_FORMAT"
)

// Cache backends understood by the application wiring.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// MaxPageSize is the largest page the headline API serves in one request.
const MaxPageSize = 100

// Validation errors.
var (
	ErrMissingNewsAPIURL    = errors.New("newsapi.baseUrl is required")
	ErrInvalidPageSize      = errors.New("newsapi.pageSize must be between 1 and 100")
	ErrMissingEnrichmentURL = errors.New("enrichment sentimentUrl, entitiesUrl and topicUrl are required")
	ErrInvalidTimeout       = errors.New("timeouts must be positive")
	ErrInvalidWorkers       = errors.New("enrichment.workers must be at least 1")
	ErrInvalidTemperature   = errors.New("enrichment.temperature must be between 0 and 2")
	ErrUnknownBackend       = errors.New("cache.backend must be one of: file, sqlite, postgres")
	ErrMissingCacheDir      = errors.New("cache.dir is required")
	ErrMissingCacheDSN      = errors.New("cache.dsn is required for postgres")
	ErrNoCountries          = errors.New("at least one country is required")
)

// Config holds every setting the pipeline, API server and CLI need.
type Config struct {
	NewsAPI    NewsAPIConfig    `yaml:"newsapi"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Cache      CacheConfig      `yaml:"cache"`
	API        APIConfig        `yaml:"api"`
	Countries  []string         `yaml:"countries"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// NewsAPIConfig describes the headline source.
type NewsAPIConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	APIKey   string        `yaml:"apiKey"`
	PageSize int           `yaml:"pageSize"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

// EnrichmentConfig wires the sentiment, entity and topic services.
type EnrichmentConfig struct {
	SentimentURL string        `yaml:"sentimentUrl"`
	EntitiesURL  string        `yaml:"entitiesUrl"`
	TopicURL     string        `yaml:"topicUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
	Temperature  float64       `yaml:"temperature"`
	Workers      int           `yaml:"workers"`
}

// CacheConfig selects where raw and cleaned tables live.
type CacheConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	DSN     string `yaml:"dsn"`
}

// APIConfig holds the read API server settings.
type APIConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration from defaults, an optional YAML file and environment overrides.
// An empty path falls back to HEADLINE_TRENDS_CONFIG; no file at all is fine.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)

		// temperature: 0 is a real setting; read it by presence.
		var explicit struct {
			Enrichment struct {
				Temperature *float64 `yaml:"temperature"`
			} `yaml:"enrichment"`
		}
		if err := yaml.Unmarshal(raw, &explicit); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if explicit.Enrichment.Temperature != nil {
			cfg.Enrichment.Temperature = *explicit.Enrichment.Temperature
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.normalize()

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.NewsAPI.BaseURL == "" {
		return ErrMissingNewsAPIURL
	}
	if c.NewsAPI.PageSize < 1 || c.NewsAPI.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	if c.Enrichment.SentimentURL == "" || c.Enrichment.EntitiesURL == "" || c.Enrichment.TopicURL == "" {
		return ErrMissingEnrichmentURL
	}
	if c.NewsAPI.Timeout <= 0 || c.Enrichment.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Enrichment.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.Enrichment.Temperature < 0 || c.Enrichment.Temperature > 2 {
		return ErrInvalidTemperature
	}

	switch c.Cache.Backend {
	case BackendFile, BackendSQLite:
		if c.Cache.Dir == "" {
			return ErrMissingCacheDir
		}
	case BackendPostgres:
		if c.Cache.DSN == "" {
			return ErrMissingCacheDSN
		}
	default:
		return ErrUnknownBackend
	}

	if len(c.Countries) == 0 {
		return ErrNoCountries
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv(enrichmentAPIKeyEnv); v != "" {
		c.Enrichment.APIKey = v
	}
	if v := os.Getenv(workersEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", workersEnv, err)
		}
		c.Enrichment.Workers = n
	}
	if v := os.Getenv(cacheBackendEnv); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(cacheDirEnv); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(cacheDSNEnv); v != "" {
		c.Cache.DSN = v
	}
	if v := os.Getenv(apiAddrEnv); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
	return nil
}

func (c *Config) normalize() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.NewsAPI.BaseURL = strings.TrimSuffix(c.NewsAPI.BaseURL, "/")

	countries := make([]string, 0, len(c.Countries))
	seen := map[string]bool{}
	for _, cc := range c.Countries {
		cc = strings.ToLower(strings.TrimSpace(cc))
		if cc == "" || seen[cc] {
			continue
		}
		seen[cc] = true
		countries = append(countries, cc)
	}
	c.Countries = countries
}

func mergeConfig(base, override Config) Config {
	if override.NewsAPI.BaseURL != "" {
		base.NewsAPI.BaseURL = override.NewsAPI.BaseURL
	}
	if override.NewsAPI.APIKey != "" {
		base.NewsAPI.APIKey = override.NewsAPI.APIKey
	}
	if override.NewsAPI.PageSize != 0 {
		base.NewsAPI.PageSize = override.NewsAPI.PageSize
	}
	if override.NewsAPI.Language != "" {
		base.NewsAPI.Language = override.NewsAPI.Language
	}
	if override.NewsAPI.Timeout != 0 {
		base.NewsAPI.Timeout = override.NewsAPI.Timeout
	}

	if override.Enrichment.SentimentURL != "" {
		base.Enrichment.SentimentURL = override.Enrichment.SentimentURL
	}
	if override.Enrichment.EntitiesURL != "" {
		base.Enrichment.EntitiesURL = override.Enrichment.EntitiesURL
	}
	if override.Enrichment.TopicURL != "" {
		base.Enrichment.TopicURL = override.Enrichment.TopicURL
	}
	if override.Enrichment.APIKey != "" {
		base.Enrichment.APIKey = override.Enrichment.APIKey
	}
	if override.Enrichment.Timeout != 0 {
		base.Enrichment.Timeout = override.Enrichment.Timeout
	}
	if override.Enrichment.Workers != 0 {
		base.Enrichment.Workers = override.Enrichment.Workers
	}

	if override.Cache.Backend != "" {
		base.Cache.Backend = override.Cache.Backend
	}
	if override.Cache.Dir != "" {
		base.Cache.Dir = override.Cache.Dir
	}
	if override.Cache.DSN != "" {
		base.Cache.DSN = override.Cache.DSN
	}

	if override.API.Addr != "" {
		base.API.Addr = override.API.Addr
	}
	if len(override.API.CORSOrigins) > 0 {
		base.API.CORSOrigins = override.API.CORSOrigins
	}

	if len(override.Countries) > 0 {
		base.Countries = override.Countries
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		NewsAPI: NewsAPIConfig{
			BaseURL:  "https://newsapi.org",
			PageSize: MaxPageSize,
			Language: "en",
			Timeout:  30 * time.Second,
		},
		Enrichment: EnrichmentConfig{
			SentimentURL: "https://cent.ischool-iot.net/api/azure/sentiment",
			EntitiesURL:  "https://cent.ischool-iot.net/api/azure/entityrecognition",
			TopicURL:     "https://cent.ischool-iot.net/api/genai/generate",
			Timeout:      60 * time.Second,
			Temperature:  0.3,
			Workers:      1,
		},
		Cache: CacheConfig{Backend: BackendFile, Dir: "cache"},
		API: APIConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Countries: []string{"us", "gb", "ca", "au"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
