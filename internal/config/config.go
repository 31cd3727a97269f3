// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Proxycurl ProxycurlConfig `yaml:"proxycurl" mapstructure:"proxycurl"`
	Brave     BraveConfig     `yaml:"brave" mapstructure:"brave"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Research  ResearchConfig  `yaml:"research" mapstructure:"research"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Dispatch  DispatchConfig  `yaml:"dispatch" mapstructure:"dispatch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProxycurlConfig holds the professional-profile provider settings.
type ProxycurlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// BraveConfig holds the news search provider settings.
type BraveConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Count   int    `yaml:"count" mapstructure:"count"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (preferred website scraper
// when a key is configured).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds generative-text provider settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ResearchConfig configures the research aggregator's per-provider timeouts
// and rate limits. Rates are requests per second; the worst-case external
// call concurrency is campaign_concurrency * lead_concurrency * 3, so these
// limits are what actually protect third-party quotas.
type ResearchConfig struct {
	ProfileTimeoutSecs int     `yaml:"profile_timeout_secs" mapstructure:"profile_timeout_secs"`
	WebsiteTimeoutSecs int     `yaml:"website_timeout_secs" mapstructure:"website_timeout_secs"`
	NewsTimeoutSecs    int     `yaml:"news_timeout_secs" mapstructure:"news_timeout_secs"`
	ProfileRate        float64 `yaml:"profile_rate" mapstructure:"profile_rate"`
	WebsiteRate        float64 `yaml:"website_rate" mapstructure:"website_rate"`
	NewsRate           float64 `yaml:"news_rate" mapstructure:"news_rate"`
	ContentMaxChars    int     `yaml:"content_max_chars" mapstructure:"content_max_chars"`
}

// PipelineConfig configures per-campaign lead processing.
type PipelineConfig struct {
	LeadConcurrency int `yaml:"lead_concurrency" mapstructure:"lead_concurrency"`
}

// DispatchConfig configures the campaign job dispatcher.
type DispatchConfig struct {
	CampaignConcurrency int `yaml:"campaign_concurrency" mapstructure:"campaign_concurrency"`
	MaxAttempts         int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffSecs  int `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EMAILTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv can fill them in
	// even without a config file.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("proxycurl.key", "")
	v.SetDefault("brave.key", "")
	v.SetDefault("jina.key", "")
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("proxycurl.base_url", "https://nubela.co/proxycurl")
	v.SetDefault("brave.base_url", "https://api.search.brave.com")
	v.SetDefault("brave.count", 5)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("research.profile_timeout_secs", 30)
	v.SetDefault("research.website_timeout_secs", 30)
	v.SetDefault("research.news_timeout_secs", 15)
	v.SetDefault("research.profile_rate", 5)
	v.SetDefault("research.website_rate", 10)
	v.SetDefault("research.news_rate", 10)
	v.SetDefault("research.content_max_chars", 3000)
	v.SetDefault("pipeline.lead_concurrency", 10)
	v.SetDefault("dispatch.campaign_concurrency", 5)
	v.SetDefault("dispatch.max_attempts", 3)
	v.SetDefault("dispatch.initial_backoff_secs", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
