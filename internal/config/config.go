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
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Places       PlacesConfig       `yaml:"places" mapstructure:"places"`
	CustomSearch CustomSearchConfig `yaml:"customsearch" mapstructure:"customsearch"`
	Anthropic    AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity   PerplexityConfig   `yaml:"perplexity" mapstructure:"perplexity"`
	Workflow     WorkflowConfig     `yaml:"workflow" mapstructure:"workflow"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	// Environment selects the table prefix: anything other than
	// "production" reads and writes dev_-prefixed tables.
	Environment string `yaml:"environment" mapstructure:"environment"`
	TablePrefix string `yaml:"table_prefix" mapstructure:"table_prefix"`
}

// Prefix returns the effective table prefix for the configured environment.
func (c StoreConfig) Prefix() string {
	if c.TablePrefix != "" {
		return c.TablePrefix
	}
	if c.Environment == "production" {
		return ""
	}
	return "dev_"
}

// PlacesConfig holds Google Places API settings. An empty key soft-disables
// the places source rather than failing startup.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CustomSearchConfig holds Google Custom Search API settings, shared by the
// generic web search and LinkedIn-scoped search sources.
type CustomSearchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	CSEID   string `yaml:"cse_id" mapstructure:"cse_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// RateLimit is the maximum outbound queries per second per source.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// WorkflowConfig configures lead generation runs.
type WorkflowConfig struct {
	MaxResultsPerMethod int `yaml:"max_results_per_method" mapstructure:"max_results_per_method"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port      int    `yaml:"port" mapstructure:"port"`
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token"`

	OAuthClientID     string `yaml:"oauth_client_id" mapstructure:"oauth_client_id"`
	OAuthClientSecret string `yaml:"oauth_client_secret" mapstructure:"oauth_client_secret"`
	OAuthRedirectURL  string `yaml:"oauth_redirect_url" mapstructure:"oauth_redirect_url"`
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
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("workflow.max_results_per_method", 20)
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("customsearch.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("customsearch.rate_limit", 5)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

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
