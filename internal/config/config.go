package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Feeds     FeedConfig
	Search    SearchConfig
	Fusion    FusionConfig
	Estimator EstimatorConfig
	Anthropic AnthropicConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port           int    `env:"SERVER_PORT" envDefault:"8080"`
	GinMode        string `env:"GIN_MODE" envDefault:"release"`
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// FeedConfig holds the upstream feed endpoints and credentials.
type FeedConfig struct {
	LTAAPIURL      string `env:"LTA_API_URL" envDefault:"https://datamall2.mytransport.sg/ltaodataservice/CarParkAvailabilityv2"`
	LTAAPIKey      string `env:"LTA_API_KEY"`
	DataGovAPIURL  string `env:"DATAGOV_API_URL" envDefault:"https://api.data.gov.sg/v1/transport/carpark-availability"`
	DataGovAPIKey  string `env:"DATAGOV_API_KEY"`
	TimeoutSeconds int    `env:"FEED_TIMEOUT" envDefault:"10"`
}

// SearchConfig holds search-related configuration.
type SearchConfig struct {
	MaxResults int `env:"SEARCH_MAX_RESULTS" envDefault:"100"`
}

// FusionConfig holds the feed interleave ratio used for browse queries.
// The housing feed publishes far more carparks than the transport feed, so
// browse results alternate InterleaveA transport entries with InterleaveB
// housing entries per round.
type FusionConfig struct {
	InterleaveA int `env:"FUSION_INTERLEAVE_A" envDefault:"1"`
	InterleaveB int `env:"FUSION_INTERLEAVE_B" envDefault:"2"`
}

// EstimatorConfig bounds the cost-estimation batch.
type EstimatorConfig struct {
	MaxCarparks int `env:"ESTIMATE_MAX_CARPARKS" envDefault:"10"`
	Workers     int `env:"ESTIMATE_WORKERS" envDefault:"5"`
}

// AnthropicConfig holds the cost-estimation oracle configuration.
type AnthropicConfig struct {
	APIKey         string `env:"ANTHROPIC_API_KEY"`
	APIBase        string `env:"ANTHROPIC_API_BASE" envDefault:"https://api.anthropic.com"`
	Model          string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-haiku-20240307"`
	MaxTokens      int    `env:"ANTHROPIC_MAX_TOKENS" envDefault:"500"`
	TimeoutSeconds int    `env:"ANTHROPIC_TIMEOUT" envDefault:"30"`
	Enabled        bool   `env:"-"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Fusion.InterleaveA <= 0 {
		cfg.Fusion.InterleaveA = 1
	}
	if cfg.Fusion.InterleaveB <= 0 {
		cfg.Fusion.InterleaveB = 2
	}
	if cfg.Estimator.Workers <= 0 {
		cfg.Estimator.Workers = 5
	}

	cfg.Anthropic.Enabled = cfg.Anthropic.APIKey != ""

	return cfg, nil
}
