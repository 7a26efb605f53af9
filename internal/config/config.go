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
	HubSpot   HubSpotConfig   `yaml:"hubspot" mapstructure:"hubspot"`
	Octave    OctaveConfig    `yaml:"octave" mapstructure:"octave"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Slack     SlackConfig     `yaml:"slack" mapstructure:"slack"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Supersend SupersendConfig `yaml:"supersend" mapstructure:"supersend"`
	Calling   CallingConfig   `yaml:"calling" mapstructure:"calling"`
	Forge     ForgeConfig     `yaml:"forge" mapstructure:"forge"`
	Sessions  SessionsConfig  `yaml:"sessions" mapstructure:"sessions"`
	Dedup     DedupConfig     `yaml:"dedup" mapstructure:"dedup"`
	Signal    SignalConfig    `yaml:"signal" mapstructure:"signal"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HubSpotConfig holds HubSpot API credentials and account identifiers.
type HubSpotConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	PortalID  string `yaml:"portal_id" mapstructure:"portal_id"`
	CreatorID string `yaml:"creator_id" mapstructure:"creator_id"`
}

// OctaveConfig holds the Octave API key and per-task agent OIDs.
type OctaveConfig struct {
	Key                string `yaml:"key" mapstructure:"key"`
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	ContentAgent       string `yaml:"content_agent" mapstructure:"content_agent"`
	QualifyCompany     string `yaml:"qualify_company_agent" mapstructure:"qualify_company_agent"`
	QualifyPerson      string `yaml:"qualify_person_agent" mapstructure:"qualify_person_agent"`
	ProspectorAgent    string `yaml:"prospector_agent" mapstructure:"prospector_agent"`
	EnrichCompanyAgent string `yaml:"enrich_company_agent" mapstructure:"enrich_company_agent"`
	EnrichPersonAgent  string `yaml:"enrich_person_agent" mapstructure:"enrich_person_agent"`
}

// NotionConfig holds Notion API credentials and the campaigns database.
type NotionConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	CampaignsDB string `yaml:"campaigns_db" mapstructure:"campaigns_db"`
}

// SlackConfig holds the dial-sheet webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
	ChannelID  string `yaml:"channel_id" mapstructure:"channel_id"`
}

// AnthropicConfig holds Anthropic API settings for follow-up emails.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SupersendConfig holds Supersend sequence API settings.
type SupersendConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CallingConfig configures call-sheet generation.
type CallingConfig struct {
	// DisplayTimezone controls the timezone block labels are rendered in.
	// Scheduling math always runs in ET; only labels change.
	DisplayTimezone string `yaml:"display_timezone" mapstructure:"display_timezone"`
	QualThreshold   int    `yaml:"qual_threshold" mapstructure:"qual_threshold"`
	// PacingSecs is the courtesy delay between per-contact generation calls.
	PacingSecs float64 `yaml:"pacing_secs" mapstructure:"pacing_secs"`
}

// ForgeConfig configures the prospecting pipeline worker pools.
type ForgeConfig struct {
	MaxWorkers       int `yaml:"max_workers" mapstructure:"max_workers"`
	EnrichMaxWorkers int `yaml:"enrich_max_workers" mapstructure:"enrich_max_workers"`
}

// SessionsConfig configures on-disk session persistence.
type SessionsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// DedupConfig configures the signal dedup store.
type DedupConfig struct {
	Path           string `yaml:"path" mapstructure:"path"`
	CooldownHours  int    `yaml:"cooldown_hours" mapstructure:"cooldown_hours"`
	SweepThreshold int    `yaml:"sweep_threshold" mapstructure:"sweep_threshold"`
}

// SignalConfig configures signal webhook routing.
type SignalConfig struct {
	RoutesPath    string `yaml:"routes_path" mapstructure:"routes_path"`
	WebhookAPIKey string `yaml:"webhook_api_key" mapstructure:"webhook_api_key"`
}

// RetryConfig configures outbound HTTP retry bounds.
type RetryConfig struct {
	MaxAttempts    int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoff     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("COLDCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 5001)
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("octave.base_url", "https://app.octavehq.com/api/v2")
	v.SetDefault("supersend.base_url", "https://api.supersend.io/v1")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("calling.display_timezone", "US/Pacific")
	v.SetDefault("calling.qual_threshold", 8)
	v.SetDefault("calling.pacing_secs", 1.0)
	v.SetDefault("forge.max_workers", 5)
	v.SetDefault("forge.enrich_max_workers", 3)
	v.SetDefault("sessions.dir", "sessions")
	v.SetDefault("dedup.path", "sessions/signal_dedup.db")
	v.SetDefault("dedup.cooldown_hours", 24)
	v.SetDefault("dedup.sweep_threshold", 1000)
	v.SetDefault("signal.routes_path", "routes.yaml")
	v.SetDefault("retry.max_attempts", 4)
	v.SetDefault("retry.initial_backoff_ms", 2000)
	v.SetDefault("retry.max_backoff_ms", 30000)

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
