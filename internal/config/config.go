// Package config provides YAML-based configuration loading for Switchboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// cronParser accepts standard 5-field cron expressions (minute, hour, dom,
// month, dow), matching what the digest scheduler runs.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config is the top-level Switchboard configuration, loaded from config.yaml.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Qualification QualificationConfig `yaml:"qualification"`
	Knowledge     KnowledgeConfig     `yaml:"knowledge"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Shopify       ShopifyConfig       `yaml:"shopify"`
	Notify        NotifyConfig        `yaml:"notify"`
	Digest        DigestConfig        `yaml:"digest"`
}

// ServerConfig holds settings for the HTTP ingress.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects and configures the session store backend.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// QualificationConfig holds the named thresholds of the scoring and
// agent-selection rules. Every value here is overridable; the defaults
// match the shipped behavior.
type QualificationConfig struct {
	// EngagementThreshold must be exceeded before a lead can qualify.
	EngagementThreshold int `yaml:"engagement_threshold"`
	// EngagementCeiling caps the accumulated engagement score per session.
	EngagementCeiling int `yaml:"engagement_ceiling"`
	// MaxMessages is the message count at which an unqualified lead is
	// marked unqualified.
	MaxMessages int `yaml:"max_messages"`
	// MinSignals is how many of {budget, product interest, use case/timeline}
	// must be present to qualify.
	MinSignals int `yaml:"min_signals"`
	// Lookback is the history window, in log entries, used for classifier
	// context and anti-thrash handoff suppression.
	Lookback int `yaml:"lookback"`
}

// KnowledgeConfig points at the knowledge content file.
type KnowledgeConfig struct {
	Path string `yaml:"path"` // optional; built-in defaults when empty
}

// OpenAIConfig configures the optional language-model enrichment step.
// Enrichment is disabled when APIKey is empty.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// ShopifyConfig configures the commerce-data collaborator used by the
// Account Manager agent. Disabled when Domain is empty.
type ShopifyConfig struct {
	Domain      string `yaml:"domain"` // e.g. "acme.myshopify.com"
	AccessToken string `yaml:"access_token"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// NotifyConfig selects the handoff/escalation notification platform.
type NotifyConfig struct {
	Platform string        `yaml:"platform"` // "", "slack", or "discord"
	Slack    SlackConfig   `yaml:"slack"`
	Discord  DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack notifier credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord notifier credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DigestConfig schedules the daily pipeline digest.
type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"` // 5-field cron expression
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with all defaults applied and no external
// services configured. Used by the local chat command and tests.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "switchboard.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Database == "" {
		c.Database.Database = "switchboard"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Qualification.EngagementThreshold == 0 {
		c.Qualification.EngagementThreshold = 3
	}
	if c.Qualification.EngagementCeiling == 0 {
		c.Qualification.EngagementCeiling = 20
	}
	if c.Qualification.MaxMessages == 0 {
		c.Qualification.MaxMessages = 15
	}
	if c.Qualification.MinSignals == 0 {
		c.Qualification.MinSignals = 2
	}
	if c.Qualification.Lookback == 0 {
		c.Qualification.Lookback = 10
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.TimeoutSec == 0 {
		c.OpenAI.TimeoutSec = 10
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 150
	}
	if c.Shopify.TimeoutSec == 0 {
		c.Shopify.TimeoutSec = 5
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = "0 9 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	switch c.Notify.Platform {
	case "", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("notify.platform %q is not supported (slack, discord)", c.Notify.Platform))
	}
	if c.Notify.Platform == "slack" && c.Notify.Slack.BotToken == "" {
		errs = append(errs, "notify.slack.bot_token is required when platform is slack")
	}
	if c.Notify.Platform == "discord" && c.Notify.Discord.BotToken == "" {
		errs = append(errs, "notify.discord.bot_token is required when platform is discord")
	}
	if c.Qualification.MinSignals > 3 {
		errs = append(errs, "qualification.min_signals cannot exceed 3")
	}
	if _, err := cronParser.Parse(c.Digest.Cron); err != nil {
		errs = append(errs, fmt.Sprintf("digest.cron %q is not a valid 5-field cron expression", c.Digest.Cron))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
