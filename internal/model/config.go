package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MailSourceConfig holds the IMAP settings for the FogBugz notification
// mailbox. The password is resolved through the credential store; Password
// here is a plaintext fallback for setups without a keyring.
type MailSourceConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
}

// Configured reports whether the mail source has enough settings to run.
func (c MailSourceConfig) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// TrackerConfig describes one bug tracker entry; the first entry is the
// default tracker for tasks referenced by notifications.
type TrackerConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Product  string `mapstructure:"product" yaml:"product"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// SMTPConfig holds the outbound mail settings for reminder delivery.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// ReminderConfig controls the update-hours reminder job.
type ReminderConfig struct {
	// Days is how far back to compare remaining hours against.
	Days int `mapstructure:"days" yaml:"days"`

	// From is the sender address for reminder mail.
	From string `mapstructure:"from" yaml:"from"`

	// Managers are bcc'd on every reminder.
	Managers []string `mapstructure:"managers" yaml:"managers"`

	SMTP SMTPConfig `mapstructure:"smtp" yaml:"smtp"`
}

// PushSourceConfig controls the GitHub push-event adapter.
type PushSourceConfig struct {
	// Enabled gates payload processing; the adapter is administratively
	// disabled by default.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DisplayConfig holds timeline viewer preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	DBPath          string           `mapstructure:"db_path" yaml:"db_path"`
	PollIntervalSec int              `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	Mail            MailSourceConfig `mapstructure:"mail" yaml:"mail"`
	Trackers        []TrackerConfig  `mapstructure:"trackers" yaml:"trackers"`
	Push            PushSourceConfig `mapstructure:"push" yaml:"push"`
	Reminder        ReminderConfig   `mapstructure:"reminder" yaml:"reminder"`
	Display         DisplayConfig    `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/berserk/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "berserk", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		DBPath:          filepath.Join(home, ".local", "share", "berserk", "berserk.db"),
		PollIntervalSec: 300,
		Mail: MailSourceConfig{
			Port:    "993",
			TLS:     true,
			Mailbox: "INBOX",
		},
		Reminder: ReminderConfig{Days: 2},
		Display:  DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("poll_interval_sec", 300)
	v.SetDefault("mail.port", "993")
	v.SetDefault("mail.tls", true)
	v.SetDefault("mail.mailbox", "INBOX")
	v.SetDefault("reminder.days", 2)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("db_path", cfg.DBPath)
	v.Set("poll_interval_sec", cfg.PollIntervalSec)
	v.Set("mail", cfg.Mail)
	v.Set("trackers", cfg.Trackers)
	v.Set("push", cfg.Push)
	v.Set("reminder", cfg.Reminder)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
