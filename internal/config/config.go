package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the planner.
type Config struct {
	RemoteBaseURL string `mapstructure:"REMOTE_BASE_URL"`
	MirrorPath    string `mapstructure:"MIRROR_PATH"`
	LogPath       string `mapstructure:"LOG_PATH"`

	// Telegram notification dispatch. When the token is empty notifications
	// fall back to the log.
	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`

	FlushInterval  time.Duration `mapstructure:"FLUSH_INTERVAL"`
	ResyncInterval time.Duration `mapstructure:"RESYNC_INTERVAL"`
	SweepInterval  time.Duration `mapstructure:"SWEEP_INTERVAL"`
}

// Load reads configuration from an optional .env file and the environment,
// applying defaults for everything but the remote base URL.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("MIRROR_PATH", "week_planner.db")
	viper.SetDefault("LOG_PATH", "logs/planner.log")
	viper.SetDefault("FLUSH_INTERVAL", 30*time.Second)
	viper.SetDefault("RESYNC_INTERVAL", 5*time.Minute)
	viper.SetDefault("SWEEP_INTERVAL", time.Hour)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.RemoteBaseURL == "" {
		return cfg, fmt.Errorf("REMOTE_BASE_URL is required")
	}

	return cfg, nil
}
