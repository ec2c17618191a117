package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Bot      BotConfig
	Mongo    MongoConfig
	Cleanup  CleanupConfig
	Payments PaymentsConfig
}

type BotConfig struct {
	Token         string
	AdminID       int64
	AdminUsername string
	ChannelURL    string
	ChannelID     int64
}

type MongoConfig struct {
	URI      string
	Database string
}

type CleanupConfig struct {
	RetentionDays int
}

type PaymentsConfig struct {
	UPIID string
}

// Load reads configuration from a .env file (if present) and the
// environment. Only the bot token is strictly required.
func Load() (*Config, error) {
	// Missing .env is fine in production; env vars take over.
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("DATABASE_NAME", "bgmi_tournament_bot")
	viper.SetDefault("TOURNAMENT_RETENTION_DAYS", 7)

	cfg := &Config{
		Bot: BotConfig{
			Token:         viper.GetString("TELEGRAM_TOKEN"),
			AdminID:       viper.GetInt64("ADMIN_ID"),
			AdminUsername: viper.GetString("ADMIN_USERNAME"),
			ChannelURL:    viper.GetString("CHANNEL_URL"),
			ChannelID:     viper.GetInt64("CHANNEL_ID"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("DATABASE_NAME"),
		},
		Cleanup: CleanupConfig{
			RetentionDays: viper.GetInt("TOURNAMENT_RETENTION_DAYS"),
		},
		Payments: PaymentsConfig{
			UPIID: viper.GetString("UPI_ID"),
		},
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN not set")
	}
	if cfg.Bot.AdminID == 0 {
		return nil, fmt.Errorf("ADMIN_ID not set")
	}
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI not set")
	}

	return cfg, nil
}
