package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath      string `envconfig:"DB_PATH" default:"./data/fitcoach.db"`
	CanonicalTZ string `envconfig:"CANONICAL_TZ" default:"Europe/Kyiv"` // scheduling reference timezone
	AdminChatID int64  `envconfig:"ADMIN_CHAT_ID" default:"0"`          // pain alerts go here
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`           // debug|info|warn|error
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`          // healthz
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
