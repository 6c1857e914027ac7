// Package config loads MoodMuse configuration.
//
// Values are layered in order of precedence:
//
//  1. MOODMUSE_* environment variables (MOODMUSE_GATEWAY_BASE_URL -> gateway.base_url)
//  2. An optional YAML file (MOODMUSE_CONFIG, ./moodmuse.yaml, ~/.config/moodmuse/config.yaml)
//  3. Built-in defaults
package config

import (
	"time"
)

// Config is the complete MoodMuse configuration.
type Config struct {
	Gateway   GatewayConfig   `koanf:"gateway"`
	Feed      FeedConfig      `koanf:"feed"`
	Activity  ActivityConfig  `koanf:"activity"`
	Session   SessionConfig   `koanf:"session"`
	Log       LogConfig       `koanf:"log"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	DevServer DevServerConfig `koanf:"devserver"`
}

// GatewayConfig configures the recommendation backend client.
type GatewayConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type FeedConfig struct {
	PageSize int `koanf:"page_size" validate:"gte=1,lte=100"`
}

type ActivityConfig struct {
	Window int `koanf:"window" validate:"gte=1"`
}

// SessionConfig locates the persisted session. An empty CachePath means
// $XDG_CONFIG_HOME/moodmuse/session.json.
type SessionConfig struct {
	CachePath string `koanf:"cache_path"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// SpotifyConfig enables song enrichment when both credentials are set.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id" validate:"required_with=ClientSecret"`
	ClientSecret string `koanf:"client_secret" validate:"required_with=ClientID"`
}

// Enabled reports whether Spotify credentials are configured.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// DevServerConfig configures `moodmuse serve-dev`.
type DevServerConfig struct {
	Addr      string        `koanf:"addr" validate:"required"`
	Store     string        `koanf:"store" validate:"oneof=memory sqlite postgres"`
	DSN       string        `koanf:"dsn" validate:"required_unless=Store memory"`
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

func defaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Feed:     FeedConfig{PageSize: 20},
		Activity: ActivityConfig{Window: 10},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		DevServer: DevServerConfig{
			Addr:      "localhost:5000",
			Store:     "memory",
			JWTSecret: "moodmuse-dev-secret-change-me",
			TokenTTL:  time.Hour,
		},
	}
}
