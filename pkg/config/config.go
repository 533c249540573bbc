// Package config resolves service configuration once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Server defaults
const (
	DefaultPort        = "8080"
	DefaultDatabaseURL = "sqlite://data.db"
)

// HTTP server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 30 * time.Second
)

// WebSocket configuration
const (
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSBroadcastBuffer = 256
	WSChannelBuffer   = 10
	WSWriteDeadline   = 10 * time.Second
	WSReadDeadline    = 60 * time.Second
	WSPingInterval    = 30 * time.Second
)

// Config holds everything the process needs. It is resolved once in main
// and passed down explicitly; nothing reads configuration mid-request.
type Config struct {
	// Port is the HTTP listen port.
	Port string `mapstructure:"port"`

	// APIKey guards ingestion when non-empty. Clients present it in the
	// X-API-Key header. An empty key disables the check.
	APIKey string `mapstructure:"api_key"`

	// DatabaseURL selects and configures the storage backend, e.g.
	// sqlite://data.db, postgres://user@host/db, badger:///var/lib/pb.
	DatabaseURL string `mapstructure:"database_url"`
}

// Load resolves configuration from an optional pulseboard.yaml and the
// environment. The environment wins: PORT, API_KEY and DATABASE_URL.
func Load() (*Config, error) {
	viper.SetConfigName("pulseboard")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/pulseboard")

	viper.SetDefault("port", DefaultPort)
	viper.SetDefault("api_key", "")
	viper.SetDefault("database_url", DefaultDatabaseURL)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
