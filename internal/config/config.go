package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Catalog sources
	JikanBaseURL string // primary source, paced and retried
	AniListURL   string // alternate source, cached only

	// Catalog client tuning
	CacheTTLSeconds  int // request cache lifetime (default: 60)
	RequestGapMillis int // minimum gap between primary-source requests (default: 1100)

	// Server
	ServerPort string

	// Inbound rate limiting
	APIRateRPS   float64 // per-client requests per second (default: 10)
	APIRateBurst int     // per-client burst (default: 20)

	// Paths
	DatabaseFile  string // $CONFIG_DIR/anirank.db
	SessionsFile  string // $CONFIG_DIR/sessions.json
	BlocklistFile string // $CONFIG_DIR/blocklist.txt

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("JIKAN_BASE_URL", "https://api.jikan.moe/v4")
	viper.SetDefault("ANILIST_URL", "https://graphql.anilist.co")
	viper.SetDefault("CACHE_TTL_SECONDS", 60)
	viper.SetDefault("REQUEST_GAP_MILLIS", 1100)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("API_RATE_RPS", 10.0)
	viper.SetDefault("API_RATE_BURST", 20)
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "anirank")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		JikanBaseURL: viper.GetString("JIKAN_BASE_URL"),
		AniListURL:   viper.GetString("ANILIST_URL"),

		CacheTTLSeconds:  viper.GetInt("CACHE_TTL_SECONDS"),
		RequestGapMillis: viper.GetInt("REQUEST_GAP_MILLIS"),

		ServerPort: viper.GetString("SERVER_PORT"),

		APIRateRPS:   viper.GetFloat64("API_RATE_RPS"),
		APIRateBurst: viper.GetInt("API_RATE_BURST"),

		DatabaseFile:  filepath.Join(configDir, "anirank.db"),
		SessionsFile:  filepath.Join(configDir, "sessions.json"),
		BlocklistFile: filepath.Join(configDir, "blocklist.txt"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if config.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if config.RequestGapMillis <= 0 {
		return nil, fmt.Errorf("REQUEST_GAP_MILLIS must be positive")
	}

	return config, nil
}
