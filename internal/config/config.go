// Package config handles configuration loading for NewsVani.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"    yaml:"search"`
	Retrieval RetrievalConfig `mapstructure:"retrieval" yaml:"retrieval"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	TTS       TTSConfig       `mapstructure:"tts"       yaml:"tts"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SearchConfig holds the structured search API settings (first tier).
type SearchConfig struct {
	Endpoint string `mapstructure:"endpoint"  yaml:"endpoint"`
	APIKey   string `mapstructure:"api_key"   yaml:"api_key"`
	EngineID string `mapstructure:"engine_id" yaml:"engine_id"`
}

// RetrievalConfig tunes the retrieval pipeline.
type RetrievalConfig struct {
	TargetCount        int `mapstructure:"target_count"         yaml:"target_count"`
	LowThreshold       int `mapstructure:"low_threshold"        yaml:"low_threshold"`
	PerSitePrimary     int `mapstructure:"per_site_primary"     yaml:"per_site_primary"`
	PerSiteAlternative int `mapstructure:"per_site_alternative" yaml:"per_site_alternative"`
	DeadlineSec        int `mapstructure:"deadline_sec"         yaml:"deadline_sec"` // overall retrieval deadline
}

// AnalysisConfig tunes the comparative aggregator.
type AnalysisConfig struct {
	MaxComparisons         int  `mapstructure:"max_comparisons"           yaml:"max_comparisons"`
	IncludeNeutralInCommon bool `mapstructure:"include_neutral_in_common" yaml:"include_neutral_in_common"`
}

// TTSConfig holds the speech rendering settings.
type TTSConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Language string `mapstructure:"language" yaml:"language"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsvani/config.yaml (home directory)
//  3. /etc/newsvani/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSVANI_<SECTION>_<KEY>, e.g., NEWSVANI_SEARCH_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsvani"))
	v.AddConfigPath("/etc/newsvani")

	v.SetEnvPrefix("NEWSVANI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("NEWSVANI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Search API defaults (no key by default: the tier is skipped)
	v.SetDefault("search.endpoint", "https://www.googleapis.com/customsearch/v1")

	// Retrieval defaults
	v.SetDefault("retrieval.target_count", 10)
	v.SetDefault("retrieval.low_threshold", 5)
	v.SetDefault("retrieval.per_site_primary", 5)
	v.SetDefault("retrieval.per_site_alternative", 3)
	v.SetDefault("retrieval.deadline_sec", 90)

	// Analysis defaults
	v.SetDefault("analysis.max_comparisons", 3)
	v.SetDefault("analysis.include_neutral_in_common", false)

	// TTS defaults
	v.SetDefault("tts.language", "hi")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEWSVANI_SEARCH_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	}
	if id := os.Getenv("NEWSVANI_SEARCH_ENGINE_ID"); id != "" {
		cfg.Search.EngineID = id
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
