package config

import (
	"fmt"
	"strings"

	env "github.com/netflix/go-env"

	"github.com/luipir/geodiff-action/internal/types"
)

// Type alias for Config
type Config = types.Config

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	config, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadEnv loads configuration from environment variables without
// validating. The command validates after applying flag overrides.
func LoadEnv() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	return &config, nil
}

// Validate validates configuration values and normalizes enum inputs.
// It is called again by the command after flag overrides are applied.
func Validate(config *Config) error {
	config.BaseFile = strings.TrimSpace(config.BaseFile)
	config.CompareFile = strings.TrimSpace(config.CompareFile)
	config.OutputFormat = strings.ToLower(strings.TrimSpace(config.OutputFormat))
	config.HistoryPolicy = strings.ToLower(strings.TrimSpace(config.HistoryPolicy))

	if config.BaseFile == "" {
		return fmt.Errorf("base_file is required (set INPUT_BASE_FILE or --base-file)")
	}

	if config.OutputFormat == "" {
		config.OutputFormat = string(types.OutputFormatJSON)
	}
	if !config.Format().Valid() {
		return fmt.Errorf("invalid output_format %q: must be %q or %q",
			config.OutputFormat, types.OutputFormatJSON, types.OutputFormatSummary)
	}

	if config.HistoryPolicy == "" {
		config.HistoryPolicy = string(types.HistoryPolicyLenient)
	}
	if !config.Policy().Valid() {
		return fmt.Errorf("invalid history_policy %q: must be %q or %q",
			config.HistoryPolicy, types.HistoryPolicyLenient, types.HistoryPolicyStrict)
	}

	if config.SlackWebhook != "" && !strings.HasPrefix(config.SlackWebhook, "https://") {
		return fmt.Errorf("slack webhook must be an https URL")
	}

	return nil
}
