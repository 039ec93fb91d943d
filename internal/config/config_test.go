package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luipir/geodiff-action/internal/types"
)

func TestLoad(t *testing.T) {
	t.Run("reads action inputs from environment", func(t *testing.T) {
		t.Setenv("INPUT_BASE_FILE", "data/layers.gpkg")
		t.Setenv("INPUT_COMPARE_FILE", "data/layers_old.gpkg")
		t.Setenv("INPUT_OUTPUT_FORMAT", "summary")
		t.Setenv("INPUT_SUMMARY", "false")
		t.Setenv("INPUT_HISTORY_POLICY", "strict")
		t.Setenv("INPUT_TOKEN", "sekrit")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "data/layers.gpkg", cfg.BaseFile)
		assert.Equal(t, "data/layers_old.gpkg", cfg.CompareFile)
		assert.Equal(t, types.OutputFormatSummary, cfg.Format())
		assert.False(t, cfg.Summary)
		assert.Equal(t, types.HistoryPolicyStrict, cfg.Policy())
		assert.Equal(t, "sekrit", cfg.Token)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("INPUT_BASE_FILE", "data/layers.gpkg")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, types.OutputFormatJSON, cfg.Format())
		assert.True(t, cfg.Summary)
		assert.Equal(t, types.HistoryPolicyLenient, cfg.Policy())
		assert.Empty(t, cfg.CompareFile)
	})

	t.Run("requires base_file", func(t *testing.T) {
		t.Setenv("INPUT_BASE_FILE", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_file is required")
	})
}

func TestValidate(t *testing.T) {
	t.Run("normalizes enum casing and whitespace", func(t *testing.T) {
		cfg := &Config{
			BaseFile:      "  data/layers.gpkg ",
			OutputFormat:  " JSON ",
			HistoryPolicy: "Strict",
		}

		require.NoError(t, Validate(cfg))
		assert.Equal(t, "data/layers.gpkg", cfg.BaseFile)
		assert.Equal(t, types.OutputFormatJSON, cfg.Format())
		assert.Equal(t, types.HistoryPolicyStrict, cfg.Policy())
	})

	t.Run("rejects unknown output format", func(t *testing.T) {
		cfg := &Config{BaseFile: "a.gpkg", OutputFormat: "xml"}

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output_format")
	})

	t.Run("rejects unknown history policy", func(t *testing.T) {
		cfg := &Config{BaseFile: "a.gpkg", HistoryPolicy: "maybe"}

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid history_policy")
	})

	t.Run("rejects non-https slack webhook", func(t *testing.T) {
		cfg := &Config{BaseFile: "a.gpkg", SlackWebhook: "http://hooks.slack.com/x"}

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})
}
