package harvestconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithYAML_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadWithYAML("")
	require.NoError(t, err)
	assert.Equal(t, 0.37, cfg.Tax.ShortTermRate)
	assert.Equal(t, 30, cfg.WashSale.BeforeDays)
	assert.Equal(t, "balanced", cfg.Selector.OptimizationLevel)
}

func TestLoadWithYAML_EnvOverridesDefault(t *testing.T) {
	os.Setenv("TAX_SHORT_TERM_RATE", "0.5")
	defer os.Unsetenv("TAX_SHORT_TERM_RATE")

	cfg, err := LoadWithYAML("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Tax.ShortTermRate)
}

func TestLoadWithYAML_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadWithYAML("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadWithYAML_ParsesFileOverrides(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("selector:\n  max_lots: 25\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := LoadWithYAML(f.Name())
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Selector.MaxLots)
}
