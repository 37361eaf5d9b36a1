package engine_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/config"
	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/generator"
)

func TestFromConfig(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	got, err := engine.FromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, engine.DefaultConfig().Routing, got.Routing)
	assert.Equal(t, engine.DefaultConfig().Playback, got.Playback)
	assert.Equal(t, generator.DefaultTiers(), got.Tiers)
	assert.True(t, got.RequeueOnStart)
}

func TestFromConfig_TiersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers:\n  - name: only\n    period: 10s\n    min_total: 50000\n    max_total: 60000\n"), 0o600))

	t.Setenv("ENGINE_TIERS_FILE", path)
	t.Setenv("ENGINE_VIP_THRESHOLD", "5000000")

	cfg, err := config.Load()
	require.NoError(t, err)

	got, err := engine.FromConfig(cfg)
	require.NoError(t, err)

	require.Len(t, got.Tiers, 1)
	assert.Equal(t, 10*time.Second, got.Tiers[0].Period)
	assert.Equal(t, int64(5_000_000*100), got.Routing.VIPThreshold)

	t.Setenv("ENGINE_TIERS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err = config.Load()
	require.NoError(t, err)

	_, err = engine.FromConfig(cfg)
	assert.Error(t, err)
}
