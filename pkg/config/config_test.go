package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.Server.MaxResults)
	assert.Equal(t, 4, cfg.Server.Workers)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 24, cfg.CLI.DefaultLimit)
}

func TestFetchTimeout(t *testing.T) {
	assert.Zero(t, FetchConfig{TimeoutSeconds: 0}.Timeout())
	assert.Zero(t, FetchConfig{TimeoutSeconds: -5}.Timeout())
	assert.Equal(t, 5*time.Second, FetchConfig{TimeoutSeconds: 5}.Timeout())
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
max_results = 50
workers = 8

[fetch]
timeout_seconds = 0
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Server.MaxResults)
	assert.Equal(t, 8, cfg.Server.Workers)
	assert.Zero(t, cfg.Fetch.Timeout())
	assert.Equal(t, 24, cfg.CLI.DefaultLimit)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
max_results = 10
workers = "many"

[cli]
default_limit = 5
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Server.MaxResults)
	assert.Equal(t, 4, cfg.Server.Workers)
	assert.Equal(t, 5, cfg.CLI.DefaultLimit)
}

func TestLoadConfigBrokenFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nmax_results = "), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_results = 7\n"), 0o644))

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, cfg.Server.MaxResults)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 8)
	require.NoError(t, Watch(ctx, path, func(cfg *Config) {
		changes <- cfg
	}))

	updated := DefaultConfig()
	updated.Server.MaxResults = 12
	require.NoError(t, SaveConfig(updated, path))

	require.Eventually(t, func() bool {
		for {
			select {
			case cfg := <-changes:
				if cfg.Server.MaxResults == 12 {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 20*time.Millisecond)
}
