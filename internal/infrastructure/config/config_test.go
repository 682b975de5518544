package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/config"
)

func writeConfigFile(t *testing.T, path, appName string) {
	t.Helper()

	content := "app:\n  name: " + appName + "\nserver:\n  port: 9090\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "nanimeshi-test")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "nanimeshi-test", cfg.App.Name)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, config.BackendFile, cfg.Storage.Backend)
	require.Equal(t, "llama-3.3-70b-versatile", cfg.AI.Model)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "nanimeshi", cfg.App.Name)
	require.Equal(t, 8080, cfg.Server.Port)
}

// A config file edit after startup must not mutate the struct already
// handed to running components; it is shared without synchronization,
// so changes apply on restart only.
func TestFileChangeDoesNotMutateLoadedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "nanimeshi-test")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "nanimeshi-test", cfg.App.Name)

	writeConfigFile(t, path, "renamed")

	// Give the file watcher time to deliver the change event.
	deadline := time.After(500 * time.Millisecond)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			require.Equal(t, "nanimeshi-test", cfg.App.Name)
			require.Equal(t, 9090, cfg.Server.Port)
			return
		case <-tick.C:
			require.Equal(t, "nanimeshi-test", cfg.App.Name)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty app name", func(c *config.Config) { c.App.Name = "" }},
		{"port out of range", func(c *config.Config) { c.Server.Port = 0 }},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "cloud" }},
		{"file backend without path", func(c *config.Config) {
			c.Storage.Backend = config.BackendFile
			c.Storage.Path = ""
		}},
		{"redis backend without host", func(c *config.Config) {
			c.Storage.Backend = config.BackendRedis
			c.Redis.Host = ""
		}},
		{"missing model", func(c *config.Config) { c.AI.Model = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)

			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
