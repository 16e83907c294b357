package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvSoxPath, EnvSoxTimeout, EnvMaxFailures, EnvFrameSec} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnv_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSoxPath, "/opt/sox/bin/sox")
	t.Setenv(EnvSoxTimeout, "90s")
	t.Setenv(EnvMaxFailures, "0")
	t.Setenv(EnvFrameSec, "0.25")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{SoxPath: "/opt/sox/bin/sox", Timeout: 90 * time.Second, MaxFailures: 0, FrameSec: 0.25}, cfg)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		EnvSoxTimeout:  "soon",
		EnvMaxFailures: "-1",
		EnvFrameSec:    "0",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "soxcorpus.env")
	require.NoError(t, os.WriteFile(path, []byte("SOX_PATH=/env/sox\nSOXCORPUS_MAX_FAILURES=9\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv(EnvSoxPath)
		os.Unsetenv(EnvMaxFailures)
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/sox", cfg.SoxPath)
	assert.Equal(t, 9, cfg.MaxFailures)
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSoxPath, "/from/process")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SOX_PATH=/from/file\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/process", cfg.SoxPath)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
