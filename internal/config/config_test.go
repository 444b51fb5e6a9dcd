package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 5, cfg.WorkerPoolSize)
	assert.Equal(t, 4096, cfg.ChunkSize)
	assert.Equal(t, 60*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 60*time.Second, cfg.ReadTimeout)
	assert.False(t, cfg.RemovePartial)

	info, err := os.Stat(cfg.DownloadDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FD_HTTP_PORT", "9090")
	t.Setenv("FD_CHUNK_SIZE", "65536")
	t.Setenv("FD_READ_TIMEOUT", "5s")
	t.Setenv("FD_REMOVE_PARTIAL", "true")
	t.Setenv("FD_DOWNLOAD_DIR", filepath.Join(dir, "files"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 65536, cfg.ChunkSize)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.RemovePartial)
	assert.DirExists(t, filepath.Join(dir, "files"))
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FD_WORKER_POOL_SIZE=7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FD_WORKER_POOL_SIZE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.WorkerPoolSize)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FD_WORKER_POOL_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		HTTPPort:       8080,
		WorkerPoolSize: 1,
		MaxURLsPerTask: 1,
		ChunkSize:      4096,
		DownloadDir:    "d",
		StateFile:      "s.json",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.HTTPPort = 70000 }},
		{"no workers", func(c *Config) { c.WorkerPoolSize = 0 }},
		{"no urls", func(c *Config) { c.MaxURLsPerTask = 0 }},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }},
		{"negative timeout", func(c *Config) { c.ReadTimeout = -time.Second }},
		{"empty download dir", func(c *Config) { c.DownloadDir = "" }},
		{"empty state file", func(c *Config) { c.StateFile = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
