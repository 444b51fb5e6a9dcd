package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	HTTPPort    int           `envconfig:"HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	WorkerPoolSize int `envconfig:"WORKER_POOL_SIZE" default:"5"`
	MaxURLsPerTask int `envconfig:"MAX_URLS_PER_TASK" default:"10"`

	ConnectTimeout      time.Duration `envconfig:"CONNECT_TIMEOUT" default:"60s"`
	ReadTimeout         time.Duration `envconfig:"READ_TIMEOUT" default:"60s"`
	MaxIdleConnsPerHost int           `envconfig:"MAX_IDLE_CONNS_PER_HOST" default:"16"`
	UserAgent           string        `envconfig:"USER_AGENT" default:"downloadtask/1.0"`
	ChunkSize           int           `envconfig:"CHUNK_SIZE" default:"4096"`
	RemovePartial       bool          `envconfig:"REMOVE_PARTIAL" default:"false"`
	AllowPrivateHosts   bool          `envconfig:"ALLOW_PRIVATE_HOSTS" default:"false"`

	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"./storage"`
	StateFile   string `envconfig:"STATE_FILE" default:"./state.json"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile       string `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.WorkerPoolSize <= 0 {
		return fmt.Errorf("worker pool size must be positive: %d", c.WorkerPoolSize)
	}

	if c.MaxURLsPerTask <= 0 {
		return fmt.Errorf("max URLs per task must be positive: %d", c.MaxURLsPerTask)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive: %d", c.ChunkSize)
	}

	if c.ConnectTimeout < 0 || c.ReadTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state file cannot be empty")
	}

	return nil
}
