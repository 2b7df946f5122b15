package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultMaxUploadMB = 50
	configFileName     = "config.toml"
	appDirName         = ".docassist"
)

// DefaultExtensions are the document formats the service accepts.
var DefaultExtensions = []string{".docx", ".xlsx", ".xls", ".pdf"}

// Config holds application configuration
type Config struct {
	APIURL          string   `toml:"api_url"`
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	RateLimit       float64  `toml:"rate_limit"` // requests per second, 0 = unlimited
	CacheTTLSeconds int      `toml:"cache_ttl_seconds"`
	TaskType        string   `toml:"task_type"`
	Extensions      []string `toml:"allowed_extensions"`
	MaxUploadMB     int      `toml:"max_upload_mb"`
	DataDir         string   `toml:"data_dir"` // sqlite database and logs
	Debug           bool     `toml:"debug"`
	Telemetry       bool     `toml:"telemetry"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := appDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, appDirName)
	}

	return Config{
		APIURL:          DefaultAPIURL,
		TimeoutSeconds:  60,
		CacheTTLSeconds: 600,
		TaskType:        string(session.TaskAnswer),
		Extensions:      append([]string(nil), DefaultExtensions...),
		MaxUploadMB:     DefaultMaxUploadMB,
		DataDir:         dataDir,
		Telemetry:       true,
	}
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(Default().DataDir, configFileName)
}

// Load builds the configuration from defaults, the TOML file at path and
// DOCASSIST_* environment variables, in that order. A missing file is only
// an error when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DOCASSIST_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("DOCASSIST_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DOCASSIST_TASK_TYPE"); v != "" {
		c.TaskType = v
	}
	if v := os.Getenv("DOCASSIST_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DOCASSIST_DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v := os.Getenv("DOCASSIST_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DOCASSIST_TIMEOUT_SECONDS: %w", err)
		}
		c.TimeoutSeconds = n
	}
	return nil
}

// Validate checks the configuration for values the client cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q", c.APIURL)
	}
	if _, err := session.ParseTaskType(c.TaskType); err != nil {
		return fmt.Errorf("invalid task_type: %w", err)
	}
	if c.TimeoutSeconds < 0 || c.CacheTTLSeconds < 0 || c.MaxUploadMB < 0 || c.RateLimit < 0 {
		return fmt.Errorf("timeouts, limits and sizes must not be negative")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("allowed_extensions must not be empty")
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}

// Timeout returns the HTTP timeout; zero means no timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long query responses are cached.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// MaxUploadBytes returns the upload size limit; zero means unlimited.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// DatabasePath returns the SQLite database location.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "docassist.db")
}

// LogDir returns the directory for log, trace and metric files.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DefaultTask returns the configured default task type.
func (c Config) DefaultTask() session.TaskType {
	t, err := session.ParseTaskType(c.TaskType)
	if err != nil {
		return session.TaskAnswer
	}
	return t
}

// Write saves the configuration as TOML, used by "docassist config init".
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
