package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".storefront"
	fileName = "config.yaml"
)

// Config represents the user's configuration
type Config struct {
	APIURL        string          `yaml:"api_url"`
	StateDir      string          `yaml:"state_dir"`
	LogLevel      string          `yaml:"log_level"`
	SessionTTL    time.Duration   `yaml:"session_ttl"`
	ToastTimeout  time.Duration   `yaml:"toast_timeout"`
	CartPoll      time.Duration   `yaml:"cart_poll"`
	GuardInterval time.Duration   `yaml:"guard_interval"` // 0 validates once at start
	HTTPTimeout   time.Duration   `yaml:"http_timeout"`
	PageSize      int             `yaml:"page_size"`
	AdminPageSize int             `yaml:"admin_page_size"`
	InvoiceDir    string          `yaml:"invoice_dir"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`

	// Source is the file the config was read from, empty for defaults
	Source string `yaml:"-"`
}

// TelemetryConfig holds OpenTelemetry export settings
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		APIURL:        "http://localhost:8080/api",
		LogLevel:      "info",
		SessionTTL:    7 * 24 * time.Hour,
		ToastTimeout:  1500 * time.Millisecond,
		CartPoll:      time.Second,
		HTTPTimeout:   30 * time.Second,
		PageSize:      9,
		AdminPageSize: 8,
		Telemetry: TelemetryConfig{
			ServiceName: "storefront",
		},
	}
}

// globalConfigDir returns the global config directory path (~/.storefront)
func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

// globalConfigPath returns the global config file path (~/.storefront/config.yaml)
func globalConfigPath() (string, error) {
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// projectConfigPath returns the project-level config path (.storefront/config.yaml in cwd)
func projectConfigPath() string {
	return filepath.Join(dirName, fileName)
}

// Exists checks if a config file exists (project or global)
func Exists() bool {
	if _, err := os.Stat(projectConfigPath()); err == nil {
		return true
	}
	path, err := globalConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config, checking project config first, then global, then
// applying STOREFRONT_* environment overrides.
func Load() (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	return load(projectConfigPath(), globalPath)
}

func load(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Source = path
		break
	}

	cfg.applyEnv()

	if cfg.StateDir == "" {
		dir, err := globalConfigDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}
	cfg.StateDir = expandHome(cfg.StateDir)
	cfg.InvoiceDir = expandHome(cfg.InvoiceDir)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIURL = envStr("STOREFRONT_API_URL", c.APIURL)
	c.StateDir = envStr("STOREFRONT_STATE_DIR", c.StateDir)
	c.LogLevel = envStr("STOREFRONT_LOG_LEVEL", c.LogLevel)
	c.InvoiceDir = envStr("STOREFRONT_INVOICE_DIR", c.InvoiceDir)
	c.SessionTTL = envDuration("STOREFRONT_SESSION_TTL", c.SessionTTL)
	c.GuardInterval = envDuration("STOREFRONT_GUARD_INTERVAL", c.GuardInterval)
	c.HTTPTimeout = envDuration("STOREFRONT_HTTP_TIMEOUT", c.HTTPTimeout)
	c.PageSize = envInt("STOREFRONT_PAGE_SIZE", c.PageSize)
	c.Telemetry.OTLPEndpoint = envStr("STOREFRONT_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.ToastTimeout <= 0 {
		return fmt.Errorf("toast_timeout must be positive, got %s", c.ToastTimeout)
	}
	if c.CartPoll <= 0 {
		return fmt.Errorf("cart_poll must be positive, got %s", c.CartPoll)
	}
	if c.GuardInterval < 0 {
		return fmt.Errorf("guard_interval must not be negative, got %s", c.GuardInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.PageSize < 1 || c.AdminPageSize < 1 {
		return fmt.Errorf("page sizes must be positive, got %d and %d", c.PageSize, c.AdminPageSize)
	}
	return nil
}

// LogDir is where the client writes its log file
func (c *Config) LogDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// DownloadDir is where invoices are saved
func (c *Config) DownloadDir() string {
	if c.InvoiceDir != "" {
		return c.InvoiceDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads")
	}
	return "."
}

// SaveToGlobal writes the config to the global location (~/.storefront/config.yaml)
func SaveToGlobal(cfg *Config) error {
	path, err := globalConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config as YAML to path
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
