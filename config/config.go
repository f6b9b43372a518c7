package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/duration"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration file. Secrets are never
// stored here; they come from the environment.
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty"`

	Server    *ServerConfig    `yaml:"server,omitempty"`
	Inference *InferenceConfig `yaml:"inference,omitempty"`
	Cache     *CacheConfig     `yaml:"cache,omitempty"`
	Compress  *CompressConfig  `yaml:"compress,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string   `yaml:"addr,omitempty"`
	AllowedOrigins  []string `yaml:"allowed_origins,omitempty"`
	ShutdownTimeout string   `yaml:"shutdown_timeout,omitempty"`
}

// InferenceConfig configures the generation endpoint.
type InferenceConfig struct {
	URL       string `yaml:"url,omitempty"`
	Model     string `yaml:"model,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	MaxTokens *int   `yaml:"max_tokens,omitempty"`
}

// CacheConfig sizes the result cache.
type CacheConfig struct {
	Capacity *int   `yaml:"capacity,omitempty"`
	TTL      string `yaml:"ttl,omitempty"`
}

// CompressConfig tunes prompt compression.
type CompressConfig struct {
	ReadmeChars *int `yaml:"readme_chars,omitempty"`
}

// Settings is the fully resolved configuration: defaults, then files, then
// environment.
type Settings struct {
	DefaultFormat string

	ListenAddr      string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	GitHubToken string

	InferenceURL       string
	InferenceModel     string
	InferenceAPIKey    string
	InferenceTimeout   time.Duration
	InferenceMaxTokens int

	CacheCapacity int
	CacheTTL      time.Duration

	ReadmeChars int
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".ghaudit"
	}
	return filepath.Join(configDir, "ghaudit")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".ghaudit.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then
// merges any local .ghaudit.yaml on top (local values take precedence).
// A .env file in the working directory is loaded into the environment
// first; variables already set are not overwritten.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{DefaultFormat: "table"}

	global, err := readFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if global != nil {
		cfg = mergeConfig(cfg, global)
	}

	local, err := readFile(LocalConfigPath())
	if err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}
	return cfg, nil
}

// readFile parses path, returning nil when it does not exist.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of base.
// Local values take precedence; unset local values preserve base values.
func mergeConfig(base, local *Config) *Config {
	result := &Config{DefaultFormat: first(local.DefaultFormat, base.DefaultFormat)}

	if base.Server != nil || local.Server != nil {
		b, l := deref(base.Server), deref(local.Server)
		result.Server = &ServerConfig{
			Addr:            first(l.Addr, b.Addr),
			AllowedOrigins:  b.AllowedOrigins,
			ShutdownTimeout: first(l.ShutdownTimeout, b.ShutdownTimeout),
		}
		if len(l.AllowedOrigins) > 0 {
			result.Server.AllowedOrigins = l.AllowedOrigins
		}
	}

	if base.Inference != nil || local.Inference != nil {
		b, l := deref(base.Inference), deref(local.Inference)
		result.Inference = &InferenceConfig{
			URL:       first(l.URL, b.URL),
			Model:     first(l.Model, b.Model),
			Timeout:   first(l.Timeout, b.Timeout),
			MaxTokens: firstPtr(l.MaxTokens, b.MaxTokens),
		}
	}

	if base.Cache != nil || local.Cache != nil {
		b, l := deref(base.Cache), deref(local.Cache)
		result.Cache = &CacheConfig{
			Capacity: firstPtr(l.Capacity, b.Capacity),
			TTL:      first(l.TTL, b.TTL),
		}
	}

	if base.Compress != nil || local.Compress != nil {
		b, l := deref(base.Compress), deref(local.Compress)
		result.Compress = &CompressConfig{ReadmeChars: firstPtr(l.ReadmeChars, b.ReadmeChars)}
	}

	return result
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func first(local, base string) string {
	if local != "" {
		return local
	}
	return base
}

func firstPtr[T any](local, base *T) *T {
	if local != nil {
		return local
	}
	return base
}

// Resolve applies defaults and environment overrides to c.
func (c *Config) Resolve() (Settings, error) {
	return c.ResolveWith(os.Getenv)
}

// ResolveWith is Resolve with a custom environment lookup.
func (c *Config) ResolveWith(getenv func(string) string) (Settings, error) {
	server := deref(c.Server)
	inf := deref(c.Inference)
	cc := deref(c.Cache)
	comp := deref(c.Compress)

	s := Settings{
		DefaultFormat:      first(c.DefaultFormat, "table"),
		ListenAddr:         first(server.Addr, constants.DefaultListenAddr),
		AllowedOrigins:     server.AllowedOrigins,
		GitHubToken:        getenv("GITHUB_TOKEN"),
		InferenceURL:       first(inf.URL, constants.DefaultInferenceURL),
		InferenceModel:     first(inf.Model, constants.DefaultInferenceModel),
		InferenceAPIKey:    getenv("OLLAMA_API_KEY"),
		InferenceMaxTokens: constants.DefaultMaxTokens,
		CacheCapacity:      constants.DefaultCacheCapacity,
		ReadmeChars:        constants.ReadmeCompressedChars,
	}
	if inf.MaxTokens != nil {
		s.InferenceMaxTokens = *inf.MaxTokens
	}
	if cc.Capacity != nil {
		s.CacheCapacity = *cc.Capacity
	}
	if comp.ReadmeChars != nil {
		s.ReadmeChars = *comp.ReadmeChars
	}

	if v := getenv("OLLAMA_API_URL"); v != "" {
		s.InferenceURL = v
	}
	if v := getenv("OLLAMA_MODEL"); v != "" {
		s.InferenceModel = v
	}
	if v := getenv("GHAUDIT_ADDR"); v != "" {
		s.ListenAddr = v
	} else if v := getenv("PORT"); v != "" {
		s.ListenAddr = ":" + strings.TrimPrefix(v, ":")
	}

	var err error
	if s.ShutdownTimeout, err = duration.OrDefault(server.ShutdownTimeout, constants.DefaultShutdownTimeout); err != nil {
		return Settings{}, fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	if s.InferenceTimeout, err = duration.OrDefault(inf.Timeout, constants.DefaultInferenceTimeout); err != nil {
		return Settings{}, fmt.Errorf("inference.timeout: %w", err)
	}
	if s.CacheTTL, err = duration.OrDefault(cc.TTL, constants.DefaultCacheTTL); err != nil {
		return Settings{}, fmt.Errorf("cache.ttl: %w", err)
	}

	switch {
	case s.CacheCapacity <= 0:
		return Settings{}, fmt.Errorf("cache.capacity must be positive, got %d", s.CacheCapacity)
	case s.InferenceMaxTokens <= 0:
		return Settings{}, fmt.Errorf("inference.max_tokens must be positive, got %d", s.InferenceMaxTokens)
	case s.ReadmeChars <= 0:
		return Settings{}, fmt.Errorf("compress.readme_chars must be positive, got %d", s.ReadmeChars)
	}
	return s, nil
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	capacity := constants.DefaultCacheCapacity
	maxTokens := constants.DefaultMaxTokens
	readmeChars := constants.ReadmeCompressedChars

	return &Config{
		DefaultFormat: "table",
		Server: &ServerConfig{
			Addr:            constants.DefaultListenAddr,
			AllowedOrigins:  []string{},
			ShutdownTimeout: duration.Format(constants.DefaultShutdownTimeout),
		},
		Inference: &InferenceConfig{
			URL:       constants.DefaultInferenceURL,
			Model:     constants.DefaultInferenceModel,
			Timeout:   duration.Format(constants.DefaultInferenceTimeout),
			MaxTokens: &maxTokens,
		},
		Cache: &CacheConfig{
			Capacity: &capacity,
			TTL:      duration.Format(constants.DefaultCacheTTL),
		},
		Compress: &CompressConfig{ReadmeChars: &readmeChars},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# ghaudit configuration file
# See: ghaudit config defaults  (for all available options)

# Output format for "ghaudit analyze": table, json or markdown
default_format: table

# Inference endpoint (OLLAMA_API_URL / OLLAMA_MODEL override these,
# OLLAMA_API_KEY is read from the environment only)
# inference:
#   url: http://localhost:8000/api/generate
#   model: llama3
#   timeout: 5m

# Result cache
# cache:
#   capacity: 100
#   ttl: 1h

# HTTP server (GHAUDIT_ADDR or PORT override addr)
# server:
#   addr: ":8080"
#   allowed_origins:
#     - http://localhost:3000
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
