package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func intPtr(n int) *int { return &n }

func TestResolveDefaults(t *testing.T) {
	s, err := (&Config{}).ResolveWith(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "table", s.DefaultFormat)
	assert.Equal(t, ":8080", s.ListenAddr)
	assert.Equal(t, 10*time.Second, s.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8000/api/generate", s.InferenceURL)
	assert.Equal(t, "llama3", s.InferenceModel)
	assert.Equal(t, 5*time.Minute, s.InferenceTimeout)
	assert.Equal(t, 4000, s.InferenceMaxTokens)
	assert.Equal(t, 100, s.CacheCapacity)
	assert.Equal(t, time.Hour, s.CacheTTL)
	assert.Equal(t, 800, s.ReadmeChars)
	assert.Empty(t, s.GitHubToken)
	assert.Empty(t, s.InferenceAPIKey)
}

func TestResolveFileValues(t *testing.T) {
	cfg := &Config{
		DefaultFormat: "markdown",
		Server:        &ServerConfig{Addr: "127.0.0.1:9000", AllowedOrigins: []string{"http://localhost:3000"}, ShutdownTimeout: "30s"},
		Inference:     &InferenceConfig{URL: "http://gpu:11434/api/generate", Model: "qwen", Timeout: "2m", MaxTokens: intPtr(2000)},
		Cache:         &CacheConfig{Capacity: intPtr(10), TTL: "1d"},
		Compress:      &CompressConfig{ReadmeChars: intPtr(400)},
	}

	s, err := cfg.ResolveWith(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "markdown", s.DefaultFormat)
	assert.Equal(t, "127.0.0.1:9000", s.ListenAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, s.AllowedOrigins)
	assert.Equal(t, 30*time.Second, s.ShutdownTimeout)
	assert.Equal(t, "http://gpu:11434/api/generate", s.InferenceURL)
	assert.Equal(t, "qwen", s.InferenceModel)
	assert.Equal(t, 2*time.Minute, s.InferenceTimeout)
	assert.Equal(t, 2000, s.InferenceMaxTokens)
	assert.Equal(t, 10, s.CacheCapacity)
	assert.Equal(t, 24*time.Hour, s.CacheTTL)
	assert.Equal(t, 400, s.ReadmeChars)
}

func TestResolveEnvOverrides(t *testing.T) {
	cfg := &Config{Inference: &InferenceConfig{URL: "http://file", Model: "file-model"}}

	s, err := cfg.ResolveWith(env(map[string]string{
		"GITHUB_TOKEN":   "ghp_x",
		"OLLAMA_API_URL": "http://env/api/generate",
		"OLLAMA_MODEL":   "env-model",
		"OLLAMA_API_KEY": "sk",
		"PORT":           "3001",
	}))
	require.NoError(t, err)

	assert.Equal(t, "ghp_x", s.GitHubToken)
	assert.Equal(t, "http://env/api/generate", s.InferenceURL)
	assert.Equal(t, "env-model", s.InferenceModel)
	assert.Equal(t, "sk", s.InferenceAPIKey)
	assert.Equal(t, ":3001", s.ListenAddr)

	s, err = cfg.ResolveWith(env(map[string]string{"PORT": "3001", "GHAUDIT_ADDR": "0.0.0.0:7000"}))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", s.ListenAddr)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"bad ttl", &Config{Cache: &CacheConfig{TTL: "forever"}}},
		{"zero capacity", &Config{Cache: &CacheConfig{Capacity: intPtr(0)}}},
		{"bad timeout", &Config{Inference: &InferenceConfig{Timeout: "soon"}}},
		{"negative tokens", &Config{Inference: &InferenceConfig{MaxTokens: intPtr(-1)}}},
		{"bad shutdown", &Config{Server: &ServerConfig{ShutdownTimeout: "x"}}},
		{"zero readme chars", &Config{Compress: &CompressConfig{ReadmeChars: intPtr(0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.ResolveWith(env(nil))
			assert.Error(t, err)
		})
	}
}

func TestMergeConfig(t *testing.T) {
	global := &Config{
		DefaultFormat: "json",
		Server:        &ServerConfig{Addr: ":9000", AllowedOrigins: []string{"a"}},
		Inference:     &InferenceConfig{Model: "global", MaxTokens: intPtr(100)},
		Cache:         &CacheConfig{TTL: "2h"},
	}
	local := &Config{
		Server:    &ServerConfig{ShutdownTimeout: "5s"},
		Inference: &InferenceConfig{Model: "local"},
		Compress:  &CompressConfig{ReadmeChars: intPtr(300)},
	}

	merged := mergeConfig(global, local)

	assert.Equal(t, "json", merged.DefaultFormat)
	assert.Equal(t, ":9000", merged.Server.Addr)
	assert.Equal(t, []string{"a"}, merged.Server.AllowedOrigins)
	assert.Equal(t, "5s", merged.Server.ShutdownTimeout)
	assert.Equal(t, "local", merged.Inference.Model)
	assert.Equal(t, 100, *merged.Inference.MaxTokens)
	assert.Equal(t, "2h", merged.Cache.TTL)
	assert.Equal(t, 300, *merged.Compress.ReadmeChars)

	empty := mergeConfig(&Config{}, &Config{})
	assert.Nil(t, empty.Server)
	assert.Nil(t, empty.Inference)
	assert.Nil(t, empty.Cache)
	assert.Nil(t, empty.Compress)
}

func TestLoad(t *testing.T) {
	xdg := t.TempDir()
	work := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(work)

	require.NoError(t, SaveTo(filepath.Join(xdg, "ghaudit", "config.yaml"), "default_format: json\ncache:\n  ttl: 2h\n  capacity: 50\n"))
	require.NoError(t, os.WriteFile(filepath.Join(work, ".ghaudit.yaml"), []byte("cache:\n  ttl: 30m\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(work, ".env"), []byte("GHAUDIT_TEST_DOTENV=loaded\n"), 0600))
	t.Setenv("GHAUDIT_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("GHAUDIT_TEST_DOTENV"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.DefaultFormat)
	require.NotNil(t, cfg.Cache)
	assert.Equal(t, "30m", cfg.Cache.TTL)
	assert.Equal(t, 50, *cfg.Cache.Capacity)
	assert.Equal(t, "loaded", os.Getenv("GHAUDIT_TEST_DOTENV"))

	s, err := cfg.ResolveWith(env(nil))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, s.CacheTTL)
	assert.Equal(t, 50, s.CacheCapacity)
}

func TestLoadWithoutFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.DefaultFormat)
	assert.Nil(t, cfg.Cache)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".ghaudit.yaml"), []byte("cache: [unclosed"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "ttl: 1h")
	assert.Contains(t, out, "timeout: 5m")

	s, err := DefaultConfig().ResolveWith(env(nil))
	require.NoError(t, err)
	want, err := (&Config{}).ResolveWith(env(nil))
	require.NoError(t, err)
	assert.Equal(t, want.CacheTTL, s.CacheTTL)
	assert.Equal(t, want.InferenceTimeout, s.InferenceTimeout)
	assert.Equal(t, want.ShutdownTimeout, s.ShutdownTimeout)
	assert.Equal(t, want.CacheCapacity, s.CacheCapacity)
}
