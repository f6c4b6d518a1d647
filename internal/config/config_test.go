// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package config_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/legalease-ai/legalease/internal/config"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.ListenAddr)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 768, cfg.Storage.EmbeddingDim)
	assert.Equal(t, "local", cfg.Encoder.Provider)
	assert.Equal(t, "local/extractive", cfg.Generator.Default)
	assert.Equal(t, 5, cfg.Retrieval.K)
	assert.False(t, cfg.Ingest.Dedup)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 768, cfg.EncoderDimension())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "legalease.yaml", `
server:
  listen_addr: "0.0.0.0:9000"
  cors_origins: ["http://localhost:3000"]
storage:
  backend: sqlite
  embedding_dim: 1536
encoder:
  provider: openai
  model: text-embedding-3-small
generator:
  default: anthropic/claude-sonnet-4-5
  failover: [local/extractive]
providers:
  openai:
    api_key: "sk-test"
  anthropic:
    api_key: keyring://legalease/anthropic
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 1536, cfg.EncoderDimension())
	assert.Equal(t, "text-embedding-3-small", cfg.Encoder.Model)
	assert.Equal(t, []string{"local/extractive"}, cfg.Generator.Failover)
	assert.Equal(t, "keyring://legalease/anthropic", cfg.Providers["anthropic"].APIKey)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LEGALEASE_RETRIEVAL_K", "9")
	t.Setenv("LEGALEASE_SERVER_LISTEN_ADDR", "10.0.0.1:8080")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Retrieval.K)
	assert.Equal(t, "10.0.0.1:8080", cfg.Server.ListenAddr)
}

func TestLoad_EnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "legalease.yaml", "environment: prod\nlogging:\n  level: debug\nretrieval:\n  k: 4\n")
	writeConfig(t, dir, "legalease.prod.yaml", "logging:\n  level: warn\n")
	writeConfig(t, dir, "legalease.local.yaml", "logging:\n  level: error\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Retrieval.K, "keys absent from the overlay keep the base value")
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "legalease.yaml", "storage:\n  backend: postgres\nretrieval:\n  k: 0\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Equal(t, lerr.CodeConfigValidateInvalidValue, lerr.CodeOf(err))
	assert.Contains(t, err.Error(), "storage.backend")
	assert.Contains(t, err.Error(), "retrieval.k")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, lerr.CodeConfigLoadReadFailure, lerr.CodeOf(err))
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "legalease.yaml", "server: [unclosed\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

// validConfig returns a minimal config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Environment: "local",
		Server:      config.ServerConfig{ListenAddr: "127.0.0.1:8000"},
		Storage:     config.StorageConfig{Backend: "memory", EmbeddingDim: 768},
		Encoder:     config.EncoderConfig{Provider: "local", Model: "hash"},
		Generator:   config.GeneratorConfig{Default: "local/extractive", MaxTokens: 1024},
		Retrieval:   config.RetrievalConfig{K: 5},
		Logging:     config.LoggingConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"bad environment", func(c *config.Config) { c.Environment = "staging" }, "environment"},
		{"empty listen", func(c *config.Config) { c.Server.ListenAddr = "" }, "server.listen_addr must not be empty"},
		{"listen without port", func(c *config.Config) { c.Server.ListenAddr = "localhost" }, "valid host:port"},
		{"port out of range", func(c *config.Config) { c.Server.ListenAddr = ":70000" }, "between 1 and 65535"},
		{"empty cors origin", func(c *config.Config) { c.Server.CORSOrigins = []string{""} }, "server.cors_origins[0]"},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "qdrant" }, "storage.backend"},
		{"zero dimension", func(c *config.Config) { c.Storage.EmbeddingDim = 0 }, "storage.embedding_dim"},
		{"sqlite without path", func(c *config.Config) { c.Storage.Backend = "sqlite" }, "storage.path"},
		{"unknown encoder", func(c *config.Config) { c.Encoder.Provider = "cohere" }, "encoder.provider"},
		{"remote encoder without model", func(c *config.Config) {
			c.Encoder = config.EncoderConfig{Provider: "openai"}
		}, "encoder.model"},
		{"encoder dimension mismatch", func(c *config.Config) { c.Encoder.Dimension = 384 }, "does not match storage.embedding_dim"},
		{"generator ref format", func(c *config.Config) { c.Generator.Default = "extractive" }, "provider/model"},
		{"unknown generator provider", func(c *config.Config) { c.Generator.Failover = []string{"mistral/large"} }, "generator.failover[0]"},
		{"unconfigured provider", func(c *config.Config) {
			c.Providers = map[string]config.ProviderConfig{"openai": {APIKey: "k"}}
			c.Generator.Default = "anthropic/claude-sonnet-4-5"
		}, "not configured"},
		{"temperature", func(c *config.Config) { c.Generator.Temperature = 3 }, "generator.temperature"},
		{"max tokens", func(c *config.Config) { c.Generator.MaxTokens = 0 }, "generator.max_tokens"},
		{"retrieval k", func(c *config.Config) { c.Retrieval.K = -1 }, "retrieval.k"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			var msgs []string
			for _, err := range errs {
				assert.True(t, lerr.IsInvalidInput(err))
				msgs = append(msgs, err.Error())
			}
			assert.Contains(t, strings.Join(msgs, "\n"), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "qdrant"
	cfg.Retrieval.K = 0
	cfg.Logging.Level = "loud"
	assert.Len(t, cfg.Validate(), 3)
}

func TestValidate_RemoteProvidersWithoutSectionAreAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Generator.Default = "openai/gpt-4.1-mini"
	assert.Empty(t, cfg.Validate())
}

func TestOverlayPath(t *testing.T) {
	assert.Equal(t, "/etc/legalease.prod.yaml", config.OverlayPath("/etc/legalease.yaml", "prod"))
	assert.Equal(t, "", config.OverlayPath("/etc/legalease.yaml", ""))
}

func TestSplitModelRef(t *testing.T) {
	p, m := config.SplitModelRef("anthropic/claude-sonnet-4-5")
	assert.Equal(t, "anthropic", p)
	assert.Equal(t, "claude-sonnet-4-5", m)
}

func TestDefaultConfigYAML_IsLoadable(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(config.DefaultConfigYAML, &doc))
	assert.Contains(t, doc, "storage")
	assert.Contains(t, doc, "generator")

	path := writeConfig(t, t.TempDir(), "legalease.yaml", string(config.DefaultConfigYAML))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local/extractive", cfg.Generator.Default)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "legalease.yaml")

	created, err := config.WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, created)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: :1\n"), 0o600))
	created, err = config.WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, created, "existing files are left alone")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), ":1")
}

func TestBootstrapConfig_UsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := config.BootstrapConfig(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, filepath.Join(home, ".config", "legalease", "legalease.yaml"), path)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local/extractive", cfg.Generator.Default)
}
