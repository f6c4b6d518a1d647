// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/legalease-ai/legalease/pkg/types"
)

// Config is the top-level LegalEase configuration.
type Config struct {
	Environment string                    `mapstructure:"environment"`
	Server      ServerConfig              `mapstructure:"server"`
	Storage     StorageConfig             `mapstructure:"storage"`
	Encoder     EncoderConfig             `mapstructure:"encoder"`
	Generator   GeneratorConfig           `mapstructure:"generator"`
	Providers   map[string]ProviderConfig `mapstructure:"providers"`
	Retrieval   RetrievalConfig           `mapstructure:"retrieval"`
	Ingest      IngestConfig              `mapstructure:"ingest"`
	Logging     LoggingConfig             `mapstructure:"logging"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	ListenAddr  string   `mapstructure:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the vector store backend.
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	EmbeddingDim int    `mapstructure:"embedding_dim"`
	Path         string `mapstructure:"path"`
}

// EncoderConfig selects the embedding provider. A zero Dimension means
// storage.embedding_dim.
type EncoderConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

// GeneratorConfig selects the answer generators as "provider/model" refs.
type GeneratorConfig struct {
	Default     string   `mapstructure:"default"`
	Failover    []string `mapstructure:"failover"`
	Temperature float64  `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// ProviderConfig holds credentials and endpoint for a remote provider.
// APIKey may be a keyring:// reference.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type RetrievalConfig struct {
	K int `mapstructure:"k"`
}

type IngestConfig struct {
	Dedup bool `mapstructure:"dedup"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var (
	validBackends         = []string{"memory", "sqlite", "vptree"}
	validEncoderProviders = []string{"google", "local", "openai"}
	validGenProviders     = []string{"anthropic", "google", "local", "openai"}
	validLogLevels        = []string{"debug", "info", "warn", "error"}
)

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix LEGALEASE_). When the resolved
// environment has an overlay file next to path, e.g. legalease.prod.yaml
// beside legalease.yaml, it is merged on top.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEGALEASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, readError(path, err)
		}
		if overlay := OverlayPath(path, v.GetString("environment")); overlay != "" {
			if _, err := os.Stat(overlay); err == nil {
				v.SetConfigFile(overlay)
				if err := v.MergeInConfig(); err != nil {
					return nil, readError(overlay, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, lerr.Errorf(lerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, lerr.Errorf(lerr.CodeConfigValidateInvalidValue, "validating config: %v", errors.Join(errs...))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", string(types.EnvironmentLocal))
	v.SetDefault("server.listen_addr", "127.0.0.1:8000")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.embedding_dim", 768)
	v.SetDefault("storage.path", "legalease.db")
	v.SetDefault("encoder.provider", "local")
	v.SetDefault("encoder.model", "hash")
	v.SetDefault("encoder.dimension", 0)
	v.SetDefault("generator.default", "local/extractive")
	v.SetDefault("generator.failover", []string{})
	v.SetDefault("generator.temperature", 0.0)
	v.SetDefault("generator.max_tokens", 1024)
	v.SetDefault("retrieval.k", 5)
	v.SetDefault("ingest.dedup", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

func readError(path string, err error) error {
	var parseErr viper.ConfigParseError
	if errors.As(err, &parseErr) {
		return lerr.Errorf(lerr.CodeConfigParseInvalidFormat, "parsing config %s: %w", path, err)
	}
	return lerr.Errorf(lerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
}

// OverlayPath returns the per-environment file for base, or "" when env is
// empty.
func OverlayPath(base, env string) string {
	if env == "" || base == "" {
		return ""
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + env + ext
}

// EncoderDimension is the embedding width the encoder must produce.
func (c *Config) EncoderDimension() int {
	if c.Encoder.Dimension > 0 {
		return c.Encoder.Dimension
	}
	return c.Storage.EmbeddingDim
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateEnvironment()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateEncoder()...)
	errs = append(errs, c.validateGenerator()...)
	errs = append(errs, c.validateRetrieval()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func invalid(format string, args ...any) error {
	return lerr.Errorf(lerr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func (c *Config) validateEnvironment() []error {
	if _, err := types.ParseEnvironment(c.Environment); err != nil {
		return []error{invalid("environment must be one of [prod, local], got %q", c.Environment)}
	}
	return nil
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.ListenAddr == "" {
		return []error{invalid("server.listen_addr must not be empty")}
	}

	_, portStr, err := net.SplitHostPort(c.Server.ListenAddr)
	if err != nil {
		return []error{invalid("server.listen_addr must be a valid host:port address, got %q: %v", c.Server.ListenAddr, err)}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, invalid("server.listen_addr port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, invalid("server.listen_addr port must be between 1 and 65535, got %d", port))
	}

	for i, origin := range c.Server.CORSOrigins {
		if origin == "" {
			errs = append(errs, invalid("server.cors_origins[%d] must not be empty", i))
		}
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if !slices.Contains(validBackends, c.Storage.Backend) {
		errs = append(errs, invalid("storage.backend must be one of %v, got %q", validBackends, c.Storage.Backend))
	}
	if c.Storage.EmbeddingDim <= 0 {
		errs = append(errs, invalid("storage.embedding_dim must be greater than 0, got %d", c.Storage.EmbeddingDim))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		errs = append(errs, invalid("storage.path must be set for the sqlite backend"))
	}

	return errs
}

func (c *Config) validateEncoder() []error {
	var errs []error

	if !slices.Contains(validEncoderProviders, c.Encoder.Provider) {
		errs = append(errs, invalid("encoder.provider must be one of %v, got %q", validEncoderProviders, c.Encoder.Provider))
	} else if c.Encoder.Provider != "local" {
		if c.Encoder.Model == "" {
			errs = append(errs, invalid("encoder.model must not be empty for provider %q", c.Encoder.Provider))
		}
		if c.Providers != nil {
			if _, ok := c.Providers[c.Encoder.Provider]; !ok {
				errs = append(errs, invalid("encoder.provider %q is not configured under providers", c.Encoder.Provider))
			}
		}
	}

	if c.Encoder.Dimension < 0 {
		errs = append(errs, invalid("encoder.dimension must not be negative, got %d", c.Encoder.Dimension))
	} else if c.Encoder.Dimension > 0 && c.Encoder.Dimension != c.Storage.EmbeddingDim {
		errs = append(errs, invalid("encoder.dimension %d does not match storage.embedding_dim %d",
			c.Encoder.Dimension, c.Storage.EmbeddingDim))
	}

	return errs
}

func (c *Config) validateGenerator() []error {
	var errs []error

	if c.Generator.Default == "" {
		errs = append(errs, invalid("generator.default must not be empty"))
	} else {
		errs = append(errs, c.validateModelRef("generator.default", c.Generator.Default)...)
	}

	for i, ref := range c.Generator.Failover {
		errs = append(errs, c.validateModelRef("generator.failover["+strconv.Itoa(i)+"]", ref)...)
	}

	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		errs = append(errs, invalid("generator.temperature must be between 0 and 2, got %g", c.Generator.Temperature))
	}
	if c.Generator.MaxTokens <= 0 {
		errs = append(errs, invalid("generator.max_tokens must be greater than 0, got %d", c.Generator.MaxTokens))
	}

	return errs
}

// validateModelRef checks a "provider/model" reference. Remote providers are
// cross-checked against the providers section only when it exists, so a
// defaults-only install stays valid.
func (c *Config) validateModelRef(key, ref string) []error {
	name, model, ok := strings.Cut(ref, "/")
	if !ok || name == "" || model == "" {
		return []error{invalid("%s must be in \"provider/model\" format, got %q", key, ref)}
	}
	if !slices.Contains(validGenProviders, name) {
		return []error{invalid("%s references unknown provider %q", key, name)}
	}
	if name != "local" && c.Providers != nil {
		if _, ok := c.Providers[name]; !ok {
			return []error{invalid("%s %q references provider %q which is not configured", key, ref, name)}
		}
	}
	return nil
}

func (c *Config) validateRetrieval() []error {
	if c.Retrieval.K <= 0 {
		return []error{invalid("retrieval.k must be greater than 0, got %d", c.Retrieval.K)}
	}
	return nil
}

func (c *Config) validateLogging() []error {
	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return []error{invalid("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)}
	}
	return nil
}

// SplitModelRef splits "provider/model" into its parts.
func SplitModelRef(ref string) (provider, model string) {
	provider, model, _ = strings.Cut(ref, "/")
	return provider, model
}
