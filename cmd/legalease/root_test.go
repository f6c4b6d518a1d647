// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalease-ai/legalease/internal/config"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func TestRootCommand_Help(t *testing.T) {
	isolate(t)
	out, err := execute(t, nil, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "ingest", "query", "analyze", "split", "chat", "secret", "doctor", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "legalease dev")
}

func TestServeCommand_MissingConfigFails(t *testing.T) {
	isolate(t)
	_, err := execute(t, nil, "serve", "--config", "/nonexistent/path.yaml")
	require.Error(t, err)
	assert.Equal(t, lerr.CodeConfigLoadReadFailure, lerr.CodeOf(err))
}

func TestLoadConfig_EnvFileOverrides(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeConfig(t, dir)
	envPath := writeFile(t, dir, "test.env", "LEGALEASE_RETRIEVAL_K=9\n")
	t.Cleanup(func() { _ = os.Unsetenv("LEGALEASE_RETRIEVAL_K") })

	root := NewRootCmd()
	root.SetArgs([]string{"--config", cfgPath, "--env-file", envPath, "version"})
	require.NoError(t, root.Execute())

	cfg, _, cleanup, err := loadConfig(root)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, 9, cfg.Retrieval.K)
	assert.Equal(t, 64, cfg.Storage.EmbeddingDim)
}

func TestResolveConfigPath_BootstrapsDefault(t *testing.T) {
	dir := isolate(t)
	root := NewRootCmd()
	root.SetArgs([]string{"version"})
	root.SetOut(new(bytes.Buffer))
	require.NoError(t, root.Execute())

	// Run from a directory without legalease.yaml.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path := resolveConfigPath()
	want, err := config.DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(dir, ".config", "legalease", "legalease.yaml"), path)
}

func TestNewLogger_Levels(t *testing.T) {
	buf := new(bytes.Buffer)
	logger, cleanup, err := newLogger(buf, config.LoggingConfig{Level: "warn"}, false)
	require.NoError(t, err)
	defer cleanup()
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger, _, err = newLogger(buf, config.LoggingConfig{Level: "warn"}, true)
	require.NoError(t, err)
	logger.Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "legalease.log")
	logger, cleanup, err := newLogger(new(bytes.Buffer), config.LoggingConfig{Level: "info", File: path}, false)
	require.NoError(t, err)
	logger.Info("to file", "k", 1)
	cleanup()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"to file"`)
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, _, err := newLogger(new(bytes.Buffer), config.LoggingConfig{Level: "loud"}, false)
	assert.Equal(t, lerr.CodeCLISetupFailure, lerr.CodeOf(err))
}
