// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalease-ai/legalease/internal/config"
	"github.com/legalease-ai/legalease/internal/ingest"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func testAppConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Backend: "memory", EmbeddingDim: 32},
		Encoder:   config.EncoderConfig{Provider: "local", Model: "hash"},
		Generator: config.GeneratorConfig{Default: "local/extractive", MaxTokens: 256},
		Retrieval: config.RetrievalConfig{K: 3},
	}
}

func TestWireApp(t *testing.T) {
	app, err := WireApp(context.Background(), testAppConfig(), t.TempDir(), nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.Equal(t, "local/hash", app.Encoder.Name())
	assert.Equal(t, 32, app.Store.Dimension())
	require.Len(t, app.Registry.Health(), 1)
	assert.Equal(t, "local/extractive", app.Registry.Health()[0].Provider)

	svc, err := app.Services()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestWireApp_IngestThenAsk(t *testing.T) {
	ctx := context.Background()
	app, err := WireApp(ctx, testAppConfig(), t.TempDir(), nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	res, err := app.Pipeline.Ingest(ctx, ingest.Document{ID: "msa", Text: sampleContract})
	require.NoError(t, err)
	assert.Len(t, res.ClauseIDs, 4)

	resp, err := app.Chain.Run(ctx, "When must invoices be paid?")
	require.NoError(t, err)
	assert.Len(t, resp.Context, 3)
	assert.NotEmpty(t, resp.Response)

	// A successful answer is recorded against the routed generator.
	assert.EqualValues(t, 1, app.Registry.Health()[0].SuccessCount)
}

func TestWireApp_DimensionMismatch(t *testing.T) {
	cfg := testAppConfig()
	cfg.Encoder.Dimension = 16
	_, err := WireApp(context.Background(), cfg, t.TempDir(), nil)
	require.Error(t, err)
	assert.Equal(t, lerr.CodeCLISetupFailure, lerr.CodeOf(err))
	assert.Equal(t, 32, lerr.FieldsOf(err)["expected_dim"])
}

func TestWireApp_UnknownGenerator(t *testing.T) {
	cfg := testAppConfig()
	cfg.Generator.Default = "local/abstractive"
	_, err := WireApp(context.Background(), cfg, t.TempDir(), nil)
	require.Error(t, err)
	assert.True(t, lerr.IsNotFound(err))
}

func TestWireApp_UnsupportedBackend(t *testing.T) {
	cfg := testAppConfig()
	cfg.Storage.Backend = "faiss"
	_, err := WireApp(context.Background(), cfg, t.TempDir(), nil)
	require.Error(t, err)
	assert.Equal(t, lerr.CodeStoreBackendUnsupported, lerr.CodeOf(err))
}

func TestWireApp_RemoteFailoverRegistered(t *testing.T) {
	cfg := testAppConfig()
	cfg.Generator.Failover = []string{"openai/gpt-4o-mini", "anthropic/claude-sonnet-4-5"}
	cfg.Providers = map[string]config.ProviderConfig{
		"openai":    {APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"},
		"anthropic": {APIKey: "sk-ant-test", BaseURL: "http://127.0.0.1:1"},
	}

	app, err := WireApp(context.Background(), cfg, t.TempDir(), nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	names := make([]string, 0, 3)
	for _, m := range app.Registry.Health() {
		names = append(names, m.Provider)
	}
	assert.Equal(t, []string{"anthropic/claude-sonnet-4-5", "local/extractive", "openai/gpt-4o-mini"}, names)
}

func TestWireApp_RemoteWithoutKeyFails(t *testing.T) {
	cfg := testAppConfig()
	cfg.Generator.Failover = []string{"google/gemini-2.0-flash"}
	_, err := WireApp(context.Background(), cfg, t.TempDir(), nil)
	require.Error(t, err)
	assert.Equal(t, lerr.CodeProviderRequestInvalid, lerr.CodeOf(err))
}

func TestWireApp_SQLitePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testAppConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Path = "vectors.db"

	app, err := WireApp(ctx, cfg, dir, nil)
	require.NoError(t, err)
	_, err = app.Pipeline.Ingest(ctx, ingest.Document{ID: "msa", Text: sampleContract})
	require.NoError(t, err)
	require.NoError(t, app.Close())

	reopened, err := WireApp(ctx, cfg, dir, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	n, err := reopened.Store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
