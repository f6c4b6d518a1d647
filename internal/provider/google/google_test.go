// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package google_test

import (
	"context"
	"testing"

	"github.com/legalease-ai/legalease/internal/provider"
	"github.com/legalease-ai/legalease/internal/provider/google"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_MissingAPIKey(t *testing.T) {
	_, err := google.New(google.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, lerr.HasCode(err, lerr.CodeProviderRequestInvalid))
}

func TestGoogleProvider_Basics(t *testing.T) {
	p, err := google.New(google.Config{APIKey: "test-key-not-real"})
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
	assert.True(t, p.Available(context.Background()))
	assert.NoError(t, p.Close())
}

func TestConvertMessages(t *testing.T) {
	tests := []struct {
		name      string
		msgs      []provider.Message
		wantRoles []string
		wantErr   bool
	}{
		{
			name:      "user only",
			msgs:      []provider.Message{{Role: provider.MessageRoleUser, Content: "q"}},
			wantRoles: []string{"user"},
		},
		{
			name: "assistant becomes model and system is dropped",
			msgs: []provider.Message{
				{Role: provider.MessageRoleSystem, Content: "rules"},
				{Role: provider.MessageRoleUser, Content: "q"},
				{Role: provider.MessageRoleAssistant, Content: "a"},
			},
			wantRoles: []string{"user", "model"},
		},
		{
			name:    "unknown role",
			msgs:    []provider.Message{{Role: "tool", Content: "x"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := google.ConvertMessages(tt.msgs)
			if tt.wantErr {
				assert.True(t, lerr.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			roles := make([]string, len(got))
			for i, c := range got {
				roles[i] = c.Role
			}
			assert.Equal(t, tt.wantRoles, roles)
		})
	}
}

func TestBuildConfig(t *testing.T) {
	cfg := google.BuildConfig(provider.ChatRequest{
		SystemPrompt: "answer from context",
		Options:      provider.ChatOptions{Temperature: 0.2, MaxTokens: 300},
	})
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "answer from context", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(300), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.2, *cfg.Temperature, 1e-6)

	empty := google.BuildConfig(provider.ChatRequest{})
	assert.Nil(t, empty.SystemInstruction)
	assert.Nil(t, empty.Temperature)
}

func TestEmbedder_Validation(t *testing.T) {
	_, err := google.NewEmbedder(google.EmbedderConfig{Config: google.Config{APIKey: "k"}})
	assert.True(t, lerr.IsInvalidInput(err))

	e, err := google.NewEmbedder(google.EmbedderConfig{
		Config:     google.Config{APIKey: "k"},
		Model:      "text-embedding-004",
		Dimensions: 768,
	})
	require.NoError(t, err)
	assert.Equal(t, "google/text-embedding-004", e.Name())
	assert.Equal(t, 768, e.Dimension())

	_, err = e.Encode(context.Background(), "  ")
	assert.Equal(t, lerr.CodeEncoderInvalidInput, lerr.CodeOf(err))
}
