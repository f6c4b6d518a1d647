// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalease-ai/legalease/internal/config"
	"github.com/legalease-ai/legalease/internal/secrets"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref         string
		wantService string
		wantKey     string
		wantErr     bool
	}{
		{"keyring://legalease/openai", "legalease", "openai", false},
		{"keyring://legalease/team/openai", "legalease", "team/openai", false},
		{"keyring://legalease", "", "", true},
		{"keyring:///openai", "", "", true},
		{"keyring://legalease/", "", "", true},
		{"vault://legalease/openai", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			service, key, err := secrets.ParseReference(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, lerr.CodeSecretURIInvalid, lerr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantService, service)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestResolve(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Set("test-resolve", "anthropic", "sk-ant"))

	got, err := secrets.Resolve(ks, "keyring://test-resolve/anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", got)

	literal, err := secrets.Resolve(ks, "sk-literal")
	require.NoError(t, err)
	assert.Equal(t, "sk-literal", literal)

	_, err = secrets.Resolve(ks, "keyring://test-resolve/missing")
	assert.True(t, lerr.IsNotFound(err))
}

func TestResolveProviders(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Set("test-providers", "openai", "sk-openai"))

	in := map[string]config.ProviderConfig{
		"openai":    {APIKey: "keyring://test-providers/openai", BaseURL: "http://proxy"},
		"anthropic": {APIKey: "sk-inline"},
	}
	out, err := secrets.ResolveProviders(ks, in)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderConfig{APIKey: "sk-openai", BaseURL: "http://proxy"}, out["openai"])
	assert.Equal(t, "sk-inline", out["anthropic"].APIKey)
	assert.Equal(t, "keyring://test-providers/openai", in["openai"].APIKey, "input map is not modified")
}

func TestResolveProviders_NamesFailingProvider(t *testing.T) {
	ks := secrets.NewKeyringStore()
	_, err := secrets.ResolveProviders(ks, map[string]config.ProviderConfig{
		"google": {APIKey: "keyring://test-providers-missing/google"},
	})
	require.Error(t, err)
	assert.True(t, lerr.IsNotFound(err))
	assert.Equal(t, "google", lerr.FieldsOf(err)["provider"])
}
