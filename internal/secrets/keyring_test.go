// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/legalease-ai/legalease/internal/secrets"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func init() {
	// Tests never touch the real OS keyring.
	keyring.MockInit()
}

func TestKeyringStore_SetGetDelete(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-set-get"

	require.NoError(t, ks.Set(svc, "openai", "sk-one"))
	val, err := ks.Get(svc, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-one", val)

	require.NoError(t, ks.Set(svc, "openai", "sk-two"))
	val, _ = ks.Get(svc, "openai")
	assert.Equal(t, "sk-two", val)

	require.NoError(t, ks.Delete(svc, "openai"))
	_, err = ks.Get(svc, "openai")
	assert.True(t, lerr.IsNotFound(err))
}

func TestKeyringStore_NotFound(t *testing.T) {
	ks := secrets.NewKeyringStore()

	_, err := ks.Get("test-missing", "nothing")
	assert.Equal(t, lerr.CodeSecretNotFound, lerr.CodeOf(err))

	err = ks.Delete("test-missing", "nothing")
	assert.Equal(t, lerr.CodeSecretNotFound, lerr.CodeOf(err))
}

func TestKeyringStore_RejectsBadNames(t *testing.T) {
	ks := secrets.NewKeyringStore()
	for _, tc := range [][2]string{{"", "k"}, {"svc", ""}, {"svc", "__index__"}} {
		err := ks.Set(tc[0], tc[1], "v")
		assert.True(t, lerr.IsInvalidInput(err), "service=%q key=%q", tc[0], tc[1])
	}
}

func TestKeyringStore_List(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-list"

	keys, err := ks.List(svc)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, ks.Set(svc, "anthropic", "a"))
	require.NoError(t, ks.Set(svc, "google", "g"))
	require.NoError(t, ks.Set(svc, "anthropic", "a2"))

	keys, err = ks.List(svc)
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic", "google"}, keys)

	require.NoError(t, ks.Delete(svc, "anthropic"))
	keys, _ = ks.List(svc)
	assert.Equal(t, []string{"google"}, keys)

	require.NoError(t, ks.Delete(svc, "google"))
	keys, _ = ks.List(svc)
	assert.Empty(t, keys)
}
