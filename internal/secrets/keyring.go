// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package secrets keeps provider API keys in the OS keyring and resolves
// keyring:// references found in configuration.
package secrets

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/zalando/go-keyring"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultService is the keyring service used by `legalease secret`.
const DefaultService = "legalease"

// indexKey holds the JSON list of key names for a service, since the OS
// keyrings cannot enumerate entries.
const indexKey = "__index__"

// Store reads and writes named secrets grouped by service.
type Store interface {
	Set(service, key, value string) error
	// Get fails with secret.keyring.not_found for unknown keys.
	Get(service, key string) (string, error)
	Delete(service, key string) error
	List(service string) ([]string, error)
}

// KeyringStore implements Store on zalando/go-keyring: Keychain on macOS,
// Secret Service on Linux and Credential Manager on Windows.
type KeyringStore struct{}

func NewKeyringStore() *KeyringStore { return &KeyringStore{} }

func checkName(service, key string) error {
	if service == "" || key == "" {
		return lerr.New(lerr.CodeSecretKeyInvalid, "secret service and key must not be empty")
	}
	if key == indexKey {
		return lerr.Errorf(lerr.CodeSecretKeyInvalid, "secret key %q is reserved", key)
	}
	return nil
}

func (s *KeyringStore) Set(service, key, value string) error {
	if err := checkName(service, key); err != nil {
		return err
	}
	if err := keyring.Set(service, key, value); err != nil {
		return lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}

	keys, err := s.List(service)
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	return s.writeIndex(service, append(keys, key))
}

func (s *KeyringStore) Get(service, key string) (string, error) {
	if err := checkName(service, key); err != nil {
		return "", err
	}
	val, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", lerr.Errorf(lerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
	}
	if err != nil {
		return "", lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "reading secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := checkName(service, key); err != nil {
		return err
	}
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return lerr.Errorf(lerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
	}
	if err != nil {
		return lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "deleting secret %s/%s", service, key)
	}

	keys, err := s.List(service)
	if err != nil {
		return err
	}
	return s.writeIndex(service, slices.DeleteFunc(keys, func(k string) bool { return k == key }))
}

// List returns the key names stored under service in insertion order.
func (s *KeyringStore) List(service string) ([]string, error) {
	raw, err := keyring.Get(service, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "reading key index for %s", service)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "decoding key index for %s", service)
	}
	return keys, nil
}

func (s *KeyringStore) writeIndex(service string, keys []string) error {
	if len(keys) == 0 {
		if err := keyring.Delete(service, indexKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "clearing key index for %s", service)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "encoding key index for %s", service)
	}
	if err := keyring.Set(service, indexKey, string(data)); err != nil {
		return lerr.Wrapf(err, lerr.CodeSecretStoreFailure, "writing key index for %s", service)
	}
	return nil
}
