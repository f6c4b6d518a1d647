// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package secrets

import (
	"errors"
	"sort"
	"strings"

	"github.com/legalease-ai/legalease/internal/config"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

const scheme = "keyring://"

// IsReference reports whether value is a keyring://service/key reference.
func IsReference(value string) bool {
	return strings.HasPrefix(value, scheme)
}

// ParseReference splits keyring://service/key. The key may contain slashes.
func ParseReference(ref string) (service, key string, err error) {
	rest, ok := strings.CutPrefix(ref, scheme)
	if !ok {
		return "", "", lerr.Errorf(lerr.CodeSecretURIInvalid, "not a keyring reference: %q", ref)
	}
	service, key, ok = strings.Cut(rest, "/")
	if !ok || service == "" || key == "" {
		return "", "", lerr.Errorf(lerr.CodeSecretURIInvalid, "invalid keyring reference %q: expected keyring://service/key", ref)
	}
	return service, key, nil
}

// Resolve returns the secret behind a keyring reference, or value itself
// when it is not one.
func Resolve(store Store, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}
	service, key, err := ParseReference(value)
	if err != nil {
		return "", err
	}
	return store.Get(service, key)
}

// ResolveProviders replaces keyring references in provider API keys. Every
// provider is attempted; failures are joined and name the provider. A
// reference is never passed on as a literal key.
func ResolveProviders(store Store, providers map[string]config.ProviderConfig) (map[string]config.ProviderConfig, error) {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]config.ProviderConfig, len(providers))
	var errs []error
	for _, name := range names {
		pc := providers[name]
		key, err := Resolve(store, pc.APIKey)
		if err != nil {
			errs = append(errs, lerr.With(err, lerr.FieldProvider(name)))
			continue
		}
		pc.APIKey = key
		out[name] = pc
	}
	if len(errs) == 1 {
		return nil, errs[0]
	}
	if len(errs) > 1 {
		return nil, lerr.Errorf(lerr.CodeOf(errs[0]), "resolving provider keys: %v", errors.Join(errs...))
	}
	return out, nil
}
