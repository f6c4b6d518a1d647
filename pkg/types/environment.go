// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package types

import (
	"strings"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// Environment selects a deployment profile.
type Environment string

const (
	EnvironmentProd  Environment = "prod"
	EnvironmentLocal Environment = "local"
)

// Valid reports whether e is a recognized environment.
func (e Environment) Valid() bool {
	switch e {
	case EnvironmentProd, EnvironmentLocal:
		return true
	default:
		return false
	}
}

// ParseEnvironment parses a case-insensitive string into an Environment.
func ParseEnvironment(s string) (Environment, error) {
	e := Environment(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", lerr.Errorf(lerr.CodeConfigValidateInvalidValue,
			"invalid environment: %q", s)
	}
	return e, nil
}
