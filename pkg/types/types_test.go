// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package types

import (
	"testing"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageConstants_Valid(t *testing.T) {
	for _, s := range []Stage{StageRetrieval, StagePrompt, StageGeneration} {
		assert.True(t, s.Valid(), "stage %q must pass Valid()", s)
	}
	assert.False(t, Stage("indexing").Valid())
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"prod", EnvironmentProd},
		{"LOCAL", EnvironmentLocal},
		{" Prod ", EnvironmentProd},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEnvironment_RejectsUnknown(t *testing.T) {
	_, err := ParseEnvironment("staging")
	require.Error(t, err)
	assert.True(t, lerr.IsInvalidInput(err))
}
