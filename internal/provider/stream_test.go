// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalease-ai/legalease/internal/provider"
)

func TestStream_EndsWithDone(t *testing.T) {
	events := provider.Stream(context.Background(), func(emit provider.Emit) error {
		provider.EmitText(emit, "Termination requires ")
		provider.EmitText(emit, "")
		provider.EmitText(emit, "30 days notice.")
		emit(provider.ChatEvent{Type: provider.EventTypeUsage, Usage: &provider.Usage{InputTokens: 3, OutputTokens: 5}})
		return nil
	})

	text, usage, err := provider.Collect(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, "Termination requires 30 days notice.", text)
	require.NotNil(t, usage)
	assert.Equal(t, 5, usage.OutputTokens)
}

func TestStream_ErrorBecomesErrorEvent(t *testing.T) {
	events := provider.Stream(context.Background(), func(emit provider.Emit) error {
		provider.EmitText(emit, "partial")
		return errors.New("upstream reset")
	})

	_, _, err := provider.Collect(context.Background(), events)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream reset")
}

func TestStream_AbandonedConsumerReleasesProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})

	events := provider.Stream(ctx, func(emit provider.Emit) error {
		defer close(finished)
		for emit(provider.ChatEvent{Type: provider.EventTypeTextDelta, Text: "x"}) {
		}
		return ctx.Err()
	})
	<-events
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("producer still blocked after cancel")
	}
}
