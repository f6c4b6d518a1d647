// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package provider_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/legalease-ai/legalease/internal/provider"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// mockChatProvider replays a fixed event sequence.
type mockChatProvider struct {
	name      string
	events    []provider.ChatEvent
	chatErr   error
	lastReq   provider.ChatRequest
	closed    bool
}

func newMockChatProvider(name string, events ...provider.ChatEvent) *mockChatProvider {
	return &mockChatProvider{name: name, events: events}
}

func (m *mockChatProvider) Name() string                   { return m.name }
func (m *mockChatProvider) Available(context.Context) bool { return true }

func (m *mockChatProvider) Chat(_ context.Context, req provider.ChatRequest) (<-chan provider.ChatEvent, error) {
	m.lastReq = req
	if m.chatErr != nil {
		return nil, m.chatErr
	}
	ch := make(chan provider.ChatEvent, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (m *mockChatProvider) Close() error {
	m.closed = true
	return nil
}

// mockGenerator returns text or fails with err, counting calls.
type mockGenerator struct {
	name   string
	text   string
	err    error
	calls  atomic.Int32
	closed bool
}

func (m *mockGenerator) Name() string { return m.name }

func (m *mockGenerator) Generate(_ context.Context, _ string) (string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockGenerator) Close() error {
	m.closed = true
	return nil
}

func failingGenerator(name string) *mockGenerator {
	return &mockGenerator{
		name: name,
		err:  lerr.Wrap(errors.New("connection refused"), lerr.CodeGeneratorFailure, "calling backend", lerr.FieldProvider(name)),
	}
}

// fixedEncoder returns vec for every text.
type fixedEncoder struct {
	dim int
	vec []float32
}

func (e fixedEncoder) Name() string   { return "fixed" }
func (e fixedEncoder) Dimension() int { return e.dim }

func (e fixedEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if err := provider.ValidateText(e.Name(), text); err != nil {
		return nil, err
	}
	return append([]float32(nil), e.vec...), nil
}

// batchEncoder records how many batch calls were made.
type batchEncoder struct {
	fixedEncoder
	batches int
	short   bool
}

func (e *batchEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches++
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := e.Encode(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if e.short {
		out = out[:len(out)-1]
	}
	return out, nil
}
