// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package provider

import (
	"context"
	"strings"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// Encoder maps text to a fixed-length embedding.
type Encoder interface {
	Name() string
	Dimension() int
	// Encode fails with an encoder.* coded error on empty or unencodable
	// text and when the backend is unavailable.
	Encode(ctx context.Context, text string) ([]float32, error)
}

// BatchEncoder is implemented by encoders that embed several texts per call.
type BatchEncoder interface {
	Encoder
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator maps a prompt to generated text.
type Generator interface {
	Name() string
	// Generate fails with a generator.* coded error; it never returns an
	// empty completion as success.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatProvider is a streaming LLM backend. Adapt it to Generator with
// NewStreamGenerator.
type ChatProvider interface {
	Name() string
	Available(ctx context.Context) bool
	Chat(ctx context.Context, req ChatRequest) (<-chan ChatEvent, error)
	Close() error
}

// ChatRequest represents a request to the LLM.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Options      ChatOptions
}

// ChatOptions contains model configuration.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

// Message represents a conversation message.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// ChatEvent is a streaming response event.
type ChatEvent struct {
	Type  EventType
	Text  string
	Usage *Usage
	Error string
}

// EventType defines the type of chat event.
type EventType string

const (
	EventTypeTextDelta EventType = "text_delta"
	EventTypeUsage     EventType = "usage"
	EventTypeDone      EventType = "done"
	EventTypeError     EventType = "error"
)

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// EncodeAll embeds texts in order, batching when the encoder supports it,
// and checks every vector against enc.Dimension().
func EncodeAll(ctx context.Context, enc Encoder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var (
		out [][]float32
		err error
	)
	if batch, ok := enc.(BatchEncoder); ok {
		out, err = batch.EncodeBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(out) != len(texts) {
			return nil, lerr.New(lerr.CodeEncoderFailure, "batch encoder returned wrong number of vectors",
				lerr.FieldProvider(enc.Name()),
				lerr.Field("want", len(texts)),
				lerr.Field("got", len(out)),
			)
		}
	} else {
		out = make([][]float32, len(texts))
		for i, text := range texts {
			if out[i], err = enc.Encode(ctx, text); err != nil {
				return nil, lerr.With(err, lerr.Field("index", i))
			}
		}
	}

	for i, v := range out {
		if err := CheckDimension(enc, v); err != nil {
			return nil, lerr.With(err, lerr.Field("index", i))
		}
	}
	return out, nil
}

// CheckDimension reports a vector whose length differs from enc.Dimension().
func CheckDimension(enc Encoder, v []float32) error {
	if len(v) != enc.Dimension() {
		fields := append(lerr.FieldDimensions(enc.Dimension(), len(v)), lerr.FieldProvider(enc.Name()))
		return lerr.New(lerr.CodeEncoderDimensionMismatch, "encoder returned vector of unexpected length", fields...)
	}
	return nil
}

// ValidateText rejects text that no encoder can embed.
func ValidateText(name, text string) error {
	if strings.TrimSpace(text) == "" {
		return lerr.New(lerr.CodeEncoderInvalidInput, "cannot encode empty text", lerr.FieldProvider(name))
	}
	return nil
}
