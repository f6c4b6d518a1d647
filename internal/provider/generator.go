// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package provider

import (
	"context"
	"errors"
	"strings"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultSystemPrompt frames every generation request.
const DefaultSystemPrompt = "You are a careful legal analyst. Answer only from the supplied context and cite fragment ranks."

// Collect drains a chat stream into its text. A stream that ends without a
// done event or reports an error event fails.
func Collect(ctx context.Context, events <-chan ChatEvent) (string, *Usage, error) {
	var (
		b     strings.Builder
		usage *Usage
	)
	for {
		select {
		case <-ctx.Done():
			return "", usage, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return "", usage, errors.New("stream closed before completion")
			}
			switch ev.Type {
			case EventTypeTextDelta:
				b.WriteString(ev.Text)
			case EventTypeUsage:
				usage = ev.Usage
			case EventTypeError:
				return "", usage, errors.New(ev.Error)
			case EventTypeDone:
				return b.String(), usage, nil
			}
		}
	}
}

// StreamGenerator adapts a ChatProvider to the Generator contract.
type StreamGenerator struct {
	provider ChatProvider
	model    string
	system   string
	options  ChatOptions
}

var _ Generator = (*StreamGenerator)(nil)

// NewStreamGenerator returns a Generator that sends each prompt as a single
// user message to model.
func NewStreamGenerator(p ChatProvider, model string, opts ChatOptions) *StreamGenerator {
	return &StreamGenerator{provider: p, model: model, system: DefaultSystemPrompt, options: opts}
}

func (g *StreamGenerator) Name() string { return g.provider.Name() + "/" + g.model }

func (g *StreamGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", lerr.New(lerr.CodeGeneratorInvalidInput, "prompt is empty", lerr.FieldProvider(g.provider.Name()))
	}

	events, err := g.provider.Chat(ctx, ChatRequest{
		Model:        g.model,
		SystemPrompt: g.system,
		Messages:     []Message{{Role: MessageRoleUser, Content: prompt}},
		Options:      g.options,
	})
	if err != nil {
		return "", lerr.Wrap(err, lerr.CodeGeneratorFailure, "starting chat stream", lerr.FieldProvider(g.provider.Name()))
	}

	text, _, err := Collect(ctx, events)
	if err != nil {
		return "", lerr.Wrap(err, lerr.CodeGeneratorFailure, "reading chat stream", lerr.FieldProvider(g.provider.Name()))
	}
	if strings.TrimSpace(text) == "" {
		return "", lerr.New(lerr.CodeGeneratorFailure, "model returned an empty completion", lerr.FieldProvider(g.provider.Name()))
	}
	return text, nil
}

// Close releases the underlying provider.
func (g *StreamGenerator) Close() error { return g.provider.Close() }

// Available reports whether the underlying provider can take requests.
func (g *StreamGenerator) Available(ctx context.Context) bool { return g.provider.Available(ctx) }
