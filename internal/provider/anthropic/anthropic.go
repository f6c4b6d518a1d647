// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package anthropic

import (
	"context"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/legalease-ai/legalease/internal/provider"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// defaultMaxTokens applies when the request leaves MaxTokens unset; the
// Messages API requires a value.
const defaultMaxTokens = 4096

// Config holds Anthropic provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.ChatProvider using the Anthropic Messages API.
type Provider struct {
	client anthropicsdk.Client
	config Config
}

var _ provider.ChatProvider = (*Provider)(nil)

// New creates a new Anthropic provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, lerr.New(lerr.CodeProviderRequestInvalid, "anthropic: missing api_key in config", lerr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client: anthropicsdk.NewClient(opts...),
		config: cfg,
	}, nil
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Available(_ context.Context) bool { return true }

func (p *Provider) Chat(ctx context.Context, req provider.ChatRequest) (<-chan provider.ChatEvent, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}

	return provider.Stream(ctx, func(emit provider.Emit) error {
		return p.streamChat(ctx, params, emit)
	}), nil
}

func (p *Provider) Close() error { return nil }

// buildParams converts a provider.ChatRequest into Anthropic SDK MessageNewParams.
func buildParams(req provider.ChatRequest) (anthropicsdk.MessageNewParams, error) {
	msgs, err := convertMessages(req.Messages)
	if err != nil {
		return anthropicsdk.MessageNewParams{}, err
	}

	maxTokens := int64(req.Options.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(req.Model),
		Messages:  msgs,
		MaxTokens: maxTokens,
	}

	if req.SystemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	if req.Options.Temperature > 0 {
		params.Temperature = anthropicsdk.Float(float64(req.Options.Temperature))
	}

	return params, nil
}

// convertMessages drops system messages; they travel in the top-level
// system parameter.
func convertMessages(msgs []provider.Message) ([]anthropicsdk.MessageParam, error) {
	var result []anthropicsdk.MessageParam

	for _, msg := range msgs {
		switch msg.Role {
		case provider.MessageRoleUser:
			result = append(result, anthropicsdk.NewUserMessage(
				anthropicsdk.NewTextBlock(msg.Content),
			))
		case provider.MessageRoleAssistant:
			result = append(result, anthropicsdk.NewAssistantMessage(
				anthropicsdk.NewTextBlock(msg.Content),
			))
		case provider.MessageRoleSystem:
			continue
		default:
			return nil, lerr.Errorf(lerr.CodeGeneratorInvalidInput, "anthropic: unsupported message role %q", msg.Role)
		}
	}

	if len(result) == 0 {
		return nil, lerr.New(lerr.CodeGeneratorInvalidInput, "anthropic: request has no user or assistant messages")
	}
	return result, nil
}

// streamChat forwards text deltas and reports usage once message_stop
// arrives. Input tokens come from message_start; output tokens from the
// cumulative count on message_delta.
func (p *Provider) streamChat(ctx context.Context, params anthropicsdk.MessageNewParams, emit provider.Emit) error {
	stream := p.client.Messages.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	var usage provider.Usage
	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "message_start":
			usage.InputTokens = int(event.Message.Usage.InputTokens)
		case "content_block_delta":
			if event.Delta.Type == "text_delta" && !provider.EmitText(emit, event.Delta.Text) {
				return ctx.Err()
			}
		case "message_delta":
			usage.OutputTokens = int(event.Usage.OutputTokens)
		case "message_stop":
			emit(provider.ChatEvent{Type: provider.EventTypeUsage, Usage: &usage})
			return nil
		}
	}
	return stream.Err()
}
