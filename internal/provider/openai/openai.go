// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package openai

import (
	"context"
	"errors"
	"sort"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/legalease-ai/legalease/internal/provider"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.ChatProvider using the OpenAI Chat Completions API.
type Provider struct {
	client openaisdk.Client
	config Config
}

var _ provider.ChatProvider = (*Provider)(nil)

// New creates a new OpenAI provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, config: cfg}, nil
}

func newClient(cfg Config) (openaisdk.Client, error) {
	if cfg.APIKey == "" {
		return openaisdk.Client{}, lerr.New(lerr.CodeProviderRequestInvalid, "openai: missing api_key in config", lerr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return openaisdk.NewClient(opts...), nil
}

func (p *Provider) Name() string { return "openai" }

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

// buildParams converts a provider.ChatRequest into OpenAI SDK ChatCompletionNewParams.
func buildParams(req provider.ChatRequest) (openaisdk.ChatCompletionNewParams, error) {
	msgs, err := convertMessages(req.Messages, req.SystemPrompt)
	if err != nil {
		return openaisdk.ChatCompletionNewParams{}, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: msgs,
		StreamOptions: openaisdk.ChatCompletionStreamOptionsParam{
			IncludeUsage: param.NewOpt(true),
		},
	}

	if req.Options.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.Options.MaxTokens))
	}

	if req.Options.Temperature > 0 {
		params.Temperature = param.NewOpt(float64(req.Options.Temperature))
	}

	return params, nil
}

// convertMessages prepends the system prompt as a system message if present.
func convertMessages(msgs []provider.Message, systemPrompt string) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	var result []openaisdk.ChatCompletionMessageParamUnion

	if systemPrompt != "" {
		result = append(result, openaisdk.SystemMessage(systemPrompt))
	}

	for _, msg := range msgs {
		switch msg.Role {
		case provider.MessageRoleUser:
			result = append(result, openaisdk.UserMessage(msg.Content))
		case provider.MessageRoleAssistant:
			result = append(result, openaisdk.AssistantMessage(msg.Content))
		case provider.MessageRoleSystem:
			result = append(result, openaisdk.SystemMessage(msg.Content))
		default:
			return nil, lerr.Errorf(lerr.CodeGeneratorInvalidInput, "openai: unsupported message role %q", msg.Role)
		}
	}

	return result, nil
}

// streamChat forwards content deltas. Usage arrives on the final chunk
// because include_usage is set.
func (p *Provider) streamChat(ctx context.Context, params openaisdk.ChatCompletionNewParams, emit provider.Emit) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if !provider.EmitText(emit, choice.Delta.Content) {
				return ctx.Err()
			}
		}
		if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
			emit(provider.ChatEvent{Type: provider.EventTypeUsage, Usage: &provider.Usage{
				InputTokens:  int(chunk.Usage.PromptTokens),
				OutputTokens: int(chunk.Usage.CompletionTokens),
			}})
		}
	}
	return stream.Err()
}

// maxEmbeddingBatch caps the inputs sent per embeddings request.
const maxEmbeddingBatch = 128

// EmbedderConfig configures the OpenAI embeddings encoder. Dimensions is
// sent with every request, so Model must accept the dimensions parameter
// (the text-embedding-3 family does).
type EmbedderConfig struct {
	Config
	Model      string
	Dimensions int
}

// Embedder implements provider.BatchEncoder using the OpenAI Embeddings API.
type Embedder struct {
	client openaisdk.Client
	model  string
	dim    int
}

var _ provider.BatchEncoder = (*Embedder)(nil)

func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Model == "" || cfg.Dimensions <= 0 {
		return nil, lerr.New(lerr.CodeProviderRequestInvalid, "openai: embedder needs model and positive dimensions", lerr.FieldProvider("openai"))
	}
	client, err := newClient(cfg.Config)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: client, model: cfg.Model, dim: cfg.Dimensions}, nil
}

func (e *Embedder) Name() string   { return "openai/" + e.model }
func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) Encode(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *Embedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if err := provider.ValidateText(e.Name(), text); err != nil {
			return nil, lerr.With(err, lerr.Field("index", i))
		}
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbeddingBatch {
		end := min(start+maxEmbeddingBatch, len(texts))
		batch, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model:          openaisdk.EmbeddingModel(e.model),
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions:     param.NewOpt(int64(e.dim)),
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeEncoderFailure, "openai: embeddings request", lerr.FieldProvider(e.Name()))
	}
	if len(resp.Data) != len(texts) {
		return nil, lerr.Wrap(errors.New("embedding count does not match input count"), lerr.CodeEncoderFailure,
			"openai: embeddings response", lerr.FieldProvider(e.Name()))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, len(data))
	for i, d := range data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		if err := provider.CheckDimension(e, v); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
