// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/legalease-ai/legalease/internal/provider"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// Config holds Google provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.ChatProvider using the Google Gemini API.
type Provider struct {
	client *genai.Client
	config Config
}

var _ provider.ChatProvider = (*Provider)(nil)

// New creates a new Google provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, config: cfg}, nil
}

func newClient(cfg Config) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, lerr.New(lerr.CodeProviderRequestInvalid, "google: missing api_key in config", lerr.FieldProvider("google"))
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, lerr.Wrapf(err, lerr.CodeProviderRequestInvalid, "google: creating client")
	}
	return client, nil
}

func (p *Provider) Name() string { return "google" }

func (p *Provider) Available(_ context.Context) bool { return true }

func (p *Provider) Chat(ctx context.Context, req provider.ChatRequest) (<-chan provider.ChatEvent, error) {
	contents, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	config := buildConfig(req)

	return provider.Stream(ctx, func(emit provider.Emit) error {
		return p.streamChat(ctx, req.Model, contents, config, emit)
	}), nil
}

func (p *Provider) Close() error { return nil }

// buildConfig converts a provider.ChatRequest into a genai.GenerateContentConfig.
func buildConfig(req provider.ChatRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.Options.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Options.Temperature)
	}

	if req.Options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Options.MaxTokens)
	}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: req.SystemPrompt},
			},
		}
	}

	return cfg
}

// convertMessages maps roles onto Gemini's user/model pair. System messages
// are excluded; they travel as SystemInstruction.
func convertMessages(msgs []provider.Message) ([]*genai.Content, error) {
	var result []*genai.Content

	for _, msg := range msgs {
		switch msg.Role {
		case provider.MessageRoleUser:
			result = append(result, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case provider.MessageRoleAssistant:
			result = append(result, genai.NewContentFromText(msg.Content, genai.RoleModel))
		case provider.MessageRoleSystem:
			continue
		default:
			return nil, lerr.Errorf(lerr.CodeGeneratorInvalidInput, "google: unsupported message role %q", msg.Role)
		}
	}

	return result, nil
}

// streamChat skips thought parts. Every chunk carries running usage
// totals, so only the last one is reported.
func (p *Provider) streamChat(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	emit provider.Emit,
) error {
	var usage *provider.Usage
	for result, err := range p.client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			return err
		}
		for _, candidate := range result.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Thought {
					continue
				}
				if !provider.EmitText(emit, part.Text) {
					return ctx.Err()
				}
			}
		}
		if md := result.UsageMetadata; md != nil {
			usage = &provider.Usage{
				InputTokens:  int(md.PromptTokenCount),
				OutputTokens: int(md.CandidatesTokenCount),
			}
		}
	}

	if usage != nil {
		emit(provider.ChatEvent{Type: provider.EventTypeUsage, Usage: usage})
	}
	return nil
}

// EmbedderConfig configures the Gemini embeddings encoder.
type EmbedderConfig struct {
	Config
	Model      string
	Dimensions int
}

// Embedder implements provider.BatchEncoder with Models.EmbedContent.
type Embedder struct {
	client *genai.Client
	model  string
	dim    int
}

var _ provider.BatchEncoder = (*Embedder)(nil)

func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Model == "" || cfg.Dimensions <= 0 {
		return nil, lerr.New(lerr.CodeProviderRequestInvalid, "google: embedder needs model and positive dimensions", lerr.FieldProvider("google"))
	}
	client, err := newClient(cfg.Config)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: client, model: cfg.Model, dim: cfg.Dimensions}, nil
}

func (e *Embedder) Name() string   { return "google/" + e.model }
func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) Encode(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *Embedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		if err := provider.ValidateText(e.Name(), text); err != nil {
			return nil, lerr.With(err, lerr.Field("index", i))
		}
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: genai.Ptr(int32(e.dim)),
	})
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeEncoderFailure, "google: embed content", lerr.FieldProvider(e.Name()))
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, lerr.New(lerr.CodeEncoderFailure, "google: embedding count does not match input count",
			lerr.FieldProvider(e.Name()),
			lerr.Field("want", len(texts)),
			lerr.Field("got", len(resp.Embeddings)),
		)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, lerr.New(lerr.CodeEncoderFailure, "google: missing embedding", lerr.FieldProvider(e.Name()), lerr.Field("index", i))
		}
		if err := provider.CheckDimension(e, emb.Values); err != nil {
			return nil, err
		}
		out[i] = emb.Values
	}
	return out, nil
}
