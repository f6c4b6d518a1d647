// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	"github.com/legalease-ai/legalease/internal/config"
	"github.com/legalease-ai/legalease/internal/ingest"
	"github.com/legalease-ai/legalease/internal/provider"
	anthropicprov "github.com/legalease-ai/legalease/internal/provider/anthropic"
	googleprov "github.com/legalease-ai/legalease/internal/provider/google"
	"github.com/legalease-ai/legalease/internal/provider/local"
	openaiprov "github.com/legalease-ai/legalease/internal/provider/openai"
	"github.com/legalease-ai/legalease/internal/rag"
	"github.com/legalease-ai/legalease/internal/server"
	"github.com/legalease-ai/legalease/internal/store"
	_ "github.com/legalease-ai/legalease/internal/store/memory" // register memory backend
	_ "github.com/legalease-ai/legalease/internal/store/sqlite" // register sqlite backend
	_ "github.com/legalease-ai/legalease/internal/store/vptree" // register vptree backend
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// App holds all wired subsystems and manages their lifecycle.
type App struct {
	Config    *config.Config
	Store     store.VectorStore
	Registry  *provider.Registry
	Encoder   provider.Encoder
	Splitter  *clause.Splitter
	Pipeline  *ingest.Pipeline
	Analyzer  *analysis.Analyzer
	Retriever *rag.Retriever
	Chain     *rag.Chain
}

// WireApp creates all subsystems and wires them together. dataDir holds the
// sqlite database when that backend is selected.
func WireApp(_ context.Context, cfg *config.Config, dataDir string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, lerr.Errorf(lerr.CodeCLISetupFailure, "creating data directory: %w", err)
	}

	// 1. Encoder; its width must match the store.
	enc, err := newEncoder(cfg)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeCLISetupFailure, "creating encoder")
	}

	// 2. Vector store.
	vs, err := store.NewVectorStore(store.StorageConfig{
		Backend:      cfg.Storage.Backend,
		EmbeddingDim: cfg.Storage.EmbeddingDim,
		Path:         cfg.Storage.Path,
	}, dataDir)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeCLISetupFailure, "opening vector store")
	}
	if enc.Dimension() != vs.Dimension() {
		_ = vs.Close()
		return nil, lerr.New(lerr.CodeCLISetupFailure,
			"encoder "+enc.Name()+" does not match the vector store dimension",
			lerr.FieldDimensions(vs.Dimension(), enc.Dimension())...)
	}

	// 3. Provider registry with the default-then-failover generator chain.
	reg := provider.NewRegistry(provider.DefaultHealthCooldown, logger)
	reg.RegisterEncoder(enc.Name(), enc)
	refs := append([]string{cfg.Generator.Default}, cfg.Generator.Failover...)
	for _, ref := range refs {
		if _, err := reg.GeneratorByName(ref); err == nil {
			continue
		}
		gen, err := newGenerator(cfg, ref)
		if err != nil {
			_ = reg.Close()
			_ = vs.Close()
			return nil, lerr.Wrapf(err, lerr.CodeCLISetupFailure, "creating generator %s", ref)
		}
		reg.RegisterGenerator(ref, gen)
	}
	if err := reg.SetDefault(cfg.Generator.Default); err != nil {
		_ = reg.Close()
		_ = vs.Close()
		return nil, lerr.Wrapf(err, lerr.CodeCLISetupFailure, "setting default generator: %s", cfg.Generator.Default)
	}
	if len(cfg.Generator.Failover) > 0 {
		if err := reg.SetFailover(cfg.Generator.Failover); err != nil {
			_ = reg.Close()
			_ = vs.Close()
			return nil, lerr.Wrapf(err, lerr.CodeCLISetupFailure, "setting failover chain")
		}
	}

	// 4. Ingestion, analysis and the question-answer chain.
	splitter := clause.NewSplitter()
	pipeline, err := ingest.NewPipeline(splitter, enc, vs,
		ingest.WithDedup(cfg.Ingest.Dedup),
		ingest.WithLogger(logger),
	)
	if err != nil {
		_ = reg.Close()
		_ = vs.Close()
		return nil, lerr.Wrap(err, lerr.CodeCLISetupFailure, "creating ingest pipeline")
	}
	analyzer, err := analysis.NewAnalyzer(splitter, analysis.WithLogger(logger))
	if err != nil {
		_ = reg.Close()
		_ = vs.Close()
		return nil, lerr.Wrap(err, lerr.CodeCLISetupFailure, "creating analyzer")
	}
	retriever, err := rag.NewRetriever(enc, vs, rag.WithRetrieverLogger(logger))
	if err != nil {
		_ = reg.Close()
		_ = vs.Close()
		return nil, lerr.Wrap(err, lerr.CodeCLISetupFailure, "creating retriever")
	}
	chain, err := rag.NewChain(retriever, reg.Generator(),
		rag.WithK(cfg.Retrieval.K),
		rag.WithLogger(logger),
	)
	if err != nil {
		_ = reg.Close()
		_ = vs.Close()
		return nil, lerr.Wrap(err, lerr.CodeCLISetupFailure, "creating chain")
	}

	logger.Debug("application wired",
		"encoder", enc.Name(),
		"backend", cfg.Storage.Backend,
		"dimension", vs.Dimension(),
		"generators", refs,
	)

	return &App{
		Config:    cfg,
		Store:     vs,
		Registry:  reg,
		Encoder:   enc,
		Splitter:  splitter,
		Pipeline:  pipeline,
		Analyzer:  analyzer,
		Retriever: retriever,
		Chain:     chain,
	}, nil
}

// Services adapts the app for the HTTP server.
func (a *App) Services() (*server.Services, error) {
	return server.NewServices(server.Deps{
		Query:     a.Chain,
		Ingest:    a.Pipeline,
		Analysis:  a.Analyzer,
		Split:     a.Splitter,
		Store:     a.Store,
		Providers: a.Registry,
		Encoder:   a.Encoder.Name(),
		Generator: a.Config.Generator.Default,
	})
}

// Close releases providers and the store.
func (a *App) Close() error {
	var errs []error
	if a.Registry != nil {
		if err := a.Registry.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return lerr.Join(errs...)
	}
	return nil
}

func newEncoder(cfg *config.Config) (provider.Encoder, error) {
	dim := cfg.EncoderDimension()
	pc := cfg.Providers[cfg.Encoder.Provider]
	switch cfg.Encoder.Provider {
	case "local":
		return local.NewHashEncoder(dim)
	case "openai":
		return openaiprov.NewEmbedder(openaiprov.EmbedderConfig{
			Config:     openaiprov.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL},
			Model:      cfg.Encoder.Model,
			Dimensions: dim,
		})
	case "google":
		return googleprov.NewEmbedder(googleprov.EmbedderConfig{
			Config:     googleprov.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL},
			Model:      cfg.Encoder.Model,
			Dimensions: dim,
		})
	default:
		return nil, lerr.Errorf(lerr.CodeProviderNotFound, "unknown encoder provider %q", cfg.Encoder.Provider)
	}
}

// newGenerator builds the generator for a "provider/model" ref. Remote
// chat providers are wrapped so each generator owns its client.
func newGenerator(cfg *config.Config, ref string) (provider.Generator, error) {
	name, model := config.SplitModelRef(ref)
	pc := cfg.Providers[name]
	opts := provider.ChatOptions{
		Temperature: float32(cfg.Generator.Temperature),
		MaxTokens:   cfg.Generator.MaxTokens,
	}

	var (
		chat provider.ChatProvider
		err  error
	)
	switch name {
	case "local":
		if model != "extractive" {
			return nil, lerr.Errorf(lerr.CodeProviderNotFound, "unknown local generator %q", model)
		}
		return local.NewExtractiveGenerator(local.DefaultMaxSentences), nil
	case "openai":
		chat, err = openaiprov.New(openaiprov.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL})
	case "anthropic":
		chat, err = anthropicprov.New(anthropicprov.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL})
	case "google":
		chat, err = googleprov.New(googleprov.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL})
	default:
		return nil, lerr.Errorf(lerr.CodeProviderNotFound, "unknown generator provider %q", name)
	}
	if err != nil {
		return nil, err
	}
	return provider.NewStreamGenerator(chat, model, opts), nil
}
