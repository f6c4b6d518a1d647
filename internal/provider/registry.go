// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/legalease-ai/legalease/pkg/health"
)

// Registry holds named encoders and generators and routes generation
// through a default-then-failover chain of healthy generators.
type Registry struct {
	mu         sync.RWMutex
	encoders   map[string]Encoder
	generators map[string]Generator
	health     map[string]*HealthTracker
	cooldown   time.Duration

	defaultGen string
	failover   []string
	logger     *slog.Logger
}

// NewRegistry creates an empty Registry whose health trackers use cooldown.
func NewRegistry(cooldown time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		encoders:   make(map[string]Encoder),
		generators: make(map[string]Generator),
		health:     make(map[string]*HealthTracker),
		cooldown:   cooldown,
		logger:     logger,
	}
}

// RegisterEncoder adds an encoder under name.
func (r *Registry) RegisterEncoder(name string, e Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[name] = e
}

// RegisterGenerator adds a generator under name. The first generator
// registered becomes the default until SetDefault is called.
func (r *Registry) RegisterGenerator(name string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = g
	r.health[name] = NewHealthTracker(name, r.cooldown)
	if r.defaultGen == "" {
		r.defaultGen = name
	}
}

// Encoder returns the encoder registered under name.
func (r *Registry) Encoder(name string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.encoders[name]
	if !ok {
		return nil, lerr.New(lerr.CodeProviderNotFound, "encoder not found: "+name, lerr.FieldProvider(name))
	}
	return e, nil
}

// GeneratorByName returns the generator registered under name without
// failover.
func (r *Registry) GeneratorByName(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[name]
	if !ok {
		return nil, lerr.New(lerr.CodeProviderNotFound, "generator not found: "+name, lerr.FieldProvider(name))
	}
	return g, nil
}

// SetDefault selects the primary generator.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.generators[name]; !ok {
		return lerr.New(lerr.CodeProviderNotFound, "SetDefault: generator not registered: "+name, lerr.FieldProvider(name))
	}
	r.defaultGen = name
	return nil
}

// SetFailover sets the ordered generators tried after the default.
func (r *Registry) SetFailover(chain []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range chain {
		if _, ok := r.generators[name]; !ok {
			return lerr.New(lerr.CodeProviderNotFound, "SetFailover: generator not registered: "+name, lerr.FieldProvider(name))
		}
	}
	r.failover = append([]string(nil), chain...)
	return nil
}

// Generator returns a Generator that routes through the registry. It is
// valid for the registry's lifetime and sees later SetDefault calls.
func (r *Registry) Generator() Generator { return routedGenerator{r: r} }

// Health returns a snapshot per registered generator, sorted by name.
func (r *Registry) Health() []health.Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]health.Metrics, 0, len(r.health))
	for _, h := range r.health {
		out = append(out, h.Metrics())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// Close closes every registered encoder and generator that holds resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	closeOne := func(v any) {
		c, ok := v.(io.Closer)
		if !ok {
			return
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range r.encoders {
		closeOne(e)
	}
	for _, g := range r.generators {
		closeOne(g)
	}
	if len(errs) > 0 {
		return lerr.Join(errs...)
	}
	return nil
}

// chain returns the ordered candidates, default first, without duplicates.
func (r *Registry) chain() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, 1+len(r.failover))
	seen := map[string]bool{}
	for _, name := range append([]string{r.defaultGen}, r.failover...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func (r *Registry) lookup(name string) (Generator, *HealthTracker) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generators[name], r.health[name]
}

type routedGenerator struct{ r *Registry }

func (g routedGenerator) Name() string {
	if chain := g.r.chain(); len(chain) > 0 {
		return chain[0]
	}
	return "none"
}

// Generate tries each healthy generator in chain order. Invalid input is
// returned immediately since no other backend would accept it either.
func (g routedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	chain := g.r.chain()
	if len(chain) == 0 {
		return "", lerr.New(lerr.CodeGeneratorAllUnavailable, "no generator configured")
	}

	var errs []error
	for _, name := range chain {
		gen, tracker := g.r.lookup(name)
		if gen == nil || !tracker.IsHealthy() {
			continue
		}
		text, err := gen.Generate(ctx, prompt)
		if err == nil {
			tracker.RecordSuccess()
			return text, nil
		}
		if lerr.IsInvalidInput(err) || ctx.Err() != nil {
			return "", err
		}
		tracker.RecordFailure(err)
		g.r.logger.Warn("generator failed", "provider", name, "error", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return "", lerr.New(lerr.CodeGeneratorAllUnavailable, "all generators are cooling down")
	}
	if len(errs) == 1 && len(chain) == 1 {
		return "", errs[0]
	}
	// Formatted, not wrapped: a wrapped chain would report the first
	// backend's code instead of this one.
	return "", lerr.Errorf(lerr.CodeGeneratorAllUnavailable, "all generators unavailable: %v", errors.Join(errs...))
}
