// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	"github.com/legalease-ai/legalease/internal/ingest"
	"github.com/legalease-ai/legalease/internal/rag"
	"github.com/legalease-ai/legalease/internal/server"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations.
func generateSpec() ([]byte, error) {
	splitter := clause.NewSplitter()
	analyzer, err := analysis.NewAnalyzer(splitter)
	if err != nil {
		return nil, err
	}

	// Handlers are never invoked during spec generation.
	svc, err := server.NewServices(server.Deps{
		Query:    stubQuery{},
		Ingest:   stubIngest{},
		Analysis: analyzer,
		Split:    splitter,
		Store:    stubStore{},
	})
	if err != nil {
		return nil, lerr.Errorf(lerr.CodeCLISetupFailure, "creating services: %w", err)
	}

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, svc)
	if err != nil {
		return nil, lerr.Errorf(lerr.CodeCLISetupFailure, "creating server: %w", err)
	}

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

type stubQuery struct{}

func (stubQuery) RunK(context.Context, string, int) (*rag.Response, error) { return &rag.Response{}, nil }

type stubIngest struct{}

func (stubIngest) Ingest(context.Context, ingest.Document) (*ingest.Result, error) {
	return &ingest.Result{}, nil
}

type stubStore struct{}

func (stubStore) Len(context.Context) (int, error) { return 0, nil }
