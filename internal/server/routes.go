// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	"github.com/legalease-ai/legalease/internal/ingest"
	"github.com/legalease-ai/legalease/internal/rag"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/legalease-ai/legalease/pkg/health"
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, s.handleHealth)

	huma.Register(s.api, huma.Operation{
		OperationID:   "ingest-document",
		Method:        http.MethodPost,
		Path:          "/api/v1/documents",
		Summary:       "Split, embed and store a document",
		Tags:          []string{"documents"},
		DefaultStatus: http.StatusCreated,
	}, s.handleIngest)

	huma.Register(s.api, huma.Operation{
		OperationID: "predict",
		Method:      http.MethodPost,
		Path:        "/api/v1/predict",
		Summary:     "Classify clauses, score risks and extract entities",
		Tags:        []string{"analysis"},
	}, s.handlePredict)

	huma.Register(s.api, huma.Operation{
		OperationID: "split",
		Method:      http.MethodPost,
		Path:        "/api/v1/split",
		Summary:     "Split a document into clauses",
		Tags:        []string{"analysis"},
	}, s.handleSplit)

	huma.Register(s.api, huma.Operation{
		OperationID: "query",
		Method:      http.MethodPost,
		Path:        "/api/v1/query",
		Summary:     "Answer a question from stored clauses",
		Tags:        []string{"query"},
	}, s.handleQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-providers",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "Generator health",
		Tags:        []string{"system"},
	}, s.handleListProviders)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-provider",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers/{name}",
		Summary:     "Health of one generator",
		Tags:        []string{"system"},
	}, s.handleGetProvider)
}

// --- Request/Response types for huma ---

type healthOutput struct {
	Body struct {
		Status    string `json:"status" example:"ok" doc:"ok, or degraded when the store cannot be read"`
		StoreSize int    `json:"store_size" doc:"Number of stored clause fragments"`
		Encoder   string `json:"encoder"`
		Generator string `json:"generator"`
	}
}

type ingestInput struct {
	Body struct {
		ID    string `json:"id,omitempty" doc:"Document id; generated when empty"`
		Title string `json:"title,omitempty" doc:"Document title; read from the first line when empty"`
		Text  string `json:"text" doc:"Full document text"`
	}
}

type ingestOutput struct {
	Body *ingest.Result
}

type textInput struct {
	Body struct {
		Text string `json:"text" doc:"Full document text"`
	}
}

type predictOutput struct {
	Body *analysis.Report
}

type splitOutput struct {
	Body struct {
		Clauses []clause.Clause `json:"clauses"`
	}
}

type queryInput struct {
	Body struct {
		Query string `json:"query" doc:"Natural-language question"`
		K     int    `json:"k,omitempty" minimum:"0" maximum:"100" doc:"Fragments to retrieve; 0 uses the server default"`
	}
}

// ContextItem is one retrieved fragment in a query response.
type ContextItem struct {
	ID       int64          `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

type queryOutput struct {
	Body struct {
		Response string        `json:"response"`
		Context  []ContextItem `json:"context"`
	}
}

type listProvidersOutput struct {
	Body struct {
		Providers []health.Metrics `json:"providers"`
	}
}

type providerNameInput struct {
	Name string `path:"name"`
}

type getProviderOutput struct {
	Body health.Metrics
}

// --- Handlers ---

func (s *Server) handleHealth(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{}
	out.Body.Status = "ok"
	out.Body.Encoder = s.services.deps.Encoder
	out.Body.Generator = s.services.deps.Generator

	n, err := s.services.deps.Store.Len(ctx)
	if err != nil {
		s.logger.Warn("health: reading store size", "error", err)
		out.Body.Status = "degraded"
	}
	out.Body.StoreSize = n
	return out, nil
}

func (s *Server) handleIngest(ctx context.Context, input *ingestInput) (*ingestOutput, error) {
	res, err := s.services.deps.Ingest.Ingest(ctx, ingest.Document{
		ID:    input.Body.ID,
		Title: input.Body.Title,
		Text:  input.Body.Text,
	})
	if err != nil {
		return nil, s.apiError("ingesting document", err)
	}
	return &ingestOutput{Body: res}, nil
}

func (s *Server) handlePredict(ctx context.Context, input *textInput) (*predictOutput, error) {
	report, err := s.services.deps.Analysis.Analyze(ctx, input.Body.Text)
	if err != nil {
		return nil, s.apiError("analyzing document", err)
	}
	return &predictOutput{Body: report}, nil
}

func (s *Server) handleSplit(_ context.Context, input *textInput) (*splitOutput, error) {
	out := &splitOutput{}
	out.Body.Clauses = s.services.deps.Split.Split(input.Body.Text)
	return out, nil
}

func (s *Server) handleQuery(ctx context.Context, input *queryInput) (*queryOutput, error) {
	resp, err := s.services.deps.Query.RunK(ctx, input.Body.Query, input.Body.K)
	if err != nil {
		return nil, s.apiError("answering query", err)
	}

	out := &queryOutput{}
	out.Body.Response = resp.Response
	out.Body.Context = make([]ContextItem, 0, len(resp.Context))
	for _, r := range resp.Context {
		out.Body.Context = append(out.Body.Context, ContextItem{
			ID:       r.Fragment.ID,
			Text:     r.Fragment.Text,
			Metadata: r.Fragment.Metadata,
			Score:    r.Score,
		})
	}
	return out, nil
}

func (s *Server) handleListProviders(_ context.Context, _ *struct{}) (*listProvidersOutput, error) {
	out := &listProvidersOutput{}
	out.Body.Providers = []health.Metrics{}
	if s.services.deps.Providers != nil {
		out.Body.Providers = s.services.deps.Providers.Health()
	}
	return out, nil
}

func (s *Server) handleGetProvider(_ context.Context, input *providerNameInput) (*getProviderOutput, error) {
	if s.services.deps.Providers != nil {
		for _, m := range s.services.deps.Providers.Health() {
			if m.Provider == input.Name {
				return &getProviderOutput{Body: m}, nil
			}
		}
	}
	return nil, huma.Error404NotFound(fmt.Sprintf("provider %q not found", input.Name))
}

// apiError maps a coded error onto the HTTP status it implies. Internal
// details of 5xx failures are logged, not returned.
func (s *Server) apiError(action string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return huma.Error504GatewayTimeout(action + ": request timed out")
	}

	status := lerr.HTTPStatus(err)
	msg := action + ": " + err.Error()
	var stageErr *rag.StageError
	if errors.As(err, &stageErr) {
		msg = fmt.Sprintf("%s: %s stage failed: %v", action, stageErr.Stage, stageErr.Err)
	}

	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		s.logger.Error(action, "error", err, "code", lerr.CodeOf(err))
		return huma.Error500InternalServerError(action + " failed")
	case status == http.StatusServiceUnavailable:
		s.logger.Warn(action, "error", err, "code", lerr.CodeOf(err))
	}
	return huma.NewError(status, msg)
}
