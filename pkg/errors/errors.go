// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
// Codes read "area.operation.reason"; the reason suffix drives classification.
type Code string

const (
	CodeStoreVectorAddDimensionMismatch    Code = "store.vector.add.dimension_mismatch"
	CodeStoreVectorAddLengthMismatch       Code = "store.vector.add.length_mismatch"
	CodeStoreVectorAddInvalid              Code = "store.vector.add.invalid_input"
	CodeStoreVectorSearchDimensionMismatch Code = "store.vector.search.dimension_mismatch"
	CodeStoreVectorSearchInvalid           Code = "store.vector.search.invalid_input"
	CodeStoreVectorOpenDimensionMismatch   Code = "store.vector.open.dimension_mismatch"
	CodeStoreDatabaseFailure               Code = "store.database.failure"
	CodeStoreBackendUnsupported            Code = "store.backend.unsupported"
	CodeStoreClosed                        Code = "store.state.closed"

	CodeEncoderInvalidInput      Code = "encoder.encode.invalid_input"
	CodeEncoderFailure           Code = "encoder.encode.failure"
	CodeEncoderDimensionMismatch Code = "encoder.encode.dimension_mismatch"
	CodeGeneratorInvalidInput    Code = "generator.generate.invalid_input"
	CodeGeneratorFailure         Code = "generator.generate.failure"
	CodeGeneratorAllUnavailable  Code = "generator.routing.all_unavailable"
	CodeProviderRequestInvalid   Code = "provider.request.invalid"
	CodeProviderNotFound         Code = "provider.registry.not_found"

	CodeRAGRetrieveInvalid         Code = "rag.retrieve.invalid_input"
	CodeRAGRetrieveEncodingFailure Code = "rag.retrieve.encoding_failure"
	CodeRAGRetrieveFailure         Code = "rag.retrieve.failure"
	CodeRAGPromptFailure           Code = "rag.prompt.failure"
	CodeRAGGenerateFailure         Code = "rag.generate.failure"
	CodeRAGSetupInvalid            Code = "rag.setup.invalid_input"

	CodeIngestDocumentInvalid Code = "ingest.document.invalid_input"
	CodeIngestEncodeFailure   Code = "ingest.encode.failure"
	CodeIngestStoreFailure    Code = "ingest.store.failure"

	CodeAnalysisInputInvalid Code = "analysis.input.invalid_input"
	CodeAnalysisFailure      Code = "analysis.run.failure"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"
	CodeConfigWriteFailure         Code = "config.write.failure"

	CodeSecretNotFound     Code = "secret.keyring.not_found"
	CodeSecretStoreFailure Code = "secret.keyring.failure"
	CodeSecretKeyInvalid   Code = "secret.key.invalid_input"
	CodeSecretURIInvalid   Code = "secret.uri.invalid_format"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"

	CodeCLIRequestFailure Code = "cli.request.failure"
	CodeCLISetupFailure   Code = "cli.setup.failure"
	CodeCLIInputInvalid   Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func FieldStage(value string) Attr {
	return Field("stage", value)
}

func FieldDocumentID(value string) Attr {
	return Field("document_id", value)
}

// FieldDimensions records an expected/actual vector length pair.
func FieldDimensions(expected, actual int) []Attr {
	return []Attr{Field("expected_dim", expected), Field("actual_dim", actual)}
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain, keeping its code.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

// CodeOf returns the innermost code in the chain, or "" for plain errors.
// oops resolves codes from the deepest coded error, so wrapping never
// masks the original classification.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	switch code := oopsErr.Code().(type) {
	case Code:
		return code
	case string:
		return Code(code)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", code))
	}
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

// IsDimensionMismatch covers both the per-vector dimension check and the
// fragments/embeddings length check.
func IsDimensionMismatch(err error) bool {
	r := reason(CodeOf(err))
	return r == "dimension_mismatch" || r == "length_mismatch"
}

// IsEncodingFailure reports whether the Encoder capability failed, either
// directly or as seen by the retriever.
func IsEncodingFailure(err error) bool {
	code := CodeOf(err)
	return area(code) == "encoder" || code == CodeRAGRetrieveEncodingFailure
}

func IsGenerationFailure(err error) bool {
	code := CodeOf(err)
	return area(code) == "generator" || code == CodeRAGGenerateFailure
}

// HTTPStatus translates an error chain into the status an API caller sees.
func HTTPStatus(err error) int {
	switch {
	case IsInvalidInput(err), IsDimensionMismatch(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsEncodingFailure(err), IsGenerationFailure(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	joined := stderrors.Join(errs...)
	if joined == nil {
		return nil
	}
	return oops.Code(CodeServerInternalFailure).Wrap(joined)
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}

func area(code Code) string {
	raw := string(code)
	if idx := strings.Index(raw, "."); idx != -1 {
		return raw[:idx]
	}
	return raw
}
