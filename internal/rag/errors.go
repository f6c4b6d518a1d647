// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package rag

import (
	"errors"
	"fmt"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/legalease-ai/legalease/pkg/types"
)

// StageError reports which step of Chain.Run failed. Err keeps the full
// cause chain, so lerr.CodeOf and errors.Is see through it.
type StageError struct {
	Stage types.Stage
	Code  lerr.Code
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("rag %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageError(stage types.Stage, code lerr.Code, err error) error {
	return &StageError{
		Stage: stage,
		Code:  code,
		Err:   lerr.Wrap(err, code, string(stage)+" failed", lerr.FieldStage(string(stage))),
	}
}

// StageOf returns the failed stage, or "" if err did not come from Run.
func StageOf(err error) types.Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func IsRetrievalFailure(err error) bool { return StageOf(err) == types.StageRetrieval }

func IsPromptFailure(err error) bool { return StageOf(err) == types.StagePrompt }
