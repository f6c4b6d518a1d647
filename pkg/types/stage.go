// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package types

// Stage identifies a step of the query-answer pipeline.
type Stage string

const (
	// StageRetrieval encodes the query and searches the vector store.
	StageRetrieval Stage = "retrieval"
	// StagePrompt assembles the generator prompt from query and context.
	StagePrompt Stage = "prompt"
	// StageGeneration calls the generator capability.
	StageGeneration Stage = "generation"
)

// Valid reports whether the stage is a known pipeline stage.
func (s Stage) Valid() bool {
	switch s {
	case StageRetrieval, StagePrompt, StageGeneration:
		return true
	default:
		return false
	}
}
