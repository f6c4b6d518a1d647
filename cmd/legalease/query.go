// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a question from the indexed documents",
		Long:  "Retrieve the clauses closest to the question and generate an answer from them.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().IntP("k", "k", 0, "number of clauses to retrieve (0 uses retrieval.k)")
	cmd.Flags().StringSlice("doc", nil, "ingest these files first (useful with the memory backend)")
	cmd.Flags().Bool("json", false, "print the answer and context as JSON")

	return cmd
}

type queryResult struct {
	Response string                  `json:"response"`
	Context  []store.RetrievalResult `json:"context"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("k")
	docs, _ := cmd.Flags().GetStringSlice("doc")
	asJSON, _ := cmd.Flags().GetBool("json")

	app, closeApp, err := wireFromCmd(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	if err := preload(cmd, app, docs); err != nil {
		return err
	}

	resp, err := app.Chain.RunK(contextOf(cmd), strings.Join(args, " "), k)
	if err != nil {
		return lerr.Wrap(err, lerr.CodeCLIRequestFailure, "answering query")
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(queryResult{Response: resp.Response, Context: resp.Context})
	}

	if _, err := fmt.Fprintln(out, resp.Response); err != nil {
		return err
	}
	if len(resp.Context) > 0 {
		_, _ = fmt.Fprintln(out, "\nSources:")
	}
	for _, r := range resp.Context {
		if _, err := fmt.Fprintf(out, "  [%d] %.3f %s\n", r.Fragment.ID, r.Score, r.Fragment.Text); err != nil {
			return err
		}
	}
	return nil
}

// preload ingests files before a query in the same process.
func preload(cmd *cobra.Command, app *App, paths []string) error {
	for _, path := range paths {
		doc, err := readDocument(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		if _, err := app.Pipeline.Ingest(contextOf(cmd), doc); err != nil {
			return lerr.Wrapf(err, lerr.CodeCLIRequestFailure, "ingesting %s", path)
		}
	}
	return nil
}
