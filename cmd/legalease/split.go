// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legalease-ai/legalease/internal/clause"
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Print the clauses of a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplit,
	}
	cmd.Flags().Bool("json", false, "print clauses with kinds and byte offsets as JSON")
	return cmd
}

func runSplit(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	doc, err := readDocument(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	clauses := clause.NewSplitter().Split(doc.Text)
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(clauses)
	}
	_, err = fmt.Fprintln(out, clause.Join(clauses))
	return err
}
