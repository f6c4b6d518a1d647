// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/legalease-ai/legalease/internal/tui"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		Long:  "Open a terminal chat that answers each question from the indexed documents.",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}

	cmd.Flags().StringSlice("doc", nil, "ingest these files first (useful with the memory backend)")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	docs, _ := cmd.Flags().GetStringSlice("doc")

	app, closeApp, err := wireFromCmd(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	if err := preload(cmd, app, docs); err != nil {
		return err
	}

	title := "LegalEase · " + app.Config.Generator.Default
	return tui.Run(contextOf(cmd), title, app.Chain.Run, cmd.InOrStdin(), cmd.OutOrStdout())
}
