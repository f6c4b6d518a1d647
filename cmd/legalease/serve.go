// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legalease-ai/legalease/internal/server"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Load configuration, wire the encoder, store and generators, and serve the REST API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("server.listen_addr", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, closeApp, err := wireFromCmd(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	listen := app.Config.Server.ListenAddr
	if override := viper.GetString("server.listen_addr"); override != "" {
		listen = override
	}

	svc, err := app.Services()
	if err != nil {
		return lerr.Wrap(err, lerr.CodeCLISetupFailure, "creating services")
	}
	server.Version = version
	srv, err := server.New(server.Config{
		ListenAddr:  listen,
		CORSOrigins: app.Config.Server.CORSOrigins,
	}, svc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
