// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legalease-ai/legalease/internal/config"
	"github.com/legalease-ai/legalease/internal/secrets"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// configEnv names a config file when --config is not given.
const configEnv = "LEGALEASE_CONFIG"

// NewRootCmd creates the root legalease command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "legalease",
		Short:         "LegalEase: clause analysis and question answering over legal documents",
		Long:          "LegalEase splits contracts into clauses, flags risky wording and answers questions from the indexed text.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before configuration")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newQueryCmd(),
		newAnalyzeCmd(),
		newSplitCmd(),
		newChatCmd(),
		newSecretCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper loads the dotenv file and binds the global flags. The config
// file itself is read by loadConfig, only for commands that need it.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()
	flags := cmd.Root().PersistentFlags()

	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return lerr.Errorf(lerr.CodeCLISetupFailure, "loading %s: %w", envFile, err)
		}
	}

	if err := v.BindPFlag("config", flags.Lookup("config")); err != nil {
		return lerr.Errorf(lerr.CodeCLISetupFailure, "binding config flag: %w", err)
	}
	if err := v.BindPFlag("data_dir", flags.Lookup("data-dir")); err != nil {
		return lerr.Errorf(lerr.CodeCLISetupFailure, "binding data-dir flag: %w", err)
	}
	if err := v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return lerr.Errorf(lerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}
	_ = v.BindEnv("data_dir", "LEGALEASE_DATA_DIR")
	return nil
}

// resolveConfigPath picks the config file: --config, then LEGALEASE_CONFIG,
// then ./legalease.yaml, then the user config, bootstrapped if missing.
// An empty result means defaults and environment only.
func resolveConfigPath() string {
	if p := viper.GetString("config"); p != "" {
		return p
	}
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	if _, err := os.Stat("legalease.yaml"); err == nil {
		return "legalease.yaml"
	}
	if p, err := config.DefaultConfigPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return config.BootstrapConfig(slog.Default())
}

// resolveDataDir returns the data directory from viper or the default.
func resolveDataDir() string {
	if dataDir := viper.GetString("data_dir"); dataDir != "" {
		return dataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".legalease")
}

// loadConfig reads the configuration, installs the configured logger as the
// slog default and resolves keyring references in provider keys. The
// returned cleanup closes the log file, if any.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, func(), error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, cleanup, err := newLogger(cmd.ErrOrStderr(), cfg.Logging, viper.GetBool("verbose"))
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	if path != "" {
		config.WarnInsecurePermissions(logger, path)
		logger.Debug("config loaded", "path", path, "environment", cfg.Environment)
	}

	if len(cfg.Providers) > 0 {
		resolved, err := secrets.ResolveProviders(secretStoreFactory(), cfg.Providers)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		cfg.Providers = resolved
	}
	return cfg, logger, cleanup, nil
}

// wireFromCmd loads configuration and wires the application. Callers must
// call the returned close function.
func wireFromCmd(cmd *cobra.Command) (*App, func(), error) {
	cfg, logger, cleanup, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	app, err := WireApp(cmd.Context(), cfg, resolveDataDir(), logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return app, func() {
		if err := app.Close(); err != nil {
			logger.Warn("closing application", "error", err)
		}
		cleanup()
	}, nil
}
