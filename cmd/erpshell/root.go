package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/logging"
	"github.com/GriffinCanCode/erpshell/internal/server"
)

// globalFlags override the environment configuration.
type globalFlags struct {
	envFile     string
	apiURL      string
	storage     string
	storagePath string
	manifestDir string
	logLevel    string
	logOutput   string
	dev         bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "erpshell",
		Short: "Tabbed workspace shell for the ERP backend",
		Long: `erpshell keeps an authenticated session against the ERP REST backend,
manages the open module tabs and loads module components on demand.

Run "erpshell serve" for the HTTP/WebSocket shell or "erpshell tui" for the
terminal workspace. The remaining commands operate on the same persisted
session and tabs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.envFile == "" {
				return nil
			}
			if err := godotenv.Load(flags.envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", flags.envFile, err)
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", "", "Load environment variables from this file")
	pf.StringVar(&flags.apiURL, "api-url", "", "ERP backend base URL (overrides ERP_API_URL)")
	pf.StringVar(&flags.storage, "storage", "", "Storage driver: file, sqlite, redis or memory (overrides STORAGE_DRIVER)")
	pf.StringVar(&flags.storagePath, "storage-path", "", "Storage directory or database file (overrides STORAGE_PATH)")
	pf.StringVar(&flags.manifestDir, "modules-dir", "", "Module manifest directory (overrides MODULES_MANIFEST_DIR)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	pf.StringVar(&flags.logOutput, "log-output", "stderr", "Log destination")
	pf.BoolVar(&flags.dev, "dev", false, "Development logging")

	cmd.AddCommand(
		newServeCmd(flags),
		newTUICmd(flags),
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newStatusCmd(flags),
		newModulesCmd(flags),
		newTabsCmd(flags),
		newOpenCmd(flags),
		newCloseCmd(flags),
		newBackCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// config loads the environment configuration and applies flag overrides.
func (f *globalFlags) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.apiURL != "" {
		cfg.API.BaseURL = f.apiURL
	}
	if f.storage != "" {
		cfg.Storage.Driver = f.storage
	}
	if f.storagePath != "" {
		cfg.Storage.Path = f.storagePath
	}
	if f.manifestDir != "" {
		cfg.Modules.ManifestDir = f.manifestDir
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.dev {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

// runtime wires a Runtime for one command. The caller closes it. An empty
// log output discards logs.
func (f *globalFlags) runtime(ctx context.Context, cfg *config.Config) (*server.Runtime, error) {
	logger := logging.NewNop()
	if f.logOutput != "" {
		logger = logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development, f.logOutput)
	}
	return server.NewRuntime(ctx, cfg, server.WithLogger(logger))
}

// open loads the configuration and wires a Runtime.
func (f *globalFlags) open(ctx context.Context) (*server.Runtime, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	return f.runtime(ctx, cfg)
}
