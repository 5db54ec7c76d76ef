package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/pkg/logger"
)

const app = "skillmatch"

// newRootCmd builds the command tree. Every subcommand shares --config.
func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          app,
		Short:        "skillmatch recommends freelancers for a list of required skills",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $"+config.EnvConfig+")")

	root.AddCommand(
		newServeCmd(&cfgFile),
		newRetrainCmd(&cfgFile),
		newSeedCmd(&cfgFile),
	)
	return root
}

// setup loads configuration and initializes the global logger.
func setup(ctx context.Context, cfgFile string, logOut io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx, cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(logOut)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}
