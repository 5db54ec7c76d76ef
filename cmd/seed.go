package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/pkg/logger"
)

var errNoDatabase = errors.New("seed requires database_url")

func newSeedCmd(cfgFile *string) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a YAML dataset into PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seed(cmd.Context(), *cfgFile, dataset)
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "YAML dataset to import (default dataset_path from config)")
	return cmd
}

func seed(ctx context.Context, cfgFile, dataset string) error {
	cfg, log, err := setup(ctx, cfgFile, os.Stderr)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errNoDatabase
	}
	if dataset == "" {
		dataset = cfg.DatasetPath
	}

	ds, err := repository.NewFileSource(dataset).Dataset(ctx)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	// Seeding always needs the schema.
	cfg.RunMigrations = true
	db, err := openPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Import(ctx, ds.RawFreelancers(), ds.Reviews); err != nil {
		return fmt.Errorf("failed to import dataset: %w", err)
	}
	log.Info(ctx, "dataset imported",
		logger.String("dataset", dataset),
		logger.Int("freelancers", len(ds.Freelancers)),
		logger.Int("reviews", len(ds.Reviews)),
	)
	return nil
}
