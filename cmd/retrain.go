package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/domain/types"
)

func newRetrainCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the skill vocabulary once and persist it",
		Long: "Retrain loads every freelancer, trains a new vocabulary and persists it to the\n" +
			"configured model store. Schedule it with cron to keep a running service's\n" +
			"next restart current, or call POST /retrain on a live service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return retrainOnce(ctx, *cfgFile, cmd.OutOrStdout())
		},
	}
}

func retrainOnce(ctx context.Context, cfgFile string, out io.Writer) error {
	// Logs go to stderr so stdout carries only the summary.
	cfg, log, err := setup(ctx, cfgFile, os.Stderr)
	if err != nil {
		return err
	}

	res, err := openResources(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer res.Close()

	svc := newService(cfg, res, log.Named("service"), false)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	sum, err := svc.Retrain(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(types.RetrainResponse{
		Success:         true,
		FreelancerCount: sum.FreelancerCount,
		VocabularySize:  sum.VocabularySize,
		ModelVersion:    sum.Version,
		TrainedAt:       sum.TrainedAt,
	})
}
