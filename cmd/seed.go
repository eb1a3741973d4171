package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/securohelp/case-service/internal/config"
	"github.com/securohelp/case-service/internal/observability"
	"github.com/securohelp/case-service/internal/persistence"
	"github.com/securohelp/case-service/internal/repository"
	"github.com/securohelp/case-service/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the development dataset (admin user, sample clients, insurers)",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for seeding")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	store := repository.NewPostgresStore(pg.PoolHandle())
	return seed.Run(ctx, store, cfg.Auth, logger)
}
