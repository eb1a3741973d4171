package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/securohelp/case-service/internal/config"
	"github.com/securohelp/case-service/internal/observability"
	"github.com/securohelp/case-service/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations from the migrations directory",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for migrations")
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

	return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
}
