package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openflows/platformdb/internal/shared"
)

// SetupDatabase initializes the platform database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}
	config.LoadEnv(".env")

	r.logger.Info("initializing platform database", "dsn", config.Platform.DSN)

	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for platform database: %v", config.Platform.DSN)
	return nil
}

// DBRollback rolls back the most recent platform migration.
func (r *Runner) DBRollback(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	r.logger.Info("rolled back most recent migration")
	return nil
}

// DBHealth checks connectivity of the configured stores. The authorizer store
// is optional here: it is only checked when a DSN is configured.
func (r *Runner) DBHealth(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	platform, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer platform.Close()

	if err := platform.HealthCheck(); err != nil {
		return fmt.Errorf("platform store unhealthy: %w", err)
	}
	r.writePlain("platform store: ok (%s)\n", platform.Driver())

	if config.Authorizer.DSN == "" {
		r.writePlain("authorizer store: not configured\n")
		return nil
	}

	authorizer, err := r.openAuthorizer(config)
	if err != nil {
		return err
	}
	defer authorizer.Close()

	if err := authorizer.HealthCheck(); err != nil {
		return fmt.Errorf("authorizer store unhealthy: %w", err)
	}
	r.writePlain("authorizer store: ok (%s)\n", authorizer.Driver())
	return nil
}
