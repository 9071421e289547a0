package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/openflows/platformdb/internal/formatter"
	"github.com/openflows/platformdb/internal/stores"
	"github.com/openflows/platformdb/internal/tasks"
)

// MigrateUsers runs the user reconciliation between the external identity
// store and the platform store.
//
// Per-record failures are recorded in the report and exit zero; a failed
// fetch or report write is fatal. Both connections are closed on every path.
func (r *Runner) MigrateUsers(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)
	if reportPath := cmd.String("report"); reportPath != "" {
		config.Migration.ReportPath = reportPath
	}
	if rateLimit := cmd.Float("rate"); rateLimit > 0 {
		config.Migration.RateLimit = rateLimit
	}
	if env := cmd.String("env"); env != "" {
		config.Migration.Environment = env
	}

	// Missing connection configuration for either store is fatal before any
	// fetch happens.
	if err := config.Validate(); err != nil {
		return err
	}

	r.logger.Info("starting user reconciliation", "environment", config.Migration.Environment)

	platform, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer platform.Close()

	authorizer, err := r.openAuthorizer(config)
	if err != nil {
		return err
	}
	defer authorizer.Close()

	guard := stores.NewDeprecationGuard(r.logger)
	engine := tasks.NewReconcileEngine(tasks.EngineOpts{
		Identities:  stores.NewIdentityStore(authorizer),
		Users:       stores.NewUserStore(platform).WithGuard(guard),
		Logger:      r.logger,
		Environment: config.Migration.Environment,
		RateLimit:   config.Migration.RateLimit,
	})

	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchStores, tasks.Correlate:
				r.writePlain("%s\n", update.Message)
			case tasks.ProcessUsers:
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.Validate:
				if update.Step == 1 {
					r.writePlain("Validating data integrity...\n")
				}
			}
		}
	}()

	report, runErr := engine.Run(ctx, progressCh)
	close(progressCh)
	wg.Wait()

	if runErr != nil {
		return fmt.Errorf("reconciliation failed: %w", runErr)
	}

	path, err := formatter.WriteRunReport(report, config.Migration.ReportPath)
	if err != nil {
		return err
	}
	r.logger.Info("run report saved", "path", path)

	r.writePlain("\n%s\n", formatter.RenderSummary(report))
	return nil
}
