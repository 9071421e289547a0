package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
	"github.com/openflows/platformdb/internal/stores"
	"github.com/openflows/platformdb/internal/tenancy"
)

// newChecker builds a tenancy checker over a freshly opened platform store.
func (r *Runner) newChecker(db *shared.Database) *tenancy.Checker {
	return tenancy.NewChecker(
		stores.NewTenantStore(db),
		stores.NewUserStore(db),
		stores.NewWorkflowStore(db),
		stores.NewAdAccountStore(db),
	)
}

// TenantStats shows a tenant's resource usage against its configured limits.
func (r *Runner) TenantStats(ctx context.Context, cmd *cli.Command) error {
	tenantID := cmd.StringArg("id")
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id", shared.ErrInvalidArgument)
	}

	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	usage, err := r.newChecker(db).Stats(ctx, tenantID)
	if err != nil {
		return err
	}

	return r.writeJSON(usage, cmd.Bool("pretty"))
}

// TenantLimit checks whether a tenant has reached a resource limit.
func (r *Runner) TenantLimit(ctx context.Context, cmd *cli.Command) error {
	tenantID := cmd.StringArg("id")
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id", shared.ErrInvalidArgument)
	}

	resource, err := models.ParseResource(cmd.String("resource"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	reached, err := r.newChecker(db).Reached(ctx, tenantID, resource)
	if err != nil {
		return err
	}

	r.writePlain("tenant %s %s limit reached: %t\n", tenantID, resource, reached)
	return nil
}

// UsersInspect projects selected user columns; deprecated columns trigger a
// warning through the deprecation guard.
func (r *Runner) UsersInspect(ctx context.Context, cmd *cli.Command) error {
	fields := strings.Split(cmd.String("fields"), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	guard := stores.NewDeprecationGuard(r.logger)
	rows, err := stores.NewUserStore(db).WithGuard(guard).Project(ctx, fields)
	if err != nil {
		return err
	}

	return r.writeJSON(rows, cmd.Bool("pretty"))
}
