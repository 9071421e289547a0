package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/openflows/platformdb/internal/shared"
	"github.com/openflows/platformdb/internal/stores"
)

// WorkflowActive lists a tenant's active workflows, most recently executed first.
func (r *Runner) WorkflowActive(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	workflows, err := stores.NewWorkflowStore(db).ListActive(ctx, cmd.String("tenant"))
	if err != nil {
		return err
	}

	return r.writeJSON(workflows, cmd.Bool("pretty"))
}

// WorkflowStats shows execution statistics for a workflow over a trailing window.
func (r *Runner) WorkflowStats(ctx context.Context, cmd *cli.Command) error {
	workflowID := cmd.StringArg("id")
	if workflowID == "" {
		return fmt.Errorf("%w: workflow id", shared.ErrInvalidArgument)
	}

	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := stores.NewWorkflowStore(db).Stats(ctx, workflowID, int(cmd.Int("days")))
	if err != nil {
		return err
	}

	return r.writeJSON(stats, cmd.Bool("pretty"))
}

// WorkflowExecutions lists recent executions for a workflow.
func (r *Runner) WorkflowExecutions(ctx context.Context, cmd *cli.Command) error {
	workflowID := cmd.StringArg("id")
	if workflowID == "" {
		return fmt.Errorf("%w: workflow id", shared.ErrInvalidArgument)
	}

	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	logs, err := stores.NewExecutionStore(db).Recent(ctx, workflowID, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	return r.writeJSON(logs, cmd.Bool("pretty"))
}

// ReportsList lists a tenant's reports whose period falls inside the given range.
func (r *Runner) ReportsList(ctx context.Context, cmd *cli.Command) error {
	start, err := time.Parse("2006-01-02", cmd.String("start"))
	if err != nil {
		return fmt.Errorf("%w: start: %v", shared.ErrInvalidFlag, err)
	}
	end, err := time.Parse("2006-01-02", cmd.String("end"))
	if err != nil {
		return fmt.Errorf("%w: end: %v", shared.ErrInvalidFlag, err)
	}

	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := stores.NewReportStore(db).ByPeriod(ctx, cmd.String("tenant"), start, end)
	if err != nil {
		return err
	}

	return r.writeJSON(reports, cmd.Bool("pretty"))
}

// AdAccountsLimits lists a tenant's ad accounts with rate-limit status.
func (r *Runner) AdAccountsLimits(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)
	db, err := r.openPlatform(config)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts, err := stores.NewAdAccountStore(db).ListWithLimits(ctx, cmd.String("tenant"))
	if err != nil {
		return err
	}

	return r.writeJSON(accounts, cmd.Bool("pretty"))
}
