// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that can read a TOML config file.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles first-run setup for the platform database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:    "database",
				Usage:   "Initialize the platform database and run migrations",
				Flags:   []cli.Flag{configFlag()},
				Action:  r.SetupDatabase,
				Aliases: []string{"db"},
			},
		},
	}
}

// dbCommand handles connection checks and schema rollback.
func dbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database maintenance operations",
		Commands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check connectivity of the configured stores",
				Flags:  []cli.Flag{configFlag()},
				Action: r.DBHealth,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent platform migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.DBRollback,
			},
		},
	}
}

// migrateCommand handles reconciliation runs between the identity store and
// the platform store.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "One-off data migrations",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "Correlate external identities with platform users by email and link them",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "report",
						Aliases: []string{"o"},
						Usage:   "Output path for the JSON run report",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Maximum externalId writes per second (0 = unlimited)",
					},
					&cli.StringFlag{
						Name:  "env",
						Usage: "Environment tag recorded in the run report",
					},
				},
				Action: r.MigrateUsers,
			},
		},
	}
}

// tenantCommand handles tenant usage and limit queries.
func tenantCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tenant",
		Usage: "Tenant usage and limits",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show a tenant's resource usage against its limits",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.TenantStats,
			},
			{
				Name:  "limit",
				Usage: "Check whether a tenant has reached a resource limit",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "resource",
						Aliases:  []string{"r"},
						Usage:    "Resource kind: users, workflows or adAccounts",
						Required: true,
					},
				},
				Action: r.TenantLimit,
			},
		},
	}
}

// usersCommand handles platform user inspection.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Platform user operations",
		Commands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "Project selected user columns (deprecated columns are warned about)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "fields",
						Usage:    "Comma-separated column list",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.UsersInspect,
			},
		},
	}
}

// workflowCommand handles workflow listing and statistics queries.
func workflowCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "workflow",
		Aliases: []string{"wf"},
		Usage:   "Workflow listings and statistics",
		Commands: []*cli.Command{
			{
				Name:  "active",
				Usage: "List a tenant's active workflows",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Usage:    "Tenant ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.WorkflowActive,
			},
			{
				Name:  "stats",
				Usage: "Show execution statistics for a workflow",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "days",
						Usage: "Trailing window in days",
						Value: 30,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.WorkflowStats,
			},
			{
				Name:  "executions",
				Usage: "List recent executions for a workflow",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of executions to return",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.WorkflowExecutions,
			},
		},
	}
}

// reportsCommand handles report lookups.
func reportsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "Report lookups",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a tenant's reports for a period",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Usage:    "Tenant ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "start",
						Usage:    "Period start (YYYY-MM-DD)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "end",
						Usage:    "Period end (YYYY-MM-DD)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ReportsList,
			},
		},
	}
}

// adAccountsCommand handles ad account rate-limit views.
func adAccountsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "adaccounts",
		Aliases: []string{"ads"},
		Usage:   "Ad account rate-limit views",
		Commands: []*cli.Command{
			{
				Name:  "limits",
				Usage: "List a tenant's ad accounts with rate-limit status",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Usage:    "Tenant ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.AdAccountsLimits,
			},
		},
	}
}
