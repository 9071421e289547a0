package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/openflows/platformdb/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, dbCommand, migrateCommand, tenantCommand, usersCommand, workflowCommand, reportsCommand, adAccountsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig reloads configuration when a command supplies a --config path
// and applies environment overrides. Connection strings from the environment
// always win.
func (r *Runner) resolveConfig(cmd *cli.Command) *shared.Config {
	config := r.config
	if path := cmd.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			if loaded, err := shared.LoadConfig(path); err == nil {
				config = loaded
			} else {
				r.logger.Warn("failed to load config, using current", "path", path, "error", err)
			}
		}
	}
	config.LoadEnv(".env")
	return config
}

// openPlatform opens the platform store connection using the resolved config.
func (r *Runner) openPlatform(config *shared.Config) (*shared.Database, error) {
	if config.Platform.DSN == "" {
		return nil, fmt.Errorf("%w: platform (set DATABASE_URL or [platform] dsn)", shared.ErrMissingDSN)
	}
	db, err := shared.NewDatabase(config.Platform.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open platform store: %w", err)
	}
	if config.Platform.MaxOpenConns > 0 {
		db.Configure(config.Platform.MaxOpenConns, config.Platform.MaxIdleConns)
	}
	return db, nil
}

// openAuthorizer opens the read-only identity store connection.
func (r *Runner) openAuthorizer(config *shared.Config) (*shared.Database, error) {
	if config.Authorizer.DSN == "" {
		return nil, fmt.Errorf("%w: authorizer (set AUTHORIZER_DATABASE_URL or [authorizer] dsn)", shared.ErrMissingDSN)
	}
	db, err := shared.NewDatabase(config.Authorizer.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open authorizer store: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
