package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
	tu "github.com/openflows/platformdb/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 8 {
			t.Errorf("expected 8 command groups, got %d", len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("openPlatform", func(t *testing.T) {
		t.Run("missing dsn errors", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			config := shared.DefaultConfig()
			config.Platform.DSN = ""

			if _, err := runner.openPlatform(config); err == nil {
				t.Fatal("expected error for missing platform dsn")
			}
		})

		t.Run("opens an in-memory store", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			config := shared.DefaultConfig()
			config.Platform.DSN = ":memory:"

			db, err := runner.openPlatform(config)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer db.Close()

			if err := db.HealthCheck(); err != nil {
				t.Errorf("expected healthy connection, got %v", err)
			}
		})
	})
}

// seedStores prepares a platform database and an identity database on disk and
// returns their paths.
func seedStores(t *testing.T, dir string) (string, string) {
	t.Helper()
	platformPath := filepath.Join(dir, "platform.db")
	authorizerPath := filepath.Join(dir, "authorizer.db")
	seededAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	platform, err := shared.NewDatabase(platformPath)
	if err != nil {
		t.Fatalf("failed to open platform db: %v", err)
	}
	defer platform.Close()
	if err := shared.RunMigrations(platform); err != nil {
		t.Fatalf("failed to migrate platform db: %v", err)
	}
	if _, err := platform.Exec(
		"INSERT INTO tenants (id, name, plan, max_users, max_workflows, max_ad_accounts, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"t-1", "Tenant One", "starter", 5, 10, 3, seededAt,
	); err != nil {
		t.Fatalf("failed to seed tenant: %v", err)
	}
	if _, err := platform.Exec(
		"INSERT INTO users (id, tenant_id, email, status, created_at) VALUES (?, ?, ?, ?, ?)",
		"p-1", "t-1", "A@X.com", models.StatusActive, seededAt,
	); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if _, err := platform.Exec(
		"INSERT INTO users (id, tenant_id, email, status, created_at) VALUES (?, ?, ?, ?, ?)",
		"p-2", "t-1", "nomatch@x.com", models.StatusActive, seededAt.Add(time.Hour),
	); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	authorizer, err := shared.NewDatabase(authorizerPath)
	if err != nil {
		t.Fatalf("failed to open authorizer db: %v", err)
	}
	defer authorizer.Close()
	if _, err := authorizer.Exec(`
		CREATE TABLE authorizer_users (
			id TEXT PRIMARY KEY,
			email TEXT,
			given_name TEXT,
			family_name TEXT,
			roles TEXT,
			email_verified_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		t.Fatalf("failed to create identity table: %v", err)
	}
	if _, err := authorizer.Exec(
		"INSERT INTO authorizer_users (id, email, roles, created_at) VALUES (?, ?, ?, ?)",
		"ext-1", "a@x.com", "user", seededAt,
	); err != nil {
		t.Fatalf("failed to seed identity: %v", err)
	}

	return platformPath, authorizerPath
}

// newTestApp wires a runner into a root command the way main does.
func newTestApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "platformdb",
		Commands: runner.register(),
	}
}

func TestMigrateUsersCommand(t *testing.T) {
	dir := t.TempDir()
	platformPath, authorizerPath := seedStores(t, dir)
	reportPath := filepath.Join(dir, "report.json")

	t.Setenv("DATABASE_URL", platformPath)
	t.Setenv("AUTHORIZER_DATABASE_URL", authorizerPath)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})
	app := newTestApp(runner)

	err := app.Run(context.Background(), []string{
		"platformdb", "migrate", "users", "--report", reportPath, "--env", "test",
	})
	if err != nil {
		t.Fatalf("migrate users failed: %v", err)
	}

	var report models.RunReport
	if err := json.Unmarshal([]byte(tu.MustReadFile(t, reportPath)), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Metadata.Environment != "test" {
		t.Errorf("expected environment test, got %s", report.Metadata.Environment)
	}
	if report.Stats.TotalPlatformUsers != 2 {
		t.Errorf("expected 2 platform users, got %d", report.Stats.TotalPlatformUsers)
	}
	if report.Stats.UpdatedUsers != 1 || report.Stats.SkippedUsers != 1 {
		t.Errorf("unexpected stats %+v", report.Stats)
	}
	if len(report.Errors) != 0 {
		t.Errorf("expected clean run, got errors %v", report.Errors)
	}

	out := output.String()
	if !strings.Contains(out, "Migration Summary") {
		t.Errorf("expected rendered summary, got:\n%s", out)
	}

	// Second run must be a no-op: the link from the first run is preserved.
	output.Reset()
	app = newTestApp(runner)
	if err := app.Run(context.Background(), []string{
		"platformdb", "migrate", "users", "--report", reportPath, "--env", "test",
	}); err != nil {
		t.Fatalf("second migrate users failed: %v", err)
	}
	if err := json.Unmarshal([]byte(tu.MustReadFile(t, reportPath)), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Stats.UpdatedUsers != 0 || report.Stats.SkippedUsers != 2 {
		t.Errorf("expected idempotent second run, got %+v", report.Stats)
	}
}

func TestMigrateUsersMissingAuthorizer(t *testing.T) {
	dir := t.TempDir()
	platformPath, _ := seedStores(t, dir)

	t.Setenv("DATABASE_URL", platformPath)
	t.Setenv("AUTHORIZER_DATABASE_URL", "")

	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
	config := shared.DefaultConfig()
	config.Authorizer.DSN = ""
	runner.config = config
	app := newTestApp(runner)

	err := app.Run(context.Background(), []string{"platformdb", "migrate", "users"})
	if err == nil {
		t.Fatal("expected error for missing authorizer dsn")
	}
}

func TestTenantCommands(t *testing.T) {
	dir := t.TempDir()
	platformPath, authorizerPath := seedStores(t, dir)

	t.Setenv("DATABASE_URL", platformPath)
	t.Setenv("AUTHORIZER_DATABASE_URL", authorizerPath)

	t.Run("stats reports usage against limits", func(t *testing.T) {
		output := &bytes.Buffer{}
		app := newTestApp(NewRunner(RunnerOpts{Output: output}))

		if err := app.Run(context.Background(), []string{"platformdb", "tenant", "stats", "t-1"}); err != nil {
			t.Fatalf("tenant stats failed: %v", err)
		}

		var usage models.TenantUsage
		if err := json.Unmarshal(output.Bytes(), &usage); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if usage.TenantID != "t-1" {
			t.Errorf("expected tenant t-1, got %s", usage.TenantID)
		}
		users := usage.Usage[models.ResourceUsers]
		if users.Current != 2 || users.Max != 5 {
			t.Errorf("expected 2/5 users, got %+v", users)
		}
	})

	t.Run("limit prints a verdict", func(t *testing.T) {
		output := &bytes.Buffer{}
		app := newTestApp(NewRunner(RunnerOpts{Output: output}))

		if err := app.Run(context.Background(), []string{"platformdb", "tenant", "limit", "--resource", "users", "t-1"}); err != nil {
			t.Fatalf("tenant limit failed: %v", err)
		}

		if got := output.String(); got != "tenant t-1 users limit reached: false\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("unknown resource errors", func(t *testing.T) {
		app := newTestApp(NewRunner(RunnerOpts{Output: &bytes.Buffer{}}))

		err := app.Run(context.Background(), []string{"platformdb", "tenant", "limit", "--resource", "widgets", "t-1"})
		if err == nil {
			t.Fatal("expected error for unknown resource")
		}
	})

	t.Run("missing tenant errors", func(t *testing.T) {
		app := newTestApp(NewRunner(RunnerOpts{Output: &bytes.Buffer{}}))

		err := app.Run(context.Background(), []string{"platformdb", "tenant", "stats", "t-missing"})
		if err == nil {
			t.Fatal("expected error for missing tenant")
		}
	})
}

func TestUsersInspectCommand(t *testing.T) {
	dir := t.TempDir()
	platformPath, authorizerPath := seedStores(t, dir)

	t.Setenv("DATABASE_URL", platformPath)
	t.Setenv("AUTHORIZER_DATABASE_URL", authorizerPath)

	t.Run("projects requested columns", func(t *testing.T) {
		output := &bytes.Buffer{}
		app := newTestApp(NewRunner(RunnerOpts{Output: output}))

		if err := app.Run(context.Background(), []string{"platformdb", "users", "inspect", "--fields", "id,email"}); err != nil {
			t.Fatalf("users inspect failed: %v", err)
		}

		var rows []map[string]any
		if err := json.Unmarshal(output.Bytes(), &rows); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0]["id"] != "p-1" {
			t.Errorf("expected first row p-1, got %v", rows[0]["id"])
		}
	})

	t.Run("unknown column errors", func(t *testing.T) {
		app := newTestApp(NewRunner(RunnerOpts{Output: &bytes.Buffer{}}))

		err := app.Run(context.Background(), []string{"platformdb", "users", "inspect", "--fields", "id,nope"})
		if err == nil {
			t.Fatal("expected error for unknown column")
		}
	})
}
