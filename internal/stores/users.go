package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

const userColumns = "id, tenant_id, email, first_name, last_name, external_id, status, created_at"

// UserStore persists platform users. The only mutation it exposes is the
// single-field externalId link write used by the reconciliation job.
type UserStore struct {
	db    *shared.Database
	guard *DeprecationGuard
}

// NewUserStore creates a UserStore on the given connection.
func NewUserStore(db *shared.Database) *UserStore {
	return &UserStore{db: db}
}

// WithGuard installs a deprecation guard on the store's column-projecting
// reads and returns the store for chaining.
func (s *UserStore) WithGuard(g *DeprecationGuard) *UserStore {
	s.guard = g
	return s
}

// List returns every platform user ordered by creation time ascending. This
// is the processing order of the reconciliation run, which keeps report
// output deterministic.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY created_at ASC"
	return s.queryUsers(ctx, query)
}

// ListLinked returns users whose externalId is set, ordered by creation time
// ascending. Used by the validation pass after a run.
func (s *UserStore) ListLinked(ctx context.Context) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE external_id IS NOT NULL ORDER BY created_at ASC"
	return s.queryUsers(ctx, query)
}

// Get retrieves a single user by id.
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	query := s.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")

	users, err := s.queryUsers(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	return &users[0], nil
}

// SetExternalID links a platform user to an external identity. The write
// touches exactly one column and fails when the row does not exist.
func (s *UserStore) SetExternalID(ctx context.Context, userID, externalID string) error {
	s.guard.CheckWrite([]string{"external_id"})

	query := s.db.Rebind("UPDATE users SET external_id = ? WHERE id = ?")

	result, err := s.db.ExecContext(ctx, query, externalID, userID)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, userID)
	}

	return nil
}

// CountActive counts active-status users for a tenant. Invited and suspended
// users do not count against the tenant's seat limit.
func (s *UserStore) CountActive(ctx context.Context, tenantID string) (int, error) {
	query := s.db.Rebind("SELECT COUNT(*) FROM users WHERE tenant_id = ? AND status = ?")

	var count int
	if err := s.db.QueryRowContext(ctx, query, tenantID, models.StatusActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// Project returns the requested columns for every user as generic rows. The
// column list is validated against the known schema and checked against the
// deprecation guard before the query runs.
func (s *UserStore) Project(ctx context.Context, columns []string) ([]map[string]any, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns requested", shared.ErrInvalidInput)
	}
	for _, c := range columns {
		if !knownUserColumns[c] {
			return nil, fmt.Errorf("%w: unknown user column %q", shared.ErrInvalidInput, c)
		}
	}

	s.guard.CheckSelect(columns)

	query := "SELECT " + strings.Join(columns, ", ") + " FROM users ORDER BY created_at ASC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			// SQLite hands text back as a byte slice; keep rows JSON-friendly.
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return out, nil
}

// knownUserColumns guards Project against arbitrary identifiers ending up in
// the generated SQL.
var knownUserColumns = map[string]bool{
	"id": true, "tenant_id": true, "email": true, "first_name": true,
	"last_name": true, "external_id": true, "status": true, "created_at": true,
	"password_hash": true, "email_verified": true,
}

// queryUsers runs a user query and scans the standard column set.
func (s *UserStore) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			user       models.User
			firstName  sql.NullString
			lastName   sql.NullString
			externalID sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.TenantID, &user.Email, &firstName, &lastName, &externalID, &user.Status, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.FirstName = firstName.String
		user.LastName = lastName.String
		user.ExternalID = externalID.String
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// IsNotFound reports whether err is a missing-row error from this store.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrUserNotFound) || errors.Is(err, shared.ErrTenantNotFound)
}
