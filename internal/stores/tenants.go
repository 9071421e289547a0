package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// TenantStore reads tenant records and their configured resource maximums.
type TenantStore struct {
	db *shared.Database
}

// NewTenantStore creates a TenantStore on the given connection.
func NewTenantStore(db *shared.Database) *TenantStore {
	return &TenantStore{db: db}
}

// Get retrieves a tenant by id. A missing tenant returns
// [shared.ErrTenantNotFound]; callers must not treat that as an empty tenant.
func (s *TenantStore) Get(ctx context.Context, id string) (*models.Tenant, error) {
	query := s.db.Rebind(`
		SELECT id, name, plan, max_users, max_workflows, max_ad_accounts, created_at
		FROM tenants
		WHERE id = ?
	`)

	var tenant models.Tenant
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tenant.ID, &tenant.Name, &tenant.Plan,
		&tenant.MaxUsers, &tenant.MaxWorkflows, &tenant.MaxAdAccounts,
		&tenant.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTenantNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}

	return &tenant, nil
}
