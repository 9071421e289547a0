package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// nearLimitThreshold marks accounts that have consumed more than this share
// of their API call budget.
const nearLimitThreshold = 0.8

// AdAccountStore reads connected ad accounts and their rate-limit state.
type AdAccountStore struct {
	db *shared.Database
}

// NewAdAccountStore creates an AdAccountStore on the given connection.
func NewAdAccountStore(db *shared.Database) *AdAccountStore {
	return &AdAccountStore{db: db}
}

// ListWithLimits returns a tenant's ad accounts ordered by name, each
// annotated with derived rate-limit status.
func (s *AdAccountStore) ListWithLimits(ctx context.Context, tenantID string) ([]models.AdAccountWithLimits, error) {
	query := s.db.Rebind(`
		SELECT id, tenant_id, meta_account_id, name, status, api_calls_used, api_calls_limit, rate_limit_reset_at, last_sync_at
		FROM ad_accounts
		WHERE tenant_id = ?
		ORDER BY name ASC
	`)

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ad accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.AdAccountWithLimits
	for rows.Next() {
		var (
			acct    models.AdAccount
			resetAt sql.NullTime
			syncAt  sql.NullTime
		)
		if err := rows.Scan(&acct.ID, &acct.TenantID, &acct.MetaAccountID, &acct.Name, &acct.Status, &acct.APICallsUsed, &acct.APICallsLimit, &resetAt, &syncAt); err != nil {
			return nil, fmt.Errorf("failed to scan ad account: %w", err)
		}
		if resetAt.Valid {
			t := resetAt.Time
			acct.RateLimitResetAt = &t
		}
		if syncAt.Valid {
			t := syncAt.Time
			acct.LastSyncAt = &t
		}
		accounts = append(accounts, annotateLimits(acct))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ad accounts: %w", err)
	}

	return accounts, nil
}

// Count counts all ad accounts for a tenant.
func (s *AdAccountStore) Count(ctx context.Context, tenantID string) (int, error) {
	query := s.db.Rebind("SELECT COUNT(*) FROM ad_accounts WHERE tenant_id = ?")

	var count int
	if err := s.db.QueryRowContext(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ad accounts: %w", err)
	}
	return count, nil
}

// annotateLimits derives rate-limit status from an account's raw counters.
func annotateLimits(acct models.AdAccount) models.AdAccountWithLimits {
	status := models.RateLimitStatus{
		Used:      acct.APICallsUsed,
		Limit:     acct.APICallsLimit,
		Remaining: acct.APICallsLimit - acct.APICallsUsed,
		ResetsAt:  acct.RateLimitResetAt,
	}
	if acct.APICallsLimit > 0 {
		ratio := float64(acct.APICallsUsed) / float64(acct.APICallsLimit)
		status.PercentageUsed = ratio * 100
		status.IsNearLimit = ratio > nearLimitThreshold
	}
	return models.AdAccountWithLimits{AdAccount: acct, RateLimit: status}
}
