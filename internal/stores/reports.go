package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// ReportStore reads generated performance reports.
type ReportStore struct {
	db *shared.Database
}

// NewReportStore creates a ReportStore on the given connection.
func NewReportStore(db *shared.Database) *ReportStore {
	return &ReportStore{db: db}
}

// ByPeriod returns a tenant's reports whose period falls entirely inside
// [start, end], newest first.
func (s *ReportStore) ByPeriod(ctx context.Context, tenantID string, start, end time.Time) ([]models.Report, error) {
	query := s.db.Rebind(`
		SELECT id, tenant_id, workflow_id, ad_account_id, period_start, period_end, created_at
		FROM reports
		WHERE tenant_id = ? AND period_start >= ? AND period_end <= ?
		ORDER BY created_at DESC
	`)

	rows, err := s.db.QueryContext(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var (
			report      models.Report
			workflowID  sql.NullString
			adAccountID sql.NullString
		)
		if err := rows.Scan(&report.ID, &report.TenantID, &workflowID, &adAccountID, &report.PeriodStart, &report.PeriodEnd, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report.WorkflowID = workflowID.String
		report.AdAccountID = adAccountID.String
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}
