package stores

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// WorkflowStore reads workflow records and execution statistics.
type WorkflowStore struct {
	db *shared.Database
}

// NewWorkflowStore creates a WorkflowStore on the given connection.
func NewWorkflowStore(db *shared.Database) *WorkflowStore {
	return &WorkflowStore{db: db}
}

// ListActive returns a tenant's active workflows, most recently executed first.
func (s *WorkflowStore) ListActive(ctx context.Context, tenantID string) ([]models.Workflow, error) {
	query := s.db.Rebind(`
		SELECT id, tenant_id, ad_account_id, creator_id, name, type, status, last_executed_at, created_at
		FROM workflows
		WHERE tenant_id = ? AND status = ?
		ORDER BY last_executed_at DESC
	`)

	rows, err := s.db.QueryContext(ctx, query, tenantID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	var workflows []models.Workflow
	for rows.Next() {
		var (
			wf             models.Workflow
			adAccountID    sql.NullString
			creatorID      sql.NullString
			lastExecutedAt sql.NullTime
		)
		if err := rows.Scan(&wf.ID, &wf.TenantID, &adAccountID, &creatorID, &wf.Name, &wf.Type, &wf.Status, &lastExecutedAt, &wf.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		wf.AdAccountID = adAccountID.String
		wf.CreatorID = creatorID.String
		if lastExecutedAt.Valid {
			t := lastExecutedAt.Time
			wf.LastExecutedAt = &t
		}
		workflows = append(workflows, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

// Count counts all workflows for a tenant, regardless of status.
func (s *WorkflowStore) Count(ctx context.Context, tenantID string) (int, error) {
	query := s.db.Rebind("SELECT COUNT(*) FROM workflows WHERE tenant_id = ?")

	var count int
	if err := s.db.QueryRowContext(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count workflows: %w", err)
	}
	return count, nil
}

// Stats aggregates execution logs for a workflow over the trailing window of
// the given number of days.
func (s *WorkflowStore) Stats(ctx context.Context, workflowID string, days int) (*models.WorkflowStats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	query := s.db.Rebind(`
		SELECT status, duration, api_calls_used
		FROM execution_logs
		WHERE workflow_id = ? AND started_at >= ?
	`)

	rows, err := s.db.QueryContext(ctx, query, workflowID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	stats := &models.WorkflowStats{Days: days, Since: since}
	totalDuration := 0
	for rows.Next() {
		var (
			status   string
			duration int
			apiCalls int
		)
		if err := rows.Scan(&status, &duration, &apiCalls); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		stats.Total++
		switch status {
		case "success":
			stats.Successful++
		case "failed":
			stats.Failed++
		}
		totalDuration += duration
		stats.TotalAPICalls += apiCalls
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
		stats.AvgDuration = int(math.Round(float64(totalDuration) / float64(stats.Total)))
		stats.AvgAPICallsPerExecution = float64(stats.TotalAPICalls) / float64(stats.Total)
	}

	return stats, nil
}
