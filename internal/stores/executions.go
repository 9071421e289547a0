package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// ExecutionStore reads workflow execution logs.
type ExecutionStore struct {
	db *shared.Database
}

// NewExecutionStore creates an ExecutionStore on the given connection.
func NewExecutionStore(db *shared.Database) *ExecutionStore {
	return &ExecutionStore{db: db}
}

// Recent returns the most recent executions for a workflow, newest first.
func (s *ExecutionStore) Recent(ctx context.Context, workflowID string, limit int) ([]models.ExecutionLog, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.Rebind(`
		SELECT id, workflow_id, ad_account_id, status, duration, api_calls_used, started_at
		FROM execution_logs
		WHERE workflow_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`)

	rows, err := s.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	var logs []models.ExecutionLog
	for rows.Next() {
		var (
			entry       models.ExecutionLog
			adAccountID sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.WorkflowID, &adAccountID, &entry.Status, &entry.Duration, &entry.APICallsUsed, &entry.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		entry.AdAccountID = adAccountID.String
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return logs, nil
}
