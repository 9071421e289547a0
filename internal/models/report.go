package models

import "time"

// Reconciliation outcome actions.
const (
	ActionUpdated = "updated"
	ActionSkipped = "skipped"
	ActionError   = "error"
)

// Outcome is the per-user result of a reconciliation run. One record is
// appended per platform user, in platform-fetch order.
type Outcome struct {
	Success    bool   `json:"success"`
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	ExternalID string `json:"externalId"`
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
}

// RunStats holds the aggregate counters for a reconciliation run.
type RunStats struct {
	TotalExternalIdentities int `json:"totalExternalIdentities"`
	TotalPlatformUsers      int `json:"totalPlatformUsers"`
	MatchedUsers            int `json:"matchedUsers"`
	UpdatedUsers            int `json:"updatedUsers"`
	SkippedUsers            int `json:"skippedUsers"`
	Errors                  int `json:"errors"`
}

// RunMetadata identifies a single reconciliation run.
type RunMetadata struct {
	RunID       string    `json:"runId"`
	ExecutedAt  time.Time `json:"executedAt"`
	Version     string    `json:"scriptVersion"`
	Environment string    `json:"environment"`
}

// RunReport is the artifact produced by a reconciliation run. It is fully
// populated during the run and never mutated after serialization.
type RunReport struct {
	Metadata RunMetadata `json:"metadata"`
	Stats    RunStats    `json:"stats"`
	Results  []Outcome   `json:"results"`
	Errors   []string    `json:"errors"`
}

// NewRunReport creates an empty report for a fresh run.
func NewRunReport(runID, version, environment string) *RunReport {
	return &RunReport{
		Metadata: RunMetadata{
			RunID:       runID,
			ExecutedAt:  time.Now().UTC(),
			Version:     version,
			Environment: environment,
		},
		Results: []Outcome{},
		Errors:  []string{},
	}
}

// Append records an outcome and bumps the matching aggregate counters.
func (r *RunReport) Append(o Outcome) {
	r.Results = append(r.Results, o)
	switch o.Action {
	case ActionUpdated:
		r.Stats.UpdatedUsers++
	case ActionSkipped:
		r.Stats.SkippedUsers++
	case ActionError:
		r.Stats.Errors++
	}
}

// AppendError records a free-text error string.
func (r *RunReport) AppendError(msg string) {
	r.Errors = append(r.Errors, msg)
}
