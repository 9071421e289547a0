package tasks

import (
	"fmt"

	"github.com/openflows/platformdb/internal/models"
)

// Phase identifies the stage of a reconciliation run a progress update
// belongs to.
type Phase int

const (
	FetchStores Phase = iota
	Correlate
	ProcessUsers
	Validate
)

// ProgressUpdate is a non-blocking status message emitted during a run.
type ProgressUpdate struct {
	Phase   Phase
	Step    int
	Total   int
	Message string
}

func fetchedStoresUpdate(external, platform int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchStores,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d external identities and %d platform users", external, platform),
	}
}

func correlateUpdate(keys, duplicates int) ProgressUpdate {
	msg := fmt.Sprintf("Correlating by email (%d unique keys)", keys)
	if duplicates > 0 {
		msg = fmt.Sprintf("%s, %d duplicate emails (last one wins)", msg, duplicates)
	}
	return ProgressUpdate{Phase: Correlate, Step: 1, Total: 1, Message: msg}
}

func outcomeUpdate(step, total int, o models.Outcome) ProgressUpdate {
	var msg string
	switch o.Action {
	case models.ActionUpdated:
		msg = fmt.Sprintf("Updated %s with externalId %s", o.Email, o.ExternalID)
	case models.ActionSkipped:
		msg = fmt.Sprintf("Skipped %s: %s", o.Email, o.Reason)
	default:
		msg = fmt.Sprintf("Error updating %s: %s", o.Email, o.Reason)
	}
	return ProgressUpdate{Phase: ProcessUsers, Step: step, Total: total, Message: msg}
}

func validateUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Validating linked user %d/%d", step, total),
	}
}
