package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// Version recorded in run report metadata.
const Version = "1.0.0"

// IdentitySource is the read-only view of the external identity store the
// engine needs.
type IdentitySource interface {
	ListWithEmail(ctx context.Context) ([]models.ExternalIdentity, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// UserSource is the platform user store surface the engine needs. Writes are
// limited to the single externalId field.
type UserSource interface {
	List(ctx context.Context) ([]models.User, error)
	ListLinked(ctx context.Context) ([]models.User, error)
	SetExternalID(ctx context.Context, userID, externalID string) error
}

// ReconcileEngine correlates external identities with platform users by
// normalized email and links unlinked platform users to their identity.
//
// A run applies at most one write per platform user and never mutates the
// identity store. Re-running against the same state is a no-op: already
// linked users are skipped. Concurrent runs against
// the same platform store are not coordinated; operators must ensure a single
// run at a time.
type ReconcileEngine struct {
	identities  IdentitySource
	users       UserSource
	logger      *log.Logger
	limiter     *rate.Limiter
	environment string
}

// EngineOpts configures a ReconcileEngine.
type EngineOpts struct {
	Identities  IdentitySource
	Users       UserSource
	Logger      *log.Logger
	Environment string
	// RateLimit caps externalId writes per second. 0 means unlimited.
	RateLimit float64
}

// NewReconcileEngine creates an engine with the provided stores.
func NewReconcileEngine(opts EngineOpts) *ReconcileEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Environment == "" {
		opts.Environment = "development"
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &ReconcileEngine{
		identities:  opts.Identities,
		users:       opts.Users,
		logger:      opts.Logger,
		limiter:     limiter,
		environment: opts.Environment,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the run.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes one reconciliation pass and returns the populated report.
//
// A fetch failure aborts the run with an error (fatal tier). Per-user write
// and validation failures are captured in the report and the run continues.
func (e *ReconcileEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.RunReport, error) {
	if e.identities == nil || e.users == nil {
		return nil, fmt.Errorf("%w: reconcile engine missing a store", shared.ErrStoreUnavailable)
	}

	report := models.NewRunReport(shared.GenerateID(), Version, e.environment)

	// Both collections are independent reads; fetch them concurrently.
	var (
		identities []models.ExternalIdentity
		users      []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		identities, err = e.identities.ListWithEmail(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch external identities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = e.users.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch platform users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		report.AppendError(err.Error())
		return report, err
	}

	report.Stats.TotalExternalIdentities = len(identities)
	report.Stats.TotalPlatformUsers = len(users)
	e.sendProgress(progress, fetchedStoresUpdate(len(identities), len(users)))

	byEmail, duplicates := correlationMap(identities)
	if duplicates > 0 {
		// Duplicate normalized emails resolve last-one-wins in fetch order
		// (ascending creation time). Flagged, not silently resolved.
		e.logger.Warn("duplicate external emails in correlation map", "count", duplicates)
	}
	e.sendProgress(progress, correlateUpdate(len(byEmail), duplicates))

	for i, user := range users {
		outcome := e.processUser(ctx, report, byEmail, user)
		report.Append(outcome)
		e.sendProgress(progress, outcomeUpdate(i+1, len(users), outcome))
	}

	e.validate(ctx, report, progress)

	return report, nil
}

// processUser resolves a single platform user against the correlation map and
// applies the externalId write when applicable.
func (e *ReconcileEngine) processUser(ctx context.Context, report *models.RunReport, byEmail map[string]models.ExternalIdentity, user models.User) models.Outcome {
	identity, found := byEmail[shared.NormalizeEmail(user.Email)]
	if !found {
		return models.Outcome{
			Success: true,
			UserID:  user.ID,
			Email:   user.Email,
			Action:  models.ActionSkipped,
			Reason:  "no matching external identity",
		}
	}

	report.Stats.MatchedUsers++

	if user.Linked() {
		// First link wins. An existing externalId is never overwritten, even
		// when it differs from the newly matched identity.
		return models.Outcome{
			Success:    true,
			UserID:     user.ID,
			Email:      user.Email,
			ExternalID: user.ExternalID,
			Action:     models.ActionSkipped,
			Reason:     "already linked",
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			msg := fmt.Sprintf("failed to update user %s: %v", user.ID, err)
			report.AppendError(msg)
			return models.Outcome{
				UserID:     user.ID,
				Email:      user.Email,
				ExternalID: identity.ID,
				Action:     models.ActionError,
				Reason:     msg,
			}
		}
	}

	if err := e.users.SetExternalID(ctx, user.ID, identity.ID); err != nil {
		msg := fmt.Sprintf("failed to update user %s: %v", user.ID, err)
		report.AppendError(msg)
		return models.Outcome{
			UserID:     user.ID,
			Email:      user.Email,
			ExternalID: identity.ID,
			Action:     models.ActionError,
			Reason:     msg,
		}
	}

	return models.Outcome{
		Success:    true,
		UserID:     user.ID,
		Email:      user.Email,
		ExternalID: identity.ID,
		Action:     models.ActionUpdated,
	}
}

// validate re-reads every linked platform user and confirms the referenced
// identity still resolves. Detection only: nothing is reverted.
func (e *ReconcileEngine) validate(ctx context.Context, report *models.RunReport, progress chan<- ProgressUpdate) {
	linked, err := e.users.ListLinked(ctx)
	if err != nil {
		report.AppendError(fmt.Sprintf("validation fetch failed: %v", err))
		return
	}

	for i, user := range linked {
		e.sendProgress(progress, validateUpdate(i+1, len(linked)))

		exists, err := e.identities.Exists(ctx, user.ExternalID)
		if err != nil {
			report.AppendError(fmt.Sprintf("validation query failed for user %s: %v", user.Email, err))
			continue
		}
		if !exists {
			report.AppendError(fmt.Sprintf("validation failed: externalId %s for user %s does not exist in the identity store", user.ExternalID, user.Email))
		}
	}
}

// correlationMap builds the normalized-email lookup in slice order and counts
// duplicate keys.
func correlationMap(identities []models.ExternalIdentity) (map[string]models.ExternalIdentity, int) {
	byEmail := make(map[string]models.ExternalIdentity, len(identities))
	duplicates := 0
	for _, identity := range identities {
		key := shared.NormalizeEmail(identity.Email)
		if _, seen := byEmail[key]; seen {
			duplicates++
		}
		byEmail[key] = identity
	}
	return byEmail, duplicates
}
