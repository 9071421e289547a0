// Package tenancy implements per-tenant quota checks and usage snapshots.
//
// Each resource kind is bound at compile time to the store that counts it;
// there is no dynamic dispatch over entity names.
package tenancy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/stores"
)

// Checker answers whether a tenant is at or over a configured resource limit.
type Checker struct {
	tenants    *stores.TenantStore
	users      *stores.UserStore
	workflows  *stores.WorkflowStore
	adAccounts *stores.AdAccountStore
}

// NewChecker creates a Checker over the given stores.
func NewChecker(tenants *stores.TenantStore, users *stores.UserStore, workflows *stores.WorkflowStore, adAccounts *stores.AdAccountStore) *Checker {
	return &Checker{
		tenants:    tenants,
		users:      users,
		workflows:  workflows,
		adAccounts: adAccounts,
	}
}

// Reached reports whether the tenant's current count for the resource kind is
// at or over its configured maximum. Users count only active-status rows.
// A missing tenant propagates as [shared.ErrTenantNotFound]; there is no
// silent default.
func (c *Checker) Reached(ctx context.Context, tenantID string, resource models.Resource) (bool, error) {
	tenant, err := c.tenants.Get(ctx, tenantID)
	if err != nil {
		return false, err
	}

	count, max, err := c.count(ctx, tenant, resource)
	if err != nil {
		return false, err
	}

	return count >= max, nil
}

// count resolves the current count and configured maximum for one resource kind.
func (c *Checker) count(ctx context.Context, tenant *models.Tenant, resource models.Resource) (int, int, error) {
	switch resource {
	case models.ResourceUsers:
		count, err := c.users.CountActive(ctx, tenant.ID)
		return count, tenant.MaxUsers, err
	case models.ResourceWorkflows:
		count, err := c.workflows.Count(ctx, tenant.ID)
		return count, tenant.MaxWorkflows, err
	case models.ResourceAdAccounts:
		count, err := c.adAccounts.Count(ctx, tenant.ID)
		return count, tenant.MaxAdAccounts, err
	default:
		return 0, 0, fmt.Errorf("invalid resource kind %q", resource)
	}
}

// Stats returns a usage snapshot across all resource kinds for a tenant.
// The three counts are independent reads and run concurrently.
func (c *Checker) Stats(ctx context.Context, tenantID string) (*models.TenantUsage, error) {
	tenant, err := c.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var userCount, workflowCount, adAccountCount int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userCount, err = c.users.CountActive(gctx, tenant.ID)
		return err
	})
	g.Go(func() error {
		var err error
		workflowCount, err = c.workflows.Count(gctx, tenant.ID)
		return err
	})
	g.Go(func() error {
		var err error
		adAccountCount, err = c.adAccounts.Count(gctx, tenant.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to gather tenant usage: %w", err)
	}

	return &models.TenantUsage{
		Tenant:     *tenant,
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
		Plan:       tenant.Plan,
		Usage: map[models.Resource]models.ResourceUsage{
			models.ResourceUsers: {
				Current:   userCount,
				Max:       tenant.MaxUsers,
				Remaining: tenant.MaxUsers - userCount,
			},
			models.ResourceWorkflows: {
				Current:   workflowCount,
				Max:       tenant.MaxWorkflows,
				Remaining: tenant.MaxWorkflows - workflowCount,
			},
			models.ResourceAdAccounts: {
				Current:   adAccountCount,
				Max:       tenant.MaxAdAccounts,
				Remaining: tenant.MaxAdAccounts - adAccountCount,
			},
		},
	}, nil
}
