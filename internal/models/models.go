package models

import (
	"fmt"
	"time"
)

// User status values in the platform store.
const (
	StatusActive    = "active"
	StatusInvited   = "invited"
	StatusSuspended = "suspended"
)

// Resource is an enumerated countable entity subject to a per-tenant maximum.
type Resource string

const (
	ResourceUsers      Resource = "users"
	ResourceWorkflows  Resource = "workflows"
	ResourceAdAccounts Resource = "adAccounts"
)

// ParseResource maps a string to a Resource, erroring on unknown kinds so an
// unchecked value can never select a store at runtime.
func ParseResource(s string) (Resource, error) {
	switch Resource(s) {
	case ResourceUsers, ResourceWorkflows, ResourceAdAccounts:
		return Resource(s), nil
	default:
		return "", fmt.Errorf("invalid resource kind %q (must be users, workflows or adAccounts)", s)
	}
}

// Tenant is an isolated customer scope. Resource counts and limits are always
// scoped to a tenant.
type Tenant struct {
	ID            string
	Name          string
	Plan          string
	MaxUsers      int
	MaxWorkflows  int
	MaxAdAccounts int
	CreatedAt     time.Time
}

// User is a platform user record. Only ExternalID is ever written by the
// reconciliation job, and only while it is unset.
type User struct {
	ID         string
	TenantID   string
	Email      string
	FirstName  string
	LastName   string
	ExternalID string // empty means not yet linked
	Status     string
	CreatedAt  time.Time
}

// Linked reports whether the user already carries an external identity link.
func (u User) Linked() bool {
	return u.ExternalID != ""
}

// ExternalIdentity is a row from the external identity store. Immutable from
// this codebase's perspective.
type ExternalIdentity struct {
	ID              string
	Email           string
	GivenName       string
	FamilyName      string
	Roles           string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
}

// Workflow is an automation workflow owned by a tenant.
type Workflow struct {
	ID             string
	TenantID       string
	AdAccountID    string
	CreatorID      string
	Name           string
	Type           string
	Status         string
	LastExecutedAt *time.Time
	CreatedAt      time.Time
}

// AdAccount is a connected advertising account with API rate-limit state.
type AdAccount struct {
	ID               string
	TenantID         string
	MetaAccountID    string
	Name             string
	Status           string
	APICallsUsed     int
	APICallsLimit    int
	RateLimitResetAt *time.Time
	LastSyncAt       *time.Time
}

// RateLimitStatus annotates an ad account with derived rate-limit figures.
type RateLimitStatus struct {
	Used           int        `json:"used"`
	Limit          int        `json:"limit"`
	Remaining      int        `json:"remaining"`
	PercentageUsed float64    `json:"percentageUsed"`
	IsNearLimit    bool       `json:"isNearLimit"`
	ResetsAt       *time.Time `json:"resetsAt,omitempty"`
}

// AdAccountWithLimits pairs an ad account with its rate-limit status.
type AdAccountWithLimits struct {
	AdAccount
	RateLimit RateLimitStatus `json:"rateLimitStatus"`
}

// ExecutionLog is one workflow execution.
type ExecutionLog struct {
	ID           string
	WorkflowID   string
	AdAccountID  string
	Status       string
	Duration     int
	APICallsUsed int
	StartedAt    time.Time
}

// Report is a generated performance report scoped to a tenant and period.
type Report struct {
	ID          string
	TenantID    string
	WorkflowID  string
	AdAccountID string
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedAt   time.Time
}

// WorkflowStats summarizes execution logs for a workflow over a trailing window.
type WorkflowStats struct {
	Days                    int       `json:"days"`
	Since                   time.Time `json:"since"`
	Total                   int       `json:"total"`
	Successful              int       `json:"successful"`
	Failed                  int       `json:"failed"`
	SuccessRate             float64   `json:"successRate"`
	AvgDuration             int       `json:"avgDuration"`
	TotalAPICalls           int       `json:"totalApiCalls"`
	AvgAPICallsPerExecution float64   `json:"avgApiCallsPerExecution"`
}

// ResourceUsage pairs a current count with the configured maximum.
type ResourceUsage struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

// TenantUsage is a usage snapshot for a tenant across all resource kinds.
type TenantUsage struct {
	Tenant     Tenant                     `json:"-"`
	TenantID   string                     `json:"tenantId"`
	TenantName string                     `json:"tenantName"`
	Plan       string                     `json:"plan"`
	Usage      map[Resource]ResourceUsage `json:"usage"`
}
