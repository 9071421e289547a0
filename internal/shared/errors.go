package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingDSN    = fmt.Errorf("missing database connection string")

	// Store errors
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrTenantNotFound   = fmt.Errorf("tenant not found")
	ErrUserNotFound     = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrInvalidResource = fmt.Errorf("invalid resource kind")
)
