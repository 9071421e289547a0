// Package tasks implements the user reconciliation run between the external
// identity store and the platform user store.
//
// The core abstraction is ReconcileEngine, which fetches both user
// collections, correlates them by normalized email, applies at most one
// externalId write per platform user and produces a RunReport. Operations
// emit progress updates via channels for non-blocking status reporting to the
// CLI layer.
package tasks
