// Package stores implements SQL persistence for the platform entities and the
// read-only view of the external identity store.
//
// Every store takes an explicit [shared.Database] handle; there is no ambient
// client or global connection state. Queries are written with `?` placeholders
// and rebound for Postgres by the handle.
//
// Key implementations:
//   - [IdentityStore] : read-only access to the authorizer user table
//   - [UserStore] : platform users, including the single-field externalId write
//   - [TenantStore] : tenant lookups with configured resource maximums
//   - [WorkflowStore], [ExecutionStore], [ReportStore], [AdAccountStore] :
//     prebuilt read queries for listings and statistics
//   - [DeprecationGuard] : warns when deprecated user columns are read or written
package stores
