// Package models defines the domain types shared by the stores, the tenancy
// helpers and the reconciliation engine.
//
// Platform entities (Tenant, User, Workflow, AdAccount, ExecutionLog, Report)
// mirror the automation platform schema. ExternalIdentity rows come from the
// separate authorizer store and are read-only everywhere in this codebase.
// RunReport is the artifact produced by a reconciliation run.
package models
