// Package iam audits MongoDB database credentials: it resolves the subject
// username of a session, aggregates the roles granted to that user across all
// reachable databases, expands each role into its atomic action names and
// diffs the effective set against a required permission list.
package iam

import "context"

// Verifier is the audit contract implemented by every authentication
// mechanism variant. All variants share the same resolution engine; they
// differ only in how the subject identity is derived and how the client
// session is established.
type Verifier interface {
	// ResolveUsername returns the subject username for the audit. A non-empty
	// username argument is returned verbatim; otherwise a previously resolved
	// subject is reused, and failing that the server is asked for the
	// authenticated principal. Returns ErrIdentityUnresolved when none of the
	// three sources yields a subject.
	ResolveUsername(ctx context.Context, username string) (string, error)

	// ListRoles returns the deduplicated role names granted to the subject on
	// the administrative database. An empty username falls back to the cached
	// subject; if no subject is available it fails with ErrMissingSubject
	// before contacting the server. Session or database-listing failures are
	// reported as *AggregationError.
	ListRoles(ctx context.Context, username string) ([]string, error)

	// ExpandRole flattens a role, including built-in and inherited roles, into
	// the set of atomic action names it grants. It never fails: any lookup
	// error yields the empty set so that one bad role cannot abort an audit
	// spanning many roles.
	ExpandRole(ctx context.Context, role string) PermissionSet

	// VerifyPermissions expands the given roles (or, when none are supplied,
	// the subject's roles) into one effective permission set and diffs it
	// against the required list. It never fails: any error during
	// orchestration is logged and absorbed into an empty DiffResult. Callers
	// that must distinguish "no permissions" from "audit failed" should use
	// ListRoles and ExpandRole directly.
	VerifyPermissions(ctx context.Context, required []string, roles ...string) DiffResult

	// Close releases the underlying session. The verifier must not be used
	// afterwards.
	Close(ctx context.Context) error
}
