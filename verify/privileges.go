package verify

import (
	"context"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
)

// ExpandRole flattens a role into the set of atomic action names it grants.
// The lookup runs on the admin database with full privilege detail and
// built-in role expansion, so a custom role inheriting from a built-in role
// comes back already flattened by the server, possibly as several role
// entries. Every action of every privilege of every entry lands in the
// result; resource scoping is discarded.
//
// ExpandRole never fails: any error is logged and absorbed into the empty
// set, so one renamed or dropped role cannot abort an audit spanning many
// roles. The session is closed on every exit path.
func (v *Verifier) ExpandRole(ctx context.Context, role string) iam.PermissionSet {
	actions := iam.PermissionSet{}

	if err := v.session.Open(ctx); err != nil {
		v.log.Warn("role expansion skipped", "role", role, "error", err)
		return actions
	}
	defer v.closeSession(ctx)

	entries, err := v.session.RoleInfo(ctx, role)
	if err != nil {
		v.log.Warn("role lookup failed, treating as no privileges", "role", role, "error", err)
		return actions
	}
	for _, entry := range entries {
		actions = actions.Union(entry.Actions())
	}
	return actions
}
