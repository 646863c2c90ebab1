package verify

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
	"github.com/mongodb-industry-solutions/mdb-iam-util-go/session"
)

// ListRoles scans every database visible to the session for the subject's
// user document and returns the deduplicated role names granted on the admin
// database. An empty username falls back to the cached subject; with no
// subject at all it fails with iam.ErrMissingSubject before any I/O. A
// database where the subject has no account, or where the lookup fails, is
// skipped; failing to open the session or enumerate databases aborts with an
// *iam.AggregationError. The session is closed on every exit path.
func (v *Verifier) ListRoles(ctx context.Context, username string) ([]string, error) {
	subject := username
	if subject == "" {
		v.mu.Lock()
		subject = v.subject
		v.mu.Unlock()
	}
	if subject == "" {
		return nil, iam.ErrMissingSubject
	}

	if err := v.session.Open(ctx); err != nil {
		return nil, iam.NewAggregationError("open session", err)
	}
	defer v.closeSession(ctx)

	databases, err := v.session.ListDatabases(ctx)
	if err != nil {
		return nil, iam.NewAggregationError("list databases", err)
	}

	assignments := make(map[string][]iam.RoleAssignment, len(databases))
	var skipped *multierror.Error
	for _, db := range databases {
		info, err := v.session.UserInfo(ctx, db, subject)
		if err != nil {
			skipped = multierror.Append(skipped, fmt.Errorf("%s: %w", db, err))
			continue
		}
		if info == nil {
			// Subject has no account on this database.
			continue
		}
		assignments[db] = info.Roles
	}
	if err := skipped.ErrorOrNil(); err != nil {
		v.log.Debug("databases skipped during role scan", "subject", subject, "error", err)
	}

	// Only grants recorded on the admin database are authoritative; grants
	// discovered on other databases during the scan are discarded. This
	// mirrors where the platform stores cluster-wide role grants.
	seen := make(map[string]struct{})
	roles := make([]string, 0, len(assignments[session.AdminDatabase]))
	for _, ra := range assignments[session.AdminDatabase] {
		if _, ok := seen[ra.Role]; ok {
			continue
		}
		seen[ra.Role] = struct{}{}
		roles = append(roles, ra.Role)
	}
	sort.Strings(roles)
	return roles, nil
}
