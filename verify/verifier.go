// Package verify implements the permission resolution engine: subject
// identity resolution, role aggregation across databases, privilege
// expansion and the verify facade. Authentication mechanism variants share
// this engine and differ only in how the subject is sourced.
package verify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
	"github.com/mongodb-industry-solutions/mdb-iam-util-go/session"
)

// SubjectSource supplies the subject username when none was given explicitly
// and none is cached. The default source asks the server for the
// authenticated principal; certificate and token based mechanisms substitute
// sources that derive the subject from their credential material.
type SubjectSource func(ctx context.Context) (string, error)

// Verifier audits one cluster through one session. It implements
// iam.Verifier and is safe for concurrent use.
type Verifier struct {
	session *session.Session
	log     hclog.Logger
	source  SubjectSource

	mu      sync.Mutex
	subject string
}

var _ iam.Verifier = (*Verifier)(nil)

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for absorbed failures and audit traces.
func WithLogger(log hclog.Logger) Option {
	return func(v *Verifier) {
		v.log = log
	}
}

// WithSubjectSource replaces the server-reported subject fallback.
func WithSubjectSource(source SubjectSource) Option {
	return func(v *Verifier) {
		v.source = source
	}
}

// New creates a Verifier over the given session.
func New(sess *session.Session, opts ...Option) *Verifier {
	v := &Verifier{session: sess, log: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(v)
	}
	if v.source == nil {
		v.source = v.serverSubject
	}
	return v
}

// VerifyPermissions expands the given roles, or the subject's roles when none
// are supplied, into one effective permission set and diffs it against the
// required list. It never returns an error: orchestration failures are logged
// and degrade to an empty DiffResult, so callers needing to tell "zero
// permissions" from "audit failed" must use ResolveUsername/ListRoles
// directly.
func (v *Verifier) VerifyPermissions(ctx context.Context, required []string, roles ...string) iam.DiffResult {
	log := v.log.With("audit_id", uuid.NewString())

	names := roles
	if len(names) == 0 {
		subject, err := v.ResolveUsername(ctx, "")
		if err != nil {
			log.Error("permission audit failed", "error", err)
			return iam.EmptyDiffResult()
		}
		ctx = iam.WithSubject(ctx, subject)
		if names, err = v.ListRoles(ctx, subject); err != nil {
			log.Error("permission audit failed", "subject", subject, "error", err)
			return iam.EmptyDiffResult()
		}
	}

	effective := iam.PermissionSet{}
	for _, role := range names {
		effective = effective.Union(v.ExpandRole(ctx, role))
	}

	result := iam.Diff(required, effective)
	log.Debug("permission audit complete",
		"roles", len(names),
		"present", len(result.Present),
		"missing", len(result.Missing),
		"extra", len(result.Extra))
	return result
}

// Close releases the underlying session.
func (v *Verifier) Close(ctx context.Context) error {
	return v.session.Close(ctx)
}

// closeSession closes the session at the end of a logical operation. Close
// failures do not change the operation's outcome; they are only logged.
func (v *Verifier) closeSession(ctx context.Context) {
	if err := v.session.Close(ctx); err != nil {
		v.log.Warn("session close failed", "error", err)
	}
}
