package verify

import (
	"context"
	"fmt"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
)

// ResolveUsername returns the subject username for the audit. An explicit
// non-empty username wins verbatim and is not validated against the server.
// Otherwise a previously resolved subject is reused; failing that the
// configured subject source is consulted and its answer cached. Once cached,
// the subject does not change for the lifetime of the verifier except by
// explicit per-call override.
func (v *Verifier) ResolveUsername(ctx context.Context, username string) (string, error) {
	if username != "" {
		return username, nil
	}

	v.mu.Lock()
	cached := v.subject
	v.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	subject, err := v.source(ctx)
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", iam.ErrIdentityUnresolved
	}

	v.mu.Lock()
	v.subject = subject
	v.mu.Unlock()
	return subject, nil
}

// serverSubject asks the server who the session is authenticated as and
// returns the primary identity, the first entry of the authenticated user
// list. Opens the session as a side effect; closes it before returning.
func (v *Verifier) serverSubject(ctx context.Context) (string, error) {
	defer v.closeSession(ctx)

	principals, err := v.session.ConnectionStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("connection status: %w", err)
	}
	if len(principals) == 0 {
		return "", iam.ErrIdentityUnresolved
	}
	return principals[0].User, nil
}
