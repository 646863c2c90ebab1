package mechanism

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
	moidc "github.com/mongodb-industry-solutions/mdb-iam-util-go/mechanism/oidc"
	mx509 "github.com/mongodb-industry-solutions/mdb-iam-util-go/mechanism/x509"
	"github.com/mongodb-industry-solutions/mdb-iam-util-go/session"
	"github.com/mongodb-industry-solutions/mdb-iam-util-go/verify"
)

// Config describes the cluster every verifier built by a Registry audits.
type Config struct {
	// URI is the MongoDB connection string.
	URI string
	// DialTimeout and DialRetries are passed through to the session.
	DialTimeout time.Duration
	DialRetries uint64
	// Logger is shared by all verifiers. Default: no-op.
	Logger hclog.Logger
	// Dialer, when set, replaces the driver dialer. Test seam.
	Dialer session.Dialer
}

// Registry constructs and memoizes one verifier per authentication
// mechanism. It is an explicit value to be owned by the composing
// application, not a hidden process global; construction is idempotent, so
// concurrent first use is safe. The first credentials seen for a mechanism
// configure its verifier.
type Registry struct {
	cfg Config

	mu        sync.Mutex
	verifiers map[Mechanism]iam.Verifier
}

// NewRegistry creates a Registry for one cluster.
func NewRegistry(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Registry{cfg: cfg, verifiers: make(map[Mechanism]iam.Verifier)}
}

// For returns the verifier for the given credentials, building it on first
// use.
func (r *Registry) For(creds iam.Credentials) (iam.Verifier, error) {
	mech, err := Parse(creds.Mechanism())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.verifiers[mech]; ok {
		return v, nil
	}
	v, err := r.build(creds)
	if err != nil {
		return nil, err
	}
	r.verifiers[mech] = v
	return v, nil
}

// Close releases every verifier built so far.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for mech, v := range r.verifiers {
		if err := v.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s verifier: %w", mech, err)
		}
		delete(r.verifiers, mech)
	}
	return firstErr
}

// build dispatches on the credential type. Each arm decides two things: the
// driver credential for session establishment and where the subject identity
// comes from when the caller does not name one.
func (r *Registry) build(creds iam.Credentials) (iam.Verifier, error) {
	var (
		cred    *session.Credential
		subject verify.SubjectSource
	)

	switch c := creds.(type) {
	case iam.PasswordCredentials:
		cred = &session.Credential{
			Mechanism: ScramSHA256.String(),
			Username:  c.Username,
			Password:  c.Password,
		}
		if c.Username != "" {
			subject = staticSubject(c.Username)
		}

	case iam.CertificateCredentials:
		dn, err := mx509.SubjectFromPEM(c.CertificatePEM)
		if err != nil {
			return nil, fmt.Errorf("derive subject from certificate: %w", err)
		}
		cred = &session.Credential{
			Mechanism: X509.String(),
			Source:    "$external",
		}
		subject = staticSubject(dn)

	case iam.AWSCredentials:
		props := map[string]string{}
		if c.SessionToken != "" {
			props["AWS_SESSION_TOKEN"] = c.SessionToken
		}
		cred = &session.Credential{
			Mechanism:  AWS.String(),
			Source:     "$external",
			Username:   c.AccessKeyID,
			Password:   c.SecretAccessKey,
			Properties: props,
		}
		// The subject is the caller's ARN, which only the server knows;
		// leave the default connectionStatus source in place.

	case iam.LDAPCredentials:
		cred = &session.Credential{
			Mechanism: LDAP.String(),
			Source:    "$external",
			Username:  c.Username,
			Password:  c.Password,
		}
		if c.Username != "" {
			subject = staticSubject(c.Username)
		}

	case iam.OIDCCredentials:
		sub, err := moidc.SubjectFromToken(c.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("derive subject from access token: %w", err)
		}
		cred = &session.Credential{
			Mechanism:       OIDC.String(),
			Source:          "$external",
			OIDCAccessToken: c.AccessToken,
		}
		subject = staticSubject(sub)

	default:
		return nil, fmt.Errorf("%w: %T", iam.ErrUnsupportedCredentials, creds)
	}

	sessOpts := []session.Option{session.WithLogger(r.cfg.Logger)}
	if r.cfg.Dialer != nil {
		sessOpts = append(sessOpts, session.WithDialer(r.cfg.Dialer))
	}
	sess := session.New(session.Config{
		URI:         r.cfg.URI,
		Credential:  cred,
		DialTimeout: r.cfg.DialTimeout,
		DialRetries: r.cfg.DialRetries,
	}, sessOpts...)

	verifyOpts := []verify.Option{verify.WithLogger(r.cfg.Logger)}
	if subject != nil {
		verifyOpts = append(verifyOpts, verify.WithSubjectSource(subject))
	}
	return verify.New(sess, verifyOpts...), nil
}

func staticSubject(name string) verify.SubjectSource {
	return func(context.Context) (string, error) {
		return name, nil
	}
}
