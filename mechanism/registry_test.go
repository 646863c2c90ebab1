package mechanism

import (
	"context"
	"errors"
	"sync"
	"testing"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
	"github.com/mongodb-industry-solutions/mdb-iam-util-go/session"
)

type stubCommander struct{}

func (stubCommander) ListDatabaseNames(ctx context.Context) ([]string, error) { return nil, nil }
func (stubCommander) UserInfo(ctx context.Context, database, username string) (*session.UserInfo, error) {
	return nil, nil
}
func (stubCommander) RoleInfo(ctx context.Context, role string) ([]iam.Role, error) {
	return nil, nil
}
func (stubCommander) ConnectionStatus(ctx context.Context) ([]iam.Principal, error) {
	return nil, nil
}
func (stubCommander) Disconnect(ctx context.Context) error { return nil }

type stubDialer struct{}

func (stubDialer) Dial(ctx context.Context) (session.Commander, error) {
	return stubCommander{}, nil
}

func newTestRegistry() *Registry {
	return NewRegistry(Config{URI: "mongodb://localhost:27017", Dialer: stubDialer{}})
}

func TestRegistry_Memoizes(t *testing.T) {
	r := newTestRegistry()
	creds := iam.PasswordCredentials{Username: "app_user", Password: "secret"}

	first, err := r.For(creds)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	second, err := r.For(iam.PasswordCredentials{Username: "someone_else", Password: "x"})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if first != second {
		t.Fatalf("expected one verifier instance per mechanism")
	}
}

func TestRegistry_ConcurrentFirstUse(t *testing.T) {
	r := newTestRegistry()
	creds := iam.PasswordCredentials{Username: "app_user", Password: "secret"}

	const n = 16
	verifiers := make([]iam.Verifier, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := r.For(creds)
			if err != nil {
				t.Errorf("For: %v", err)
				return
			}
			verifiers[i] = v
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if verifiers[i] != verifiers[0] {
			t.Fatalf("concurrent first use produced distinct instances")
		}
	}
}

func TestRegistry_MechanismsIndependent(t *testing.T) {
	r := newTestRegistry()
	scram, err := r.For(iam.PasswordCredentials{Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("scram: %v", err)
	}
	ldap, err := r.For(iam.LDAPCredentials{Username: "cn=u", Password: "p"})
	if err != nil {
		t.Fatalf("ldap: %v", err)
	}
	if scram == ldap {
		t.Fatalf("mechanisms must not share a verifier")
	}
}

func TestRegistry_SubjectFromCredentials(t *testing.T) {
	r := newTestRegistry()
	v, err := r.For(iam.PasswordCredentials{Username: "app_user", Password: "secret"})
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	// The stub server reports no authenticated principal, so a non-empty
	// answer proves the subject came from the credentials.
	subject, err := v.ResolveUsername(context.Background(), "")
	if err != nil || subject != "app_user" {
		t.Fatalf("subject = %q, %v", subject, err)
	}
}

func TestRegistry_RejectsBadCredentials(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.For(iam.CertificateCredentials{CertificatePEM: []byte("not a pem")}); err == nil {
		t.Fatalf("expected error for unparsable certificate")
	}
	if _, err := r.For(iam.OIDCCredentials{AccessToken: "not.a.jwt"}); err == nil {
		t.Fatalf("expected error for unparsable token")
	}
}

type bogusCredentials struct{}

func (bogusCredentials) Mechanism() string { return "GSSAPI" }

func TestRegistry_UnknownMechanism(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.For(bogusCredentials{}); !errors.Is(err, ErrUnknownMechanism) {
		t.Fatalf("expected ErrUnknownMechanism, got %v", err)
	}
}

func TestRegistry_Close(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.For(iam.PasswordCredentials{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("For: %v", err)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// A closed registry rebuilds on next use.
	if _, err := r.For(iam.PasswordCredentials{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("For after Close: %v", err)
	}
}
