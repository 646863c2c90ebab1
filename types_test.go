package iam

import (
	"reflect"
	"testing"
)

func TestPermissionSet_Ops(t *testing.T) {
	s := NewPermissionSet("find", "find", "insert")
	if len(s) != 2 {
		t.Fatalf("expected dedup to 2 entries, got %d", len(s))
	}
	if !s.Contains("find") || s.Contains("Find") {
		t.Fatalf("contains should be case-sensitive")
	}
	u := s.Union(NewPermissionSet("insert", "remove"))
	if got := u.Sorted(); !reflect.DeepEqual(got, []string{"find", "insert", "remove"}) {
		t.Fatalf("union: %v", got)
	}
	if len(s) != 2 {
		t.Fatalf("union must not mutate receiver, got %v", s.Sorted())
	}
}

func TestRole_ActionsFlattening(t *testing.T) {
	// Two privileges scoped to different resources granting the same action
	// collapse to one entry; resource scope is discarded deliberately.
	role := Role{
		Name:     "reporting",
		Database: "admin",
		Privileges: []Privilege{
			{Resource: Resource{Database: "sales", Collection: "orders"}, Actions: []string{"find", "collStats"}},
			{Resource: Resource{Database: "hr"}, Actions: []string{"find"}},
			{Resource: Resource{Cluster: true}, Actions: []string{"serverStatus"}},
		},
	}
	got := role.Actions().Sorted()
	want := []string{"collStats", "find", "serverStatus"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("actions: %v, want %v", got, want)
	}
}

func TestDiffResult_Satisfied(t *testing.T) {
	d := DiffResult{Missing: NewPermissionSet("find"), Present: PermissionSet{}, Extra: PermissionSet{}}
	if d.Satisfied() {
		t.Fatalf("missing permissions should not be satisfied")
	}
	d.Missing = PermissionSet{}
	if !d.Satisfied() {
		t.Fatalf("no missing permissions should be satisfied")
	}
}

func TestCredentials_Mechanisms(t *testing.T) {
	cases := []struct {
		creds Credentials
		want  string
	}{
		{PasswordCredentials{Username: "u", Password: "p"}, "SCRAM-SHA-256"},
		{CertificateCredentials{CertificatePEM: []byte("pem")}, "MONGODB-X509"},
		{AWSCredentials{AccessKeyID: "k", SecretAccessKey: "s"}, "MONGODB-AWS"},
		{LDAPCredentials{Username: "u", Password: "p"}, "PLAIN"},
		{OIDCCredentials{AccessToken: "t"}, "MONGODB-OIDC"},
	}
	for _, tc := range cases {
		if got := tc.creds.Mechanism(); got != tc.want {
			t.Fatalf("%T mechanism = %q, want %q", tc.creds, got, tc.want)
		}
	}
}
