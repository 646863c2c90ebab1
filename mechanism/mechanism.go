// Package mechanism maps authentication credentials to configured audit
// verifiers. The mechanism set is closed: dispatch is a static match over the
// credential type, not a runtime lookup, and each mechanism's verifier is
// constructed once per registry.
package mechanism

import (
	"errors"
	"fmt"
	"strings"
)

// Mechanism is a MongoDB authentication mechanism supported by the audit.
type Mechanism string

const (
	// ScramSHA256 authenticates with username and password.
	ScramSHA256 Mechanism = "SCRAM-SHA-256"
	// X509 authenticates with a client certificate; the subject identity is
	// the certificate's distinguished name.
	X509 Mechanism = "MONGODB-X509"
	// AWS authenticates with cloud IAM credentials; the subject identity is
	// the ARN the server reports.
	AWS Mechanism = "MONGODB-AWS"
	// LDAP authenticates against a directory via SASL PLAIN.
	LDAP Mechanism = "PLAIN"
	// OIDC authenticates with a workload identity access token.
	OIDC Mechanism = "MONGODB-OIDC"
)

// ErrUnknownMechanism indicates a mechanism name outside the supported set.
var ErrUnknownMechanism = errors.New("mechanism: unknown authentication mechanism")

// Parse maps a mechanism name to the closed set above, case-insensitively.
func Parse(name string) (Mechanism, error) {
	for _, m := range []Mechanism{ScramSHA256, X509, AWS, LDAP, OIDC} {
		if strings.EqualFold(name, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMechanism, name)
}

func (m Mechanism) String() string {
	return string(m)
}
