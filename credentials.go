package iam

// Credentials carries the material a mechanism variant needs to establish a
// session and derive the subject identity. The concrete type selects the
// authentication mechanism.
type Credentials interface {
	// Mechanism returns the MongoDB authentication mechanism name
	// (e.g. "SCRAM-SHA-256").
	Mechanism() string
}

// PasswordCredentials selects SCRAM authentication.
type PasswordCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (p PasswordCredentials) Mechanism() string {
	return "SCRAM-SHA-256"
}

// CertificateCredentials selects X.509 authentication. The subject identity
// is the certificate's distinguished name; the key material itself is opaque
// to the audit and is consumed only by the session transport.
type CertificateCredentials struct {
	CertificatePEM []byte `json:"certificate_pem" validate:"required"`
}

func (c CertificateCredentials) Mechanism() string {
	return "MONGODB-X509"
}

// AWSCredentials selects cloud-IAM authentication. The subject identity is
// the ARN the server reports for the authenticated session.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" validate:"required"`
	SecretAccessKey string `json:"secret_access_key" validate:"required"`
	SessionToken    string `json:"session_token,omitempty"`
}

func (a AWSCredentials) Mechanism() string {
	return "MONGODB-AWS"
}

// LDAPCredentials selects directory-based (PLAIN) authentication.
type LDAPCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (l LDAPCredentials) Mechanism() string {
	return "PLAIN"
}

// OIDCCredentials selects workload OIDC authentication. The subject identity
// is taken from the access token's subject claim.
type OIDCCredentials struct {
	AccessToken string `json:"access_token" validate:"required"`
}

func (o OIDCCredentials) Mechanism() string {
	return "MONGODB-OIDC"
}
