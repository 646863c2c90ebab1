// Package x509 derives the audit subject from X.509 client certificates.
// MongoDB identifies certificate-authenticated users by the certificate
// subject's distinguished name.
package x509

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrNoCertificate indicates the PEM material held no certificate block.
var ErrNoCertificate = errors.New("x509: no certificate in PEM data")

// SubjectFromPEM extracts the subject distinguished name, in RFC 2253 form,
// from the first certificate block in the PEM data. Key blocks and other
// non-certificate blocks are skipped, so a combined certificate/key file
// works unchanged.
func SubjectFromPEM(data []byte) (string, error) {
	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("parse certificate: %w", err)
		}
		return cert.Subject.String(), nil
	}
	return "", ErrNoCertificate
}
