package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kelseyhightower/envconfig"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
	"github.com/mongodb-industry-solutions/mdb-iam-util-go/mechanism"
)

// config is populated from MDBIAM_* environment variables, then overridden by
// flags.
type config struct {
	URI             string        `envconfig:"URI"`
	Mechanism       string        `envconfig:"MECHANISM" default:"SCRAM-SHA-256"`
	Username        string        `envconfig:"USERNAME"`
	Password        string        `envconfig:"PASSWORD"`
	CertificateFile string        `envconfig:"CERTIFICATE_FILE"`
	AccessToken     string        `envconfig:"ACCESS_TOKEN"`
	AWSAccessKeyID  string        `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey    string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSSessionToken string        `envconfig:"AWS_SESSION_TOKEN"`
	DialTimeout     time.Duration `envconfig:"DIAL_TIMEOUT" default:"10s"`
	DialRetries     uint64        `envconfig:"DIAL_RETRIES" default:"0"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := envconfig.Process("mdbiam", &cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	if flagURI != "" {
		cfg.URI = flagURI
	}
	if flagMechanism != "" {
		cfg.Mechanism = flagMechanism
	}
	if flagUsername != "" {
		cfg.Username = flagUsername
	}
	if cfg.URI == "" {
		return cfg, fmt.Errorf("no connection string: set --uri or MDBIAM_URI")
	}
	return cfg, nil
}

// credentials builds the credential value matching the configured mechanism.
func (c config) credentials() (iam.Credentials, error) {
	mech, err := mechanism.Parse(c.Mechanism)
	if err != nil {
		return nil, err
	}
	switch mech {
	case mechanism.ScramSHA256:
		return iam.PasswordCredentials{Username: c.Username, Password: c.Password}, nil
	case mechanism.X509:
		if c.CertificateFile == "" {
			return nil, fmt.Errorf("mechanism %s requires MDBIAM_CERTIFICATE_FILE", mech)
		}
		pemData, err := os.ReadFile(c.CertificateFile)
		if err != nil {
			return nil, fmt.Errorf("read certificate: %w", err)
		}
		return iam.CertificateCredentials{CertificatePEM: pemData}, nil
	case mechanism.AWS:
		return iam.AWSCredentials{
			AccessKeyID:     c.AWSAccessKeyID,
			SecretAccessKey: c.AWSSecretKey,
			SessionToken:    c.AWSSessionToken,
		}, nil
	case mechanism.LDAP:
		return iam.LDAPCredentials{Username: c.Username, Password: c.Password}, nil
	case mechanism.OIDC:
		return iam.OIDCCredentials{AccessToken: c.AccessToken}, nil
	default:
		return nil, fmt.Errorf("%w: %s", mechanism.ErrUnknownMechanism, mech)
	}
}

// newVerifier wires config, logger and registry into a ready verifier.
func newVerifier() (iam.Verifier, config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	creds, err := cfg.credentials()
	if err != nil {
		return nil, cfg, err
	}

	level := hclog.Warn
	if debug {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "mdbiam",
		Level:  level,
		Output: os.Stderr,
	})

	registry := mechanism.NewRegistry(mechanism.Config{
		URI:         cfg.URI,
		DialTimeout: cfg.DialTimeout,
		DialRetries: cfg.DialRetries,
		Logger:      log,
	})
	v, err := registry.For(creds)
	if err != nil {
		return nil, cfg, err
	}
	return v, cfg, nil
}
