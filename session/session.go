// Package session owns the connection to a MongoDB cluster and exposes the
// small set of administrative commands the audit consumes: listDatabases,
// usersInfo, rolesInfo and connectionStatus.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
)

// AdminDatabase is where MongoDB records cluster-wide grants and custom role
// definitions.
const AdminDatabase = "admin"

// Config describes how to reach and authenticate to one cluster.
type Config struct {
	// URI is the MongoDB connection string. Transport security material
	// (certificates, keys) is carried as URI options and is opaque here.
	URI string

	// Credential, when set, overrides any credential embedded in the URI.
	Credential *Credential

	// DialTimeout bounds connection establishment and server selection.
	// Default: 10s.
	DialTimeout time.Duration

	// DialRetries is the number of additional dial attempts after the first,
	// with exponential backoff. Default: 0 (single attempt). Retries apply to
	// dialing only; admin commands are never retried at this layer.
	DialRetries uint64
}

// Credential mirrors the driver's credential fields for the mechanisms the
// audit supports.
type Credential struct {
	Mechanism  string
	Source     string
	Username   string
	Password   string
	Properties map[string]string
	// OIDCAccessToken, when set, is handed to the driver through its machine
	// identity callback.
	OIDCAccessToken string
}

// UserInfo is the user document returned by usersInfo on one database.
type UserInfo struct {
	User     string
	Database string
	Roles    []iam.RoleAssignment
}

// Commander is the admin-command surface of one open connection. The default
// implementation wraps a mongo-driver client; tests substitute fakes.
type Commander interface {
	ListDatabaseNames(ctx context.Context) ([]string, error)
	// UserInfo returns the subject's user document on the given database, or
	// nil when the subject has no account there.
	UserInfo(ctx context.Context, database, username string) (*UserInfo, error)
	// RoleInfo resolves a role on the admin database with full privilege
	// detail and built-in role expansion. Inheritance chains may come back as
	// multiple role entries.
	RoleInfo(ctx context.Context, role string) ([]iam.Role, error)
	// ConnectionStatus returns the authenticated principals of this session.
	ConnectionStatus(ctx context.Context) ([]iam.Principal, error)
	Disconnect(ctx context.Context) error
}

// Dialer establishes Commanders. The default dials via the mongo driver.
type Dialer interface {
	Dial(ctx context.Context) (Commander, error)
}

// Session is a scoped connection handle. It opens lazily on first need and
// must be closed at the end of each logical operation; it is not meant to be
// held across operations.
type Session struct {
	dialer Dialer
	log    hclog.Logger

	mu   sync.Mutex
	conn Commander
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log hclog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithDialer replaces the mongo-driver dialer.
func WithDialer(d Dialer) Option {
	return func(s *Session) {
		s.dialer = d
	}
}

// New creates a Session for the given cluster. No connection is made until
// Open or the first command.
func New(cfg Config, opts ...Option) *Session {
	s := &Session{log: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		s.dialer = &mongoDialer{cfg: cfg}
	}
	return s
}

// Open establishes the connection if it is not already open.
func (s *Session) Open(ctx context.Context) error {
	_, err := s.commander(ctx)
	return err
}

// Close releases the connection. Safe to call when already closed; a
// subsequent operation re-dials.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	if err := conn.Disconnect(ctx); err != nil {
		s.log.Warn("session close failed", "error", err)
		return err
	}
	return nil
}

func (s *Session) commander(ctx context.Context) (Commander, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

// ListDatabases enumerates the databases visible to the session.
func (s *Session) ListDatabases(ctx context.Context) ([]string, error) {
	conn, err := s.commander(ctx)
	if err != nil {
		return nil, err
	}
	return conn.ListDatabaseNames(ctx)
}

// UserInfo fetches the subject's user document on one database; nil when the
// subject has no account there.
func (s *Session) UserInfo(ctx context.Context, database, username string) (*UserInfo, error) {
	conn, err := s.commander(ctx)
	if err != nil {
		return nil, err
	}
	return conn.UserInfo(ctx, database, username)
}

// RoleInfo resolves a role with privileges and built-in expansion.
func (s *Session) RoleInfo(ctx context.Context, role string) ([]iam.Role, error) {
	conn, err := s.commander(ctx)
	if err != nil {
		return nil, err
	}
	return conn.RoleInfo(ctx, role)
}

// ConnectionStatus reports the authenticated principals of the session. May
// open the session as a side effect.
func (s *Session) ConnectionStatus(ctx context.Context) ([]iam.Principal, error) {
	conn, err := s.commander(ctx)
	if err != nil {
		return nil, err
	}
	return conn.ConnectionStatus(ctx)
}
