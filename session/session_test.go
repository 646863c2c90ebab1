package session

import (
	"context"
	"errors"
	"testing"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
)

type fakeCommander struct {
	databases   []string
	disconnects int
}

func (f *fakeCommander) ListDatabaseNames(ctx context.Context) ([]string, error) {
	return f.databases, nil
}

func (f *fakeCommander) UserInfo(ctx context.Context, database, username string) (*UserInfo, error) {
	return nil, nil
}

func (f *fakeCommander) RoleInfo(ctx context.Context, role string) ([]iam.Role, error) {
	return nil, nil
}

func (f *fakeCommander) ConnectionStatus(ctx context.Context) ([]iam.Principal, error) {
	return nil, nil
}

func (f *fakeCommander) Disconnect(ctx context.Context) error {
	f.disconnects++
	return nil
}

type fakeDialer struct {
	conn  *fakeCommander
	err   error
	dials int
}

func (f *fakeDialer) Dial(ctx context.Context) (Commander, error) {
	f.dials++
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

func TestSession_LazyOpen(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{conn: &fakeCommander{databases: []string{"admin"}}}
	s := New(Config{}, WithDialer(dialer))

	if dialer.dials != 0 {
		t.Fatalf("session dialed eagerly")
	}
	dbs, err := s.ListDatabases(ctx)
	if err != nil || len(dbs) != 1 {
		t.Fatalf("ListDatabases: %v %v", dbs, err)
	}
	if _, err := s.ConnectionStatus(ctx); err != nil {
		t.Fatalf("ConnectionStatus: %v", err)
	}
	if dialer.dials != 1 {
		t.Fatalf("expected one dial for consecutive commands, got %d", dialer.dials)
	}
}

func TestSession_CloseAndReopen(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{conn: &fakeCommander{}}
	s := New(Config{}, WithDialer(dialer))

	if err := s.Close(ctx); err != nil {
		t.Fatalf("closing a never-opened session: %v", err)
	}
	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if dialer.conn.disconnects != 1 {
		t.Fatalf("disconnects = %d", dialer.conn.disconnects)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("double close: %v", err)
	}
	if dialer.conn.disconnects != 1 {
		t.Fatalf("double close must not disconnect again")
	}
	if err := s.Open(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if dialer.dials != 2 {
		t.Fatalf("expected re-dial after close, got %d dials", dialer.dials)
	}
}

func TestSession_DialErrorPropagates(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("refused")
	s := New(Config{}, WithDialer(&fakeDialer{err: cause}))
	if _, err := s.ListDatabases(ctx); !errors.Is(err, cause) {
		t.Fatalf("expected dial error, got %v", err)
	}
}
