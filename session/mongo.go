package session

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
)

const defaultDialTimeout = 10 * time.Second

// mongoDialer dials via the official driver, optionally retrying with
// exponential backoff.
type mongoDialer struct {
	cfg Config
}

func (d *mongoDialer) Dial(ctx context.Context) (Commander, error) {
	timeout := d.cfg.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	opts := options.Client().
		ApplyURI(d.cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cred := d.cfg.Credential; cred != nil {
		auth := options.Credential{
			AuthMechanism:           cred.Mechanism,
			AuthMechanismProperties: cred.Properties,
			AuthSource:              cred.Source,
			Username:                cred.Username,
			Password:                cred.Password,
			PasswordSet:             cred.Password != "",
		}
		if token := cred.OIDCAccessToken; token != "" {
			auth.OIDCMachineCallback = func(ctx context.Context, args *options.OIDCArgs) (*options.OIDCCredential, error) {
				return &options.OIDCCredential{AccessToken: token}, nil
			}
		}
		opts.SetAuth(auth)
	}

	dial := func() (Commander, error) {
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		// Connect does not touch the network; ping to surface dial errors here.
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &mongoCommander{client: client}, nil
	}

	if d.cfg.DialRetries == 0 {
		return dial()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.cfg.DialRetries), ctx)
	return backoff.RetryWithData(dial, policy)
}

// mongoCommander runs the audit's admin commands on one driver client.
type mongoCommander struct {
	client *mongo.Client
}

func (c *mongoCommander) ListDatabaseNames(ctx context.Context) ([]string, error) {
	return c.client.ListDatabaseNames(ctx, bson.D{})
}

type usersInfoResponse struct {
	Users []struct {
		User     string               `bson:"user"`
		Database string               `bson:"db"`
		Roles    []iam.RoleAssignment `bson:"roles"`
	} `bson:"users"`
}

func (c *mongoCommander) UserInfo(ctx context.Context, database, username string) (*UserInfo, error) {
	var resp usersInfoResponse
	if err := c.run(ctx, database, bson.D{{Key: "usersInfo", Value: username}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, nil
	}
	first := resp.Users[0]
	return &UserInfo{User: first.User, Database: first.Database, Roles: first.Roles}, nil
}

type rolesInfoResponse struct {
	Roles []iam.Role `bson:"roles"`
}

func (c *mongoCommander) RoleInfo(ctx context.Context, role string) ([]iam.Role, error) {
	var resp rolesInfoResponse
	cmd := bson.D{
		{Key: "rolesInfo", Value: role},
		{Key: "showPrivileges", Value: true},
		{Key: "showBuiltinRoles", Value: true},
	}
	if err := c.run(ctx, AdminDatabase, cmd, &resp); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}

type connectionStatusResponse struct {
	AuthInfo struct {
		AuthenticatedUsers []iam.Principal `bson:"authenticatedUsers"`
	} `bson:"authInfo"`
}

func (c *mongoCommander) ConnectionStatus(ctx context.Context) ([]iam.Principal, error) {
	var resp connectionStatusResponse
	if err := c.run(ctx, AdminDatabase, bson.D{{Key: "connectionStatus", Value: 1}}, &resp); err != nil {
		return nil, err
	}
	return resp.AuthInfo.AuthenticatedUsers, nil
}

func (c *mongoCommander) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *mongoCommander) run(ctx context.Context, database string, cmd bson.D, out any) error {
	res := c.client.Database(database).RunCommand(ctx, cmd)
	if err := res.Err(); err != nil {
		return err
	}
	return res.Decode(out)
}
