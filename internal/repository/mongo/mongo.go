// Package mongo implements the repository interfaces on top of MongoDB.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	accountsCollection = "accounts"
	jobsCollection     = "conversion_jobs"
	settingsCollection = "system_settings"
	metadataCollection = "login_metadata"
	defaultDBName      = "filetool"
)

// Mongo holds the client and the collections used by the repositories.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	accounts *mongodriver.Collection
	jobs     *mongodriver.Collection
	settings *mongodriver.Collection
	metadata *mongodriver.Collection
}

// New connects, pings the primary and ensures indexes.
func New(ctx context.Context, uri string) (*Mongo, error) {
	const op = "repository/mongo/New"

	if uri == "" {
		return nil, fmt.Errorf("%s: empty connection uri", op)
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := cli.Database(databaseFromURI(uri))
	m := &Mongo{
		client:   cli,
		db:       db,
		accounts: db.Collection(accountsCollection),
		jobs:     db.Collection(jobsCollection),
		settings: db.Collection(settingsCollection),
		metadata: db.Collection(metadataCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes creates:
//   - a unique index on account email
//   - history lookups: user_id + processed_at(desc)
//   - admin job listing: processed_at(desc)
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.accounts.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure account indexes: %w", err)
	}

	_, err = m.jobs.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "processed_at", Value: -1}},
			Options: options.Index().SetName("user_processed_desc"),
		},
		{
			Keys:    bson.D{{Key: "processed_at", Value: -1}},
			Options: options.Index().SetName("processed_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo ensure job indexes: %w", err)
	}

	return nil
}

// databaseFromURI extracts the database name from the URI path, falling back to a default.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
