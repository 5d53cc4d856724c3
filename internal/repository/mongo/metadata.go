package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type metadataRepository struct {
	coll *mongodriver.Collection
}

func NewMetadataRepository(m *Mongo) repository.MetadataRepository {
	return &metadataRepository{coll: m.metadata}
}

func (r *metadataRepository) Upsert(ctx context.Context, metadata *model.LoginMetadata) error {
	const op = "repository/mongo/metadata/Upsert"

	_, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: metadata.UserID}},
		metadata,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *metadataRepository) ByUser(ctx context.Context, userID string) (*model.LoginMetadata, error) {
	const op = "repository/mongo/metadata/ByUser"

	var metadata model.LoginMetadata
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&metadata)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrMetadataNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &metadata, nil
}

func (r *metadataRepository) All(ctx context.Context) ([]*model.LoginMetadata, error) {
	const op = "repository/mongo/metadata/All"

	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	result := []*model.LoginMetadata{}
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
