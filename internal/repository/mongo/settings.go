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

type settingsDocument struct {
	Key      string               `bson:"_id"`
	Settings model.SystemSettings `bson:",inline"`
}

type settingsRepository struct {
	coll *mongodriver.Collection
}

func NewSettingsRepository(m *Mongo) repository.SettingsRepository {
	return &settingsRepository{coll: m.settings}
}

func (r *settingsRepository) Get(ctx context.Context) (*model.SystemSettings, error) {
	const op = "repository/mongo/settings/Get"

	var doc settingsDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: model.SettingsKey}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc.Settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *model.SystemSettings) error {
	const op = "repository/mongo/settings/Upsert"

	doc := settingsDocument{Key: model.SettingsKey, Settings: *settings}
	_, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: model.SettingsKey}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
