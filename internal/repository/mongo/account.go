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

type accountRepository struct {
	coll *mongodriver.Collection
}

func NewAccountRepository(m *Mongo) repository.AccountRepository {
	return &accountRepository{coll: m.accounts}
}

var _ repository.AccountRepository = (*accountRepository)(nil)

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	const op = "repository/mongo/accounts/Create"

	_, err := r.coll.InsertOne(ctx, account)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *accountRepository) findOne(ctx context.Context, op string, filter bson.D) (*model.Account, error) {
	var account model.Account
	err := r.coll.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &account, nil
}

func (r *accountRepository) ByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, "repository/mongo/accounts/ByID", bson.D{{Key: "_id", Value: id}})
}

func (r *accountRepository) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, "repository/mongo/accounts/ByEmail", bson.D{{Key: "email", Value: email}})
}

func (r *accountRepository) List(ctx context.Context) ([]*model.Account, error) {
	const op = "repository/mongo/accounts/List"

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	accounts := []*model.Account{}
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return accounts, nil
}

func (r *accountRepository) UpsertFederated(ctx context.Context, account *model.Account) (*model.Account, error) {
	const op = "repository/mongo/accounts/UpsertFederated"

	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "_id", Value: account.ID},
		{Key: "auth_provider", Value: model.ProviderFederated},
		{Key: "role", Value: account.Role},
		{Key: "status", Value: account.Status},
		{Key: "name", Value: account.Name},
		{Key: "created_at", Value: account.CreatedAt},
	}}}
	if account.AvatarURL != nil {
		update = append(update, bson.E{Key: "$set", Value: bson.D{{Key: "avatar_url", Value: *account.AvatarURL}}})
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Account
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "email", Value: account.Email}}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stored, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id, name string, avatarURL *string) error {
	set := bson.D{{Key: "name", Value: name}}
	if avatarURL != nil {
		set = append(set, bson.E{Key: "avatar_url", Value: *avatarURL})
	}
	return r.updateOne(ctx, "repository/mongo/accounts/UpdateProfile", repository.ErrAccountNotFound,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
	)
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, "repository/mongo/accounts/UpdatePassword", repository.ErrAccountNotFound,
		bson.D{{Key: "_id", Value: id}, {Key: "auth_provider", Value: model.ProviderLocal}},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "password_hash", Value: passwordHash}}},
			{Key: "$unset", Value: bson.D{{Key: "refresh_token", Value: ""}}},
		},
	)
}

func (r *accountRepository) UpdateAccess(ctx context.Context, id, status, role string) (*model.Account, error) {
	const op = "repository/mongo/accounts/UpdateAccess"

	set := bson.D{}
	if status != "" {
		set = append(set, bson.E{Key: "status", Value: status})
	}
	if role != "" {
		set = append(set, bson.E{Key: "role", Value: role})
	}
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}

	update := bson.D{{Key: "$set", Value: set}}
	if status == model.StatusBanned {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "refresh_token", Value: ""}}})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stored model.Account
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stored, nil
}

func (r *accountRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx, "repository/mongo/accounts/SetRefreshToken", repository.ErrAccountNotFound,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "refresh_token", Value: token}}}},
	)
}

func (r *accountRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	return r.updateOne(ctx, "repository/mongo/accounts/RotateRefreshToken", repository.ErrRefreshTokenMismatch,
		bson.D{{Key: "_id", Value: id}, {Key: "refresh_token", Value: current}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "refresh_token", Value: next}}}},
	)
}

func (r *accountRepository) ClearRefreshToken(ctx context.Context, id, token string) error {
	const op = "repository/mongo/accounts/ClearRefreshToken"

	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "refresh_token", Value: token}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "refresh_token", Value: ""}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// updateOne applies update and returns notFound when the filter matched nothing.
func (r *accountRepository) updateOne(ctx context.Context, op string, notFound error, filter, update bson.D) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}
