package mongo

import (
	"context"
	"fmt"

	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type jobRepository struct {
	jobs     *mongodriver.Collection
	accounts *mongodriver.Collection
}

func NewJobRepository(m *Mongo) repository.JobRepository {
	return &jobRepository{jobs: m.jobs, accounts: m.accounts}
}

var _ repository.JobRepository = (*jobRepository)(nil)

// Create inserts the job and appends its id to the owner's file_history.
// Each write is a single-document operation.
func (r *jobRepository) Create(ctx context.Context, job *model.ConversionJob) error {
	const op = "repository/mongo/jobs/Create"

	_, err := r.jobs.InsertOne(ctx, job)
	if err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	res, err := r.accounts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: job.UserID}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "file_history", Value: job.ID}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: push history: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrAccountNotFound)
	}

	return nil
}

func (r *jobRepository) ByUser(ctx context.Context, userID string) ([]*model.ConversionJob, error) {
	const op = "repository/mongo/jobs/ByUser"

	cur, err := r.jobs.Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "processed_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	jobs := []*model.ConversionJob{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return jobs, nil
}

func (r *jobRepository) List(ctx context.Context) ([]*model.JobWithOwner, error) {
	const op = "repository/mongo/jobs/List"

	pipeline := mongodriver.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "processed_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: accountsCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "owner_email", Value: "$owner.email"},
			{Key: "owner_name", Value: "$owner.name"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "owner", Value: 0}}}},
	}

	cur, err := r.jobs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	jobs := []*model.JobWithOwner{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return jobs, nil
}
