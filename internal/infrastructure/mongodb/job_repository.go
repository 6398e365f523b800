package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mes-platform/production-service/internal/domain"
)

type JobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	repo := &JobRepository{
		collection: db.Collection("jobs"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *JobRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "stage", Value: 1}}},
		{Keys: bson.D{{Key: "steps.isOpen", Value: 1}, {Key: "steps.status", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists the job guarded by its version. A first save inserts at
// version 1, surfacing domain.ErrDuplicateJobNumber when the unique index
// rejects the job number; later saves replace the document only when the
// stored version still matches the version the aggregate was loaded at, so
// a stale writer gets domain.ErrVersionConflict and persists nothing.
func (r *JobRepository) Save(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now()

	if job.ID.IsZero() {
		job.Version = 1
		result, err := r.collection.InsertOne(ctx, job)
		if err != nil {
			job.Version = 0
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrDuplicateJobNumber
			}
			return fmt.Errorf("failed to insert job: %w", err)
		}
		job.ID = result.InsertedID.(primitive.ObjectID)
		return nil
	}

	loadedVersion := job.Version
	job.Version = loadedVersion + 1

	filter := bson.M{"jobNumber": job.JobNumber, "version": loadedVersion}
	result, err := r.collection.ReplaceOne(ctx, filter, job)
	if err != nil {
		job.Version = loadedVersion
		return fmt.Errorf("failed to save job: %w", err)
	}
	if result.MatchedCount == 0 {
		job.Version = loadedVersion
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *JobRepository) FindByJobNumber(ctx context.Context, jobNumber string) (*domain.Job, error) {
	var job domain.Job
	err := r.collection.FindOne(ctx, bson.M{"jobNumber": jobNumber}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &job, err
}

func (r *JobRepository) FindByOrderNumber(ctx context.Context, orderNumber string) ([]*domain.Job, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"orderNumber": orderNumber})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var jobs []*domain.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}

func (r *JobRepository) FindByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.Job, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var jobs []*domain.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}

func (r *JobRepository) FindByStage(ctx context.Context, stage domain.JobStage, limit int) ([]*domain.Job, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"stage": stage}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var jobs []*domain.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}

func (r *JobRepository) FindWithOpenSteps(ctx context.Context, limit int) ([]*domain.Job, error) {
	filter := bson.M{
		"steps": bson.M{"$elemMatch": bson.M{
			"isOpen": true,
			"status": domain.StepStatusPending,
		}},
	}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "deliveryDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var jobs []*domain.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}

// SumMaterialDemand aggregates declared material requirements across all
// jobs, completed or not, keyed by material code.
func (r *JobRepository) SumMaterialDemand(ctx context.Context) (map[string]float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$materials"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$materials.materialCode",
			"total": bson.M{"$sum": "$materials.quantity"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	demand := make(map[string]float64)
	for cursor.Next(ctx) {
		var row struct {
			MaterialCode string  `bson:"_id"`
			Total        float64 `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		demand[row.MaterialCode] = row.Total
	}
	return demand, cursor.Err()
}
