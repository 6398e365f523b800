package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mes-platform/production-service/internal/domain"
)

var orderStageRank = map[domain.OrderStage]int{
	domain.OrderStagePending:      0,
	domain.OrderStageAccepted:     1,
	domain.OrderStageInProduction: 2,
	domain.OrderStageCompleted:    3,
}

// OrderRepository implements domain.OrderLedger over the orders collection
type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	repo := &OrderRepository{
		collection: db.Collection("orders"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return repo
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrOrderNotFound
	}
	return &order, err
}

// AdvanceStage moves the order to the given stage. The filter only matches
// orders currently at a lower stage, so a repeated or late call never moves
// an order backwards; matching nothing is not an error.
func (r *OrderRepository) AdvanceStage(ctx context.Context, orderNumber string, stage domain.OrderStage) error {
	rank, ok := orderStageRank[stage]
	if !ok {
		return domain.ErrOrderNotFound
	}

	var lower []domain.OrderStage
	for s, sr := range orderStageRank {
		if sr < rank {
			lower = append(lower, s)
		}
	}

	filter := bson.M{
		"orderNumber": orderNumber,
		"stage":       bson.M{"$in": lower},
	}
	update := bson.M{"$set": bson.M{
		"stage":     stage,
		"updatedAt": time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// UpsertBatch records a job's output on the originating line, keyed by job
// number: an existing entry for the job is replaced in place, otherwise the
// batch is appended. Concurrent writers for the same job may both append,
// which is tolerable for a projection the next finalization rewrites.
func (r *OrderRepository) UpsertBatch(ctx context.Context, orderNumber, lineID string, batch domain.Batch) error {
	existsFilter := bson.M{
		"orderNumber": orderNumber,
		"lines": bson.M{"$elemMatch": bson.M{
			"lineId":            lineID,
			"batches.jobNumber": batch.JobNumber,
		}},
	}
	count, err := r.collection.CountDocuments(ctx, existsFilter)
	if err != nil {
		return err
	}

	var (
		filter bson.M
		update bson.M
		opts   *options.UpdateOptions
	)
	if count > 0 {
		filter = bson.M{"orderNumber": orderNumber}
		update = bson.M{"$set": bson.M{
			"lines.$[line].batches.$[batch]": batch,
			"updatedAt":                      time.Now(),
		}}
		opts = options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"line.lineId": lineID},
				bson.M{"batch.jobNumber": batch.JobNumber},
			},
		})
	} else {
		filter = bson.M{"orderNumber": orderNumber}
		update = bson.M{
			"$push": bson.M{"lines.$[line].batches": batch},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
		opts = options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"line.lineId": lineID}},
		})
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
