package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mes-platform/production-service/internal/domain"
)

type WIPRepository struct {
	collection *mongo.Collection
}

func NewWIPRepository(db *mongo.Database) *WIPRepository {
	repo := &WIPRepository{
		collection: db.Collection("stock_wip"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "itemCode", Value: 1}}},
	})
	return repo
}

func (r *WIPRepository) Upsert(ctx context.Context, record *domain.WIPRecord) error {
	filter := bson.M{"jobNumber": record.JobNumber}
	update := bson.M{"$set": bson.M{
		"orderNumber":  record.OrderNumber,
		"itemCode":     record.ItemCode,
		"itemName":     record.ItemName,
		"quantity":     record.Quantity,
		"initialQty":   record.InitialQty,
		"processedQty": record.ProcessedQty,
		"rejectedQty":  record.RejectedQty,
		"uom":          record.UOM,
		"stage":        record.Stage,
		"updatedAt":    record.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *WIPRepository) FindByJobNumber(ctx context.Context, jobNumber string) (*domain.WIPRecord, error) {
	var record domain.WIPRecord
	err := r.collection.FindOne(ctx, bson.M{"jobNumber": jobNumber}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &record, err
}

func (r *WIPRepository) List(ctx context.Context, limit int) ([]*domain.WIPRecord, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var records []*domain.WIPRecord
	err = cursor.All(ctx, &records)
	return records, err
}

func (r *WIPRepository) DeleteByJobNumber(ctx context.Context, jobNumber string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"jobNumber": jobNumber})
	return err
}

type FinishedGoodRepository struct {
	collection *mongo.Collection
}

func NewFinishedGoodRepository(db *mongo.Database) *FinishedGoodRepository {
	repo := &FinishedGoodRepository{
		collection: db.Collection("stock_finished_goods"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "itemCode", Value: 1}}},
	})
	return repo
}

// UpsertByJobNumber writes the finished-goods row keyed by job number so a
// repeated finalization overwrites instead of duplicating.
func (r *FinishedGoodRepository) UpsertByJobNumber(ctx context.Context, good *domain.FinishedGood) error {
	filter := bson.M{"jobNumber": good.JobNumber}
	update := bson.M{"$set": bson.M{
		"orderNumber": good.OrderNumber,
		"itemCode":    good.ItemCode,
		"itemName":    good.ItemName,
		"quantity":    good.Quantity,
		"uom":         good.UOM,
		"producedAt":  good.ProducedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *FinishedGoodRepository) FindByJobNumber(ctx context.Context, jobNumber string) (*domain.FinishedGood, error) {
	var good domain.FinishedGood
	err := r.collection.FindOne(ctx, bson.M{"jobNumber": jobNumber}).Decode(&good)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &good, err
}

func (r *FinishedGoodRepository) List(ctx context.Context, limit int) ([]*domain.FinishedGood, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "producedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var goods []*domain.FinishedGood
	err = cursor.All(ctx, &goods)
	return goods, err
}

type RejectedGoodRepository struct {
	collection *mongo.Collection
}

func NewRejectedGoodRepository(db *mongo.Database) *RejectedGoodRepository {
	repo := &RejectedGoodRepository{
		collection: db.Collection("stock_rejected_goods"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobNumber", Value: 1}}},
		{Keys: bson.D{{Key: "itemCode", Value: 1}}},
	})
	return repo
}

func (r *RejectedGoodRepository) Insert(ctx context.Context, good *domain.RejectedGood) error {
	_, err := r.collection.InsertOne(ctx, good)
	return err
}

func (r *RejectedGoodRepository) ListByJobNumber(ctx context.Context, jobNumber string) ([]*domain.RejectedGood, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"jobNumber": jobNumber})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var goods []*domain.RejectedGood
	err = cursor.All(ctx, &goods)
	return goods, err
}

func (r *RejectedGoodRepository) List(ctx context.Context, limit int) ([]*domain.RejectedGood, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "rejectedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var goods []*domain.RejectedGood
	err = cursor.All(ctx, &goods)
	return goods, err
}
