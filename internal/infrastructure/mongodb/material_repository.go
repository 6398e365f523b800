package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mes-platform/production-service/internal/domain"
)

type RawMaterialRepository struct {
	collection *mongo.Collection
}

func NewRawMaterialRepository(db *mongo.Database) *RawMaterialRepository {
	repo := &RawMaterialRepository{
		collection: db.Collection("stock_raw_materials"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "materialCode", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return repo
}

// ReplaceAll swaps the whole collection for the freshly computed rows
func (r *RawMaterialRepository) ReplaceAll(ctx context.Context, materials []*domain.RawMaterial) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(materials) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(materials))
	for _, m := range materials {
		docs = append(docs, m)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *RawMaterialRepository) List(ctx context.Context) ([]*domain.RawMaterial, error) {
	opts := options.Find().SetSort(bson.D{{Key: "materialCode", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var materials []*domain.RawMaterial
	err = cursor.All(ctx, &materials)
	return materials, err
}

type MaterialReceiptRepository struct {
	collection *mongo.Collection
}

func NewMaterialReceiptRepository(db *mongo.Database) *MaterialReceiptRepository {
	repo := &MaterialReceiptRepository{
		collection: db.Collection("material_receipts"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "receiptId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "materialCode", Value: 1}}},
	})
	return repo
}

func (r *MaterialReceiptRepository) SumByMaterial(ctx context.Context) (map[string]float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$materialCode",
			"total": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	totals := make(map[string]float64)
	for cursor.Next(ctx) {
		var row struct {
			MaterialCode string  `bson:"_id"`
			Total        float64 `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		totals[row.MaterialCode] = row.Total
	}
	return totals, cursor.Err()
}

func (r *MaterialReceiptRepository) ListByMaterial(ctx context.Context, materialCode string) ([]*domain.MaterialReceipt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"materialCode": materialCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var receipts []*domain.MaterialReceipt
	err = cursor.All(ctx, &receipts)
	return receipts, err
}
