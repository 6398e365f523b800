package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mes-platform/production-service/internal/domain"
)

// ItemRepository implements domain.ItemCatalog over the item master
// collection.
type ItemRepository struct {
	collection *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	repo := &ItemRepository{
		collection: db.Collection("items"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "itemCode", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return repo
}

func (r *ItemRepository) FindByCode(ctx context.Context, itemCode string) (*domain.Item, error) {
	var item domain.Item
	err := r.collection.FindOne(ctx, bson.M{"itemCode": itemCode}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &item, err
}

func (r *ItemRepository) IncrementStock(ctx context.Context, itemCode string, delta int) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"itemCode": itemCode},
		bson.M{"$inc": bson.M{"stockQty": delta}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
