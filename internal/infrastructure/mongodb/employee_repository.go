package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mes-platform/production-service/internal/domain"
)

// EmployeeRepository implements domain.EmployeeDirectory over the employees
// collection.
type EmployeeRepository struct {
	collection *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	repo := &EmployeeRepository{
		collection: db.Collection("employees"),
	}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return repo
}

// Resolve looks an employee up by internal ID first, then by badge code
func (r *EmployeeRepository) Resolve(ctx context.Context, idOrCode string) (*domain.Employee, error) {
	var employee domain.Employee

	err := r.collection.FindOne(ctx, bson.M{"employeeId": idOrCode}).Decode(&employee)
	if err == nil {
		return &employee, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	err = r.collection.FindOne(ctx, bson.M{"code": idOrCode}).Decode(&employee)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}
