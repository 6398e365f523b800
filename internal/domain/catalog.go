package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a manufacturable part definition from the item master. Its step
// templates drive the steps embedded in every job for the item, and its
// material list declares per-unit raw-material consumption.
type Item struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty"`
	ItemCode      string                `bson:"itemCode"`
	Name          string                `bson:"name"`
	UOM           string                `bson:"uom"`
	StockQty      int                   `bson:"stockQty"`
	StepTemplates []StepTemplate        `bson:"stepTemplates"`
	Materials     []MaterialRequirement `bson:"materials,omitempty"`
	CreatedAt     time.Time             `bson:"createdAt"`
	UpdatedAt     time.Time             `bson:"updatedAt"`
}

// StepTemplate is one ordered step definition on an item
type StepTemplate struct {
	Name      string   `bson:"name"`
	Type      StepType `bson:"type"`
	IsOpen    bool     `bson:"isOpen"`
	IsOutward bool     `bson:"isOutward"`
}

// MaterialRequirement declares raw-material consumption for a job or item.
// On an item the quantity is per unit; on a job it is the total for the run.
type MaterialRequirement struct {
	MaterialCode string  `bson:"materialCode"`
	Quantity     float64 `bson:"quantity"`
}

// ItemCatalog reads item definitions and adjusts finished stock counts
type ItemCatalog interface {
	FindByCode(ctx context.Context, itemCode string) (*Item, error)
	IncrementStock(ctx context.Context, itemCode string, delta int) error
}
