package domain

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStage is the coarse lifecycle of a customer order
type OrderStage string

const (
	OrderStagePending      OrderStage = "pending"
	OrderStageAccepted     OrderStage = "accepted"
	OrderStageInProduction OrderStage = "in_production"
	OrderStageCompleted    OrderStage = "completed"
)

// Order is the customer order a job executes against. The production
// service reads orders and nudges their stage; it never creates them.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OrderNumber string             `bson:"orderNumber"`
	Customer    string             `bson:"customer"`
	Stage       OrderStage         `bson:"stage"`
	Lines       []OrderLine        `bson:"lines"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// OrderLine is one item position on an order
type OrderLine struct {
	LineID   string  `bson:"lineId"`
	ItemCode string  `bson:"itemCode"`
	Quantity int     `bson:"quantity"`
	Batches  []Batch `bson:"batches,omitempty"`
}

// Batch records one production run delivered against a line. A batch is
// written when a job splits (Quantity only) and filled in with accepted and
// rejected counts when the job finalizes.
type Batch struct {
	JobNumber   string    `bson:"jobNumber"`
	Quantity    int       `bson:"quantity,omitempty"`
	AcceptedQty int       `bson:"acceptedQty"`
	RejectedQty int       `bson:"rejectedQty"`
	DeliveredAt time.Time `bson:"deliveredAt"`
}

// OrderLedger is the production service's view onto the order store
type OrderLedger interface {
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	// AdvanceStage moves the order forward; it must never move a stage
	// backwards.
	AdvanceStage(ctx context.Context, orderNumber string, stage OrderStage) error
	// UpsertBatch records a job's output on the originating line, keyed by
	// job number: a split writes the batch first, finalization updates it
	// in place.
	UpsertBatch(ctx context.Context, orderNumber, lineID string, batch Batch) error
}
