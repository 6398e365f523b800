package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WIPRecord is the work-in-process ledger row for a job. One row per job,
// keyed by job number and replaced on every step sync; removed when the job
// finalizes. Quantity is the count still moving through the pipeline;
// ProcessedQty and RejectedQty accumulate across all completed steps.
type WIPRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	JobNumber    string             `bson:"jobNumber"`
	OrderNumber  string             `bson:"orderNumber"`
	ItemCode     string             `bson:"itemCode"`
	ItemName     string             `bson:"itemName"`
	Quantity     int                `bson:"quantity"`
	InitialQty   int                `bson:"initialQty"`
	ProcessedQty int                `bson:"processedQty"`
	RejectedQty  int                `bson:"rejectedQty"`
	UOM          string             `bson:"uom"`
	Stage        string             `bson:"stage"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// FinishedGood is the finished-goods ledger row for a finalized job. Keyed
// by job number so a retried finalization overwrites rather than duplicates.
type FinishedGood struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	JobNumber   string             `bson:"jobNumber"`
	OrderNumber string             `bson:"orderNumber"`
	ItemCode    string             `bson:"itemCode"`
	ItemName    string             `bson:"itemName"`
	Quantity    int                `bson:"quantity"`
	UOM         string             `bson:"uom"`
	ProducedAt  time.Time          `bson:"producedAt"`
}

// RejectionSource tells where a rejection originated
const (
	RejectionSourceProduction = "production"
	RejectionSourceManual     = "manual"
	RejectionSourceQC         = "qc"
)

// Disposition statuses for rejected goods. Rows start pending; disposition
// workflows move them on later.
const (
	DispositionPending   = "pending"
	DispositionHold      = "hold"
	DispositionScrapped  = "scrapped"
	DispositionRecovered = "recovered"
)

// RejectedGood records one rejection event. Inserted per event, never
// merged: two rejections on the same job are two rows.
type RejectedGood struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	JobNumber   string             `bson:"jobNumber"`
	OrderNumber string             `bson:"orderNumber"`
	ItemCode    string             `bson:"itemCode"`
	StepName    string             `bson:"stepName"`
	EmployeeID  string             `bson:"employeeId,omitempty"`
	Quantity    int                `bson:"quantity"`
	Source      string             `bson:"source"`
	Status      string             `bson:"status"`
	Reason      string             `bson:"reason,omitempty"`
	RejectedAt  time.Time          `bson:"rejectedAt"`
}

// RawMaterial is the derived net-availability row for one material code:
// total received minus the total declared by every job's requirements. The whole
// collection is recomputed on demand, never incrementally maintained.
type RawMaterial struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	MaterialCode string             `bson:"materialCode"`
	ReceivedQty  float64            `bson:"receivedQty"`
	DemandQty    float64            `bson:"demandQty"`
	NetQty       float64            `bson:"netQty"`
	ComputedAt   time.Time          `bson:"computedAt"`
}

// MaterialReceipt is one inbound raw-material delivery
type MaterialReceipt struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ReceiptID    string             `bson:"receiptId"`
	MaterialCode string             `bson:"materialCode"`
	Quantity     float64            `bson:"quantity"`
	Supplier     string             `bson:"supplier,omitempty"`
	ReceivedAt   time.Time          `bson:"receivedAt"`
}

// WIPRepository manages the work-in-process ledger
type WIPRepository interface {
	Upsert(ctx context.Context, record *WIPRecord) error
	FindByJobNumber(ctx context.Context, jobNumber string) (*WIPRecord, error)
	List(ctx context.Context, limit int) ([]*WIPRecord, error)
	DeleteByJobNumber(ctx context.Context, jobNumber string) error
}

// FinishedGoodRepository manages the finished-goods ledger
type FinishedGoodRepository interface {
	UpsertByJobNumber(ctx context.Context, good *FinishedGood) error
	FindByJobNumber(ctx context.Context, jobNumber string) (*FinishedGood, error)
	List(ctx context.Context, limit int) ([]*FinishedGood, error)
}

// RejectedGoodRepository manages the rejection ledger
type RejectedGoodRepository interface {
	Insert(ctx context.Context, good *RejectedGood) error
	ListByJobNumber(ctx context.Context, jobNumber string) ([]*RejectedGood, error)
	List(ctx context.Context, limit int) ([]*RejectedGood, error)
}

// RawMaterialRepository manages the derived raw-material availability rows
type RawMaterialRepository interface {
	ReplaceAll(ctx context.Context, materials []*RawMaterial) error
	List(ctx context.Context) ([]*RawMaterial, error)
}

// MaterialReceiptRepository reads inbound material deliveries
type MaterialReceiptRepository interface {
	SumByMaterial(ctx context.Context) (map[string]float64, error)
	ListByMaterial(ctx context.Context, materialCode string) ([]*MaterialReceipt, error)
}
