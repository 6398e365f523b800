package application

import "time"

// JobDTO is the API representation of a production job
type JobDTO struct {
	JobNumber    string        `json:"jobNumber"`
	OrderNumber  string        `json:"orderNumber"`
	OrderLineID  string        `json:"orderLineId"`
	ItemCode     string        `json:"itemCode"`
	ItemName     string        `json:"itemName"`
	UOM          string        `json:"uom"`
	Quantity     int           `json:"quantity"`
	Priority     int           `json:"priority"`
	DeliveryDate *time.Time    `json:"deliveryDate,omitempty"`
	Status       string        `json:"status"`
	Stage        string        `json:"stage"`
	StageHistory []StageDTO    `json:"stageHistory"`
	Steps        []StepDTO     `json:"steps"`
	Materials    []MaterialDTO `json:"materials,omitempty"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// StepDTO is the API representation of a job step
type StepDTO struct {
	Seq          int                    `json:"seq"`
	StepID       string                 `json:"stepId"`
	Name         string                 `json:"name"`
	Type         string                 `json:"type"`
	Status       string                 `json:"status"`
	Assignees    []AssignmentDTO        `json:"assignees,omitempty"`
	IsOpen       bool                   `json:"isOpen"`
	IsOutward    bool                   `json:"isOutward"`
	ReceivedQty  int                    `json:"receivedQty"`
	ProcessedQty int                    `json:"processedQty"`
	RejectedQty  int                    `json:"rejectedQty"`
	StartedAt    *time.Time             `json:"startedAt,omitempty"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
	ReturnedAt   *time.Time             `json:"returnedAt,omitempty"`
	Remarks      string                 `json:"remarks,omitempty"`
	Readings     []InspectionReadingDTO `json:"readings,omitempty"`
}

// InspectionReadingDTO is one measured quality parameter on an inspection
type InspectionReadingDTO struct {
	Parameter string `json:"parameter" binding:"required"`
	Reading   string `json:"reading" binding:"required"`
	Passed    bool   `json:"passed"`
}

// AssignmentDTO is one employee assignment on a step
type AssignmentDTO struct {
	EmployeeID string    `json:"employeeId"`
	AssignedAt time.Time `json:"assignedAt"`
}

// StageDTO is one stage history entry
type StageDTO struct {
	Stage       string    `json:"stage"`
	At          time.Time `json:"at"`
	Description string    `json:"description"`
}

// MaterialDTO is one material requirement on a job
type MaterialDTO struct {
	MaterialCode string  `json:"materialCode"`
	Quantity     float64 `json:"quantity"`
}

// OpenStepDTO is one claimable step in the shop-floor feed
type OpenStepDTO struct {
	JobNumber string `json:"jobNumber"`
	ItemCode  string `json:"itemCode"`
	ItemName  string `json:"itemName"`
	StepID    string `json:"stepId"`
	StepName  string `json:"stepName"`
	StepType  string `json:"stepType"`
	Quantity  int    `json:"quantity"`
	Priority  int    `json:"priority"`
}

// WIPDTO is one work-in-process ledger row
type WIPDTO struct {
	JobNumber    string    `json:"jobNumber"`
	OrderNumber  string    `json:"orderNumber"`
	ItemCode     string    `json:"itemCode"`
	ItemName     string    `json:"itemName"`
	Quantity     int       `json:"quantity"`
	InitialQty   int       `json:"initialQty"`
	ProcessedQty int       `json:"processedQty"`
	RejectedQty  int       `json:"rejectedQty"`
	UOM          string    `json:"uom"`
	Stage        string    `json:"stage"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FinishedGoodDTO is one finished-goods ledger row
type FinishedGoodDTO struct {
	JobNumber   string    `json:"jobNumber"`
	OrderNumber string    `json:"orderNumber"`
	ItemCode    string    `json:"itemCode"`
	ItemName    string    `json:"itemName"`
	Quantity    int       `json:"quantity"`
	UOM         string    `json:"uom"`
	ProducedAt  time.Time `json:"producedAt"`
}

// RejectedGoodDTO is one rejection ledger row
type RejectedGoodDTO struct {
	JobNumber   string    `json:"jobNumber"`
	OrderNumber string    `json:"orderNumber"`
	ItemCode    string    `json:"itemCode"`
	StepName    string    `json:"stepName"`
	EmployeeID  string    `json:"employeeId,omitempty"`
	Quantity    int       `json:"quantity"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	RejectedAt  time.Time `json:"rejectedAt"`
}

// RawMaterialDTO is one derived raw-material availability row
type RawMaterialDTO struct {
	MaterialCode string    `json:"materialCode"`
	ReceivedQty  float64   `json:"receivedQty"`
	DemandQty    float64   `json:"demandQty"`
	NetQty       float64   `json:"netQty"`
	ComputedAt   time.Time `json:"computedAt"`
}

// SplitResultDTO carries both halves of a split
type SplitResultDTO struct {
	Original *JobDTO `json:"original"`
	NewJob   *JobDTO `json:"newJob"`
}
