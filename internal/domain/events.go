package domain

import "time"

// DomainEvent represents a domain event
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// JobCreatedEvent is published when a production job is created
type JobCreatedEvent struct {
	JobNumber   string    `json:"jobNumber"`
	OrderNumber string    `json:"orderNumber"`
	ItemCode    string    `json:"itemCode"`
	Quantity    int       `json:"quantity"`
	StepCount   int       `json:"stepCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *JobCreatedEvent) EventType() string     { return "mes.production.job-created" }
func (e *JobCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// StepAssignedEvent is published when employees are assigned to a step
type StepAssignedEvent struct {
	JobNumber   string    `json:"jobNumber"`
	StepID      string    `json:"stepId"`
	StepName    string    `json:"stepName"`
	EmployeeIDs []string  `json:"employeeIds"`
	Open        bool      `json:"open"`
	AssignedAt  time.Time `json:"assignedAt"`
}

func (e *StepAssignedEvent) EventType() string     { return "mes.production.step-assigned" }
func (e *StepAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// StepAcceptedEvent is published when an employee claims an open step
type StepAcceptedEvent struct {
	JobNumber  string    `json:"jobNumber"`
	StepID     string    `json:"stepId"`
	StepName   string    `json:"stepName"`
	EmployeeID string    `json:"employeeId"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

func (e *StepAcceptedEvent) EventType() string     { return "mes.production.step-accepted" }
func (e *StepAcceptedEvent) OccurredAt() time.Time { return e.AcceptedAt }

// StepStartedEvent is published when work begins on a step
type StepStartedEvent struct {
	JobNumber  string    `json:"jobNumber"`
	StepID     string    `json:"stepId"`
	StepName   string    `json:"stepName"`
	EmployeeID string    `json:"employeeId"`
	StartedAt  time.Time `json:"startedAt"`
}

func (e *StepStartedEvent) EventType() string     { return "mes.production.step-started" }
func (e *StepStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// StepCompletedEvent is published when a step is completed with quantities
type StepCompletedEvent struct {
	JobNumber    string    `json:"jobNumber"`
	StepID       string    `json:"stepId"`
	StepName     string    `json:"stepName"`
	EmployeeID   string    `json:"employeeId"`
	ReceivedQty  int       `json:"receivedQty"`
	ProcessedQty int       `json:"processedQty"`
	RejectedQty  int       `json:"rejectedQty"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (e *StepCompletedEvent) EventType() string     { return "mes.production.step-completed" }
func (e *StepCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// StageChangedEvent is published when the job's production stage moves
type StageChangedEvent struct {
	JobNumber   string    `json:"jobNumber"`
	OrderNumber string    `json:"orderNumber"`
	FromStage   JobStage  `json:"fromStage"`
	ToStage     JobStage  `json:"toStage"`
	ChangedAt   time.Time `json:"changedAt"`
}

func (e *StageChangedEvent) EventType() string     { return "mes.production.stage-changed" }
func (e *StageChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// JobFinalizedEvent is published when final inspection closes a job
type JobFinalizedEvent struct {
	JobNumber   string    `json:"jobNumber"`
	OrderNumber string    `json:"orderNumber"`
	ItemCode    string    `json:"itemCode"`
	AcceptedQty int       `json:"acceptedQty"`
	RejectedQty int       `json:"rejectedQty"`
	FinalizedAt time.Time `json:"finalizedAt"`
}

func (e *JobFinalizedEvent) EventType() string     { return "mes.production.job-finalized" }
func (e *JobFinalizedEvent) OccurredAt() time.Time { return e.FinalizedAt }

// JobSplitEvent is published when a job is split into two
type JobSplitEvent struct {
	JobNumber    string    `json:"jobNumber"`
	NewJobNumber string    `json:"newJobNumber"`
	KeptQty      int       `json:"keptQty"`
	SplitQty     int       `json:"splitQty"`
	SplitAt      time.Time `json:"splitAt"`
}

func (e *JobSplitEvent) EventType() string     { return "mes.production.job-split" }
func (e *JobSplitEvent) OccurredAt() time.Time { return e.SplitAt }

// StockSyncedEvent is published after a stock projection write succeeds
type StockSyncedEvent struct {
	JobNumber string    `json:"jobNumber"`
	Ledger    string    `json:"ledger"`
	Quantity  int       `json:"quantity"`
	SyncedAt  time.Time `json:"syncedAt"`
}

func (e *StockSyncedEvent) EventType() string     { return "mes.stock.synced" }
func (e *StockSyncedEvent) OccurredAt() time.Time { return e.SyncedAt }

// MaterialsRecomputedEvent is published after a raw-material recompute
type MaterialsRecomputedEvent struct {
	MaterialCount int       `json:"materialCount"`
	RecomputedAt  time.Time `json:"recomputedAt"`
}

func (e *MaterialsRecomputedEvent) EventType() string     { return "mes.materials.recomputed" }
func (e *MaterialsRecomputedEvent) OccurredAt() time.Time { return e.RecomputedAt }
