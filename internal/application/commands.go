package application

import "time"

// CreateJobCommand creates a production job for an order line
type CreateJobCommand struct {
	JobNumber    string     `json:"jobNumber"`
	OrderNumber  string     `json:"orderNumber" binding:"required"`
	OrderLineID  string     `json:"orderLineId" binding:"required"`
	ItemCode     string     `json:"itemCode" binding:"required"`
	Quantity     int        `json:"quantity" binding:"required,gt=0"`
	Priority     int        `json:"priority"`
	DeliveryDate *time.Time `json:"deliveryDate"`
}

// AssignStepCommand assigns employees to a step or opens it for claiming
type AssignStepCommand struct {
	JobNumber   string   `json:"-"`
	StepID      string   `json:"-"`
	EmployeeIDs []string `json:"employeeIds"`
	Open        bool     `json:"open"`
}

// AcceptStepCommand claims an open step for the acting employee
type AcceptStepCommand struct {
	JobNumber  string `json:"-"`
	StepID     string `json:"-"`
	EmployeeID string `json:"-"`
}

// ExecuteStepCommand transitions a step on behalf of the acting employee
type ExecuteStepCommand struct {
	JobNumber    string `json:"-"`
	StepID       string `json:"-"`
	EmployeeID   string `json:"-"`
	TargetStatus string `json:"targetStatus" binding:"required,step_status"`
	ReceivedQty  *int   `json:"receivedQty"`
	ProcessedQty *int   `json:"processedQty"`
	RejectedQty  *int   `json:"rejectedQty"`
	Remarks      string `json:"remarks"`
}

// CompleteOutwardCommand closes an outward step with the returned quantities
type CompleteOutwardCommand struct {
	JobNumber   string     `json:"-"`
	StepID      string     `json:"-"`
	EmployeeID  string     `json:"-"`
	ReceivedQty int        `json:"receivedQty" binding:"required,gte=0"`
	RejectedQty int        `json:"rejectedQty" binding:"gte=0"`
	ReturnDate  *time.Time `json:"returnDate"`
	Remarks     string     `json:"remarks"`
}

// FinalInspectionCommand submits final inspection results for a job. An
// omitted processedQty falls back to the last manufacturing step's
// processed count.
type FinalInspectionCommand struct {
	JobNumber    string                 `json:"-"`
	EmployeeID   string                 `json:"-"`
	StepID       string                 `json:"stepId"`
	ProcessedQty *int                   `json:"processedQty" binding:"omitempty,gte=0"`
	RejectedQty  int                    `json:"rejectedQty" binding:"gte=0"`
	Remarks      string                 `json:"remarks"`
	Results      []InspectionReadingDTO `json:"results" binding:"omitempty,dive"`
}

// SplitJobCommand splits a job into two
type SplitJobCommand struct {
	JobNumber    string `json:"-"`
	EmployeeID   string `json:"-"`
	NewJobNumber string `json:"newJobNumber"`
	SplitQty     int    `json:"splitQty" binding:"required,gt=0"`
}

// HoldJobCommand places a job on hold
type HoldJobCommand struct {
	JobNumber  string `json:"-"`
	EmployeeID string `json:"-"`
	Reason     string `json:"reason"`
}

// ResumeJobCommand lifts a hold
type ResumeJobCommand struct {
	JobNumber  string `json:"-"`
	EmployeeID string `json:"-"`
}

// Queries

// GetJobQuery retrieves a job by number
type GetJobQuery struct {
	JobNumber string
}

// ListJobsQuery lists jobs with optional filters
type ListJobsQuery struct {
	OrderNumber string
	Status      string
	Stage       string
	Limit       int
}

// ListOpenStepsQuery lists claimable steps for the shop-floor feed
type ListOpenStepsQuery struct {
	Limit int
}
