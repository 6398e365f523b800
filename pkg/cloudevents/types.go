package cloudevents

import (
	"time"
)

// EventType constants for production domain events
const (
	// Job lifecycle events
	JobCreated   = "mes.production.job-created"
	JobFinalized = "mes.production.job-finalized"
	JobSplit     = "mes.production.job-split"
	StageChanged = "mes.production.stage-changed"

	// Step events
	StepAssigned  = "mes.production.step-assigned"
	StepAccepted  = "mes.production.step-accepted"
	StepStarted   = "mes.production.step-started"
	StepCompleted = "mes.production.step-completed"

	// Stock events
	StockSynced = "mes.stock.synced"

	// Material events
	MaterialsRecomputed = "mes.materials.recomputed"
)

// Source constants for event sources
const (
	SourceProduction = "/mes/production-service"
	SourceWorker     = "/mes/production-worker"
)

// MESCloudEvent represents a CloudEvents v1.0 compliant event
type MESCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// MES-specific extensions
	CorrelationID string `json:"mescorrelationid,omitempty"`
	JobNumber     string `json:"mesjobnumber,omitempty"`
	OrderNumber   string `json:"mesordernumber,omitempty"`
}
