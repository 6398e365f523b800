package domain

import (
	"context"
	"errors"
)

var ErrJobNotFound = errors.New("job not found")

// JobRepository defines persistence for the Job aggregate. Save is guarded
// by the aggregate version: a write against a stale version returns
// ErrVersionConflict and persists nothing.
type JobRepository interface {
	Save(ctx context.Context, job *Job) error
	FindByJobNumber(ctx context.Context, jobNumber string) (*Job, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) ([]*Job, error)
	FindByStatus(ctx context.Context, status JobStatus, limit int) ([]*Job, error)
	FindByStage(ctx context.Context, stage JobStage, limit int) ([]*Job, error)
	FindWithOpenSteps(ctx context.Context, limit int) ([]*Job, error)
	// SumMaterialDemand aggregates declared material requirements across
	// all jobs, completed or not, keyed by material code.
	SumMaterialDemand(ctx context.Context) (map[string]float64, error)
}

// EventPublisher publishes domain events to the message bus
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
