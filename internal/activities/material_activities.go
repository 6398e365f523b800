package activities

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/activity"

	"github.com/mes-platform/production-service/internal/application"
	"github.com/mes-platform/production-service/internal/domain"
)

// MaterialActivities contains the activities behind the material resync
// workflow.
type MaterialActivities struct {
	materials *application.MaterialService
	projector *application.StockProjector
	jobs      domain.JobRepository
	logger    *slog.Logger
}

// NewMaterialActivities creates a new MaterialActivities instance
func NewMaterialActivities(
	materials *application.MaterialService,
	projector *application.StockProjector,
	jobs domain.JobRepository,
	logger *slog.Logger,
) *MaterialActivities {
	return &MaterialActivities{
		materials: materials,
		projector: projector,
		jobs:      jobs,
		logger:    logger,
	}
}

// ReconcileWIPStock re-syncs the WIP ledger row for every job still in
// flight, repairing any projection writes that were dropped at request
// time. Returns the number of jobs reconciled.
func (a *MaterialActivities) ReconcileWIPStock(ctx context.Context) (int, error) {
	logger := activity.GetLogger(ctx)

	count := 0
	for _, status := range []domain.JobStatus{
		domain.JobStatusCreated,
		domain.JobStatusInProgress,
		domain.JobStatusOnHold,
	} {
		jobs, err := a.jobs.FindByStatus(ctx, status, 500)
		if err != nil {
			return count, fmt.Errorf("failed to load %s jobs: %w", status, err)
		}
		for _, job := range jobs {
			a.projector.SyncJobs(ctx, job)
			count++
		}
	}

	logger.Info("WIP stock reconciled", "jobCount", count)
	return count, nil
}

// RecomputeRawMaterials rebuilds the raw-material availability rows.
// Returns the number of material rows written.
func (a *MaterialActivities) RecomputeRawMaterials(ctx context.Context) (int, error) {
	logger := activity.GetLogger(ctx)

	materials, err := a.materials.Recompute(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute raw materials: %w", err)
	}

	logger.Info("Raw materials recomputed", "materialCount", len(materials))
	return len(materials), nil
}
