package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// MaterialResyncInput is the input for the material resync workflow
type MaterialResyncInput struct {
	Reason string `json:"reason"`
}

// MaterialResyncResult is the outcome of one resync run
type MaterialResyncResult struct {
	JobsReconciled int  `json:"jobsReconciled"`
	MaterialCount  int  `json:"materialCount"`
	Success        bool `json:"success"`
}

// MaterialResyncWorkflow reconciles the derived stock views against job
// state. The per-request projections are best-effort, so this workflow is
// the catch-up path: it re-syncs WIP rows for every active job and then
// rebuilds the raw-material availability rows from scratch.
func MaterialResyncWorkflow(ctx workflow.Context, input MaterialResyncInput) (*MaterialResyncResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting material resync", "reason", input.Reason)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := &MaterialResyncResult{}

	var jobsReconciled int
	if err := workflow.ExecuteActivity(ctx, "ReconcileWIPStock").Get(ctx, &jobsReconciled); err != nil {
		logger.Error("WIP reconciliation failed", "error", err)
		return result, err
	}
	result.JobsReconciled = jobsReconciled

	var materialCount int
	if err := workflow.ExecuteActivity(ctx, "RecomputeRawMaterials").Get(ctx, &materialCount); err != nil {
		logger.Error("Raw material recompute failed", "error", err)
		return result, err
	}
	result.MaterialCount = materialCount
	result.Success = true

	logger.Info("Material resync completed",
		"jobsReconciled", jobsReconciled,
		"materialCount", materialCount,
	)
	return result, nil
}
