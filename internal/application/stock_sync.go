package application

import (
	"context"
	"time"

	"github.com/mes-platform/production-service/internal/domain"
	"github.com/mes-platform/production-service/pkg/logging"
	"github.com/mes-platform/production-service/pkg/metrics"
	"github.com/mes-platform/production-service/pkg/resilience"
)

// StockProjector maintains the stock ledgers as projections of job state.
// Every write here is best-effort: a failed projection is logged and
// counted but never fails the request that triggered it, and the next sync
// for the same job overwrites whatever was missed.
type StockProjector struct {
	wip      domain.WIPRepository
	finished domain.FinishedGoodRepository
	rejected domain.RejectedGoodRepository
	items    domain.ItemCatalog
	breakers *resilience.CircuitBreakerRegistry
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewStockProjector creates a new StockProjector
func NewStockProjector(
	wip domain.WIPRepository,
	finished domain.FinishedGoodRepository,
	rejected domain.RejectedGoodRepository,
	items domain.ItemCatalog,
	breakers *resilience.CircuitBreakerRegistry,
	m *metrics.Metrics,
	logger *logging.Logger,
) *StockProjector {
	return &StockProjector{
		wip:      wip,
		finished: finished,
		rejected: rejected,
		items:    items,
		breakers: breakers,
		metrics:  m,
		logger:   logger,
	}
}

// SyncAfterStep refreshes the WIP row for the job and records any rejection
// from the step that just completed.
func (p *StockProjector) SyncAfterStep(ctx context.Context, job *domain.Job, step *domain.Step, employeeID string) {
	p.upsertWIP(ctx, job)

	if step != nil && step.RejectedQty > 0 {
		p.insertRejection(ctx, job, step.Name, step.RejectedQty, step.Remarks, employeeID, domain.RejectionSourceProduction)
	}
}

// SyncFinalization settles all ledgers for a finalized job: the finished
// goods row is keyed by job number so a retried finalization overwrites
// rather than duplicates, item stock is incremented once per successful
// finalization, and the WIP row is removed.
func (p *StockProjector) SyncFinalization(ctx context.Context, job *domain.Job, acceptedQty, rejectedQty int, stepName, employeeID string) {
	if acceptedQty > 0 {
		good := &domain.FinishedGood{
			JobNumber:   job.JobNumber,
			OrderNumber: job.OrderNumber,
			ItemCode:    job.ItemCode,
			ItemName:    job.ItemName,
			Quantity:    acceptedQty,
			UOM:         job.UOM,
			ProducedAt:  time.Now(),
		}
		if err := p.finished.UpsertByJobNumber(ctx, good); err != nil {
			p.reportFailure(ctx, "finished_goods", job.JobNumber, err)
		}

		p.incrementItemStock(ctx, job.ItemCode, acceptedQty)
	}

	if rejectedQty > 0 {
		p.insertRejection(ctx, job, stepName, rejectedQty, "", employeeID, domain.RejectionSourceQC)
	}

	if err := p.wip.DeleteByJobNumber(ctx, job.JobNumber); err != nil {
		p.reportFailure(ctx, "wip", job.JobNumber, err)
	}
}

// SyncJobs refreshes the WIP rows for a set of jobs, used after a split
func (p *StockProjector) SyncJobs(ctx context.Context, jobs ...*domain.Job) {
	for _, job := range jobs {
		p.upsertWIP(ctx, job)
	}
}

func (p *StockProjector) upsertWIP(ctx context.Context, job *domain.Job) {
	record := &domain.WIPRecord{
		JobNumber:    job.JobNumber,
		OrderNumber:  job.OrderNumber,
		ItemCode:     job.ItemCode,
		ItemName:     job.ItemName,
		Quantity:     job.CurrentQuantity(),
		InitialQty:   job.Quantity,
		ProcessedQty: job.TotalProcessed(),
		RejectedQty:  job.TotalRejected(),
		UOM:          job.UOM,
		Stage:        job.ActiveStepName(),
		UpdatedAt:    time.Now(),
	}

	if err := p.wip.Upsert(ctx, record); err != nil {
		p.reportFailure(ctx, "wip", job.JobNumber, err)
	}
}

func (p *StockProjector) insertRejection(ctx context.Context, job *domain.Job, stepName string, quantity int, reason, employeeID, source string) {
	good := &domain.RejectedGood{
		JobNumber:   job.JobNumber,
		OrderNumber: job.OrderNumber,
		ItemCode:    job.ItemCode,
		StepName:    stepName,
		EmployeeID:  employeeID,
		Quantity:    quantity,
		Source:      source,
		Status:      domain.DispositionPending,
		Reason:      reason,
		RejectedAt:  time.Now(),
	}

	if err := p.rejected.Insert(ctx, good); err != nil {
		p.reportFailure(ctx, "rejected_goods", job.JobNumber, err)
	}
}

// incrementItemStock adjusts the item master's finished stock through a
// circuit breaker: the item store is a separate concern and a degraded one
// must not take step completion down with it.
func (p *StockProjector) incrementItemStock(ctx context.Context, itemCode string, delta int) {
	breaker := p.breakers.Get(resilience.BreakerItemStock)
	_, err := breaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.items.IncrementStock(ctx, itemCode, delta)
	})
	if err != nil {
		p.reportFailure(ctx, "item_stock", itemCode, err)
	}
}

func (p *StockProjector) reportFailure(ctx context.Context, ledger, entityID string, err error) {
	p.metrics.RecordStockSyncFailure(ledger)
	p.logger.WithContext(ctx).WithError(err).Error("Stock ledger sync failed",
		"ledger", ledger,
		"entityId", entityID,
	)
}
