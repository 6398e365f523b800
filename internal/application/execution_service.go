package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mes-platform/production-service/internal/domain"
	"github.com/mes-platform/production-service/pkg/errors"
	"github.com/mes-platform/production-service/pkg/logging"
	"github.com/mes-platform/production-service/pkg/metrics"
	"github.com/mes-platform/production-service/pkg/resilience"
)

// ExecutionService orchestrates the production job lifecycle: creation,
// step assignment and execution, final inspection, split, hold and resume.
// All mutations go through the version-guarded repository; concurrent writers
// are resolved by reloading and reapplying.
type ExecutionService struct {
	jobs       domain.JobRepository
	items      domain.ItemCatalog
	employees  domain.EmployeeDirectory
	orders     domain.OrderLedger
	authorizer domain.Authorizer
	publisher  domain.EventPublisher
	projector  *StockProjector
	breakers   *resilience.CircuitBreakerRegistry
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewExecutionService creates a new ExecutionService
func NewExecutionService(
	jobs domain.JobRepository,
	items domain.ItemCatalog,
	employees domain.EmployeeDirectory,
	orders domain.OrderLedger,
	authorizer domain.Authorizer,
	publisher domain.EventPublisher,
	projector *StockProjector,
	breakers *resilience.CircuitBreakerRegistry,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ExecutionService {
	return &ExecutionService{
		jobs:       jobs,
		items:      items,
		employees:  employees,
		orders:     orders,
		authorizer: authorizer,
		publisher:  publisher,
		projector:  projector,
		breakers:   breakers,
		metrics:    m,
		logger:     logger,
	}
}

// CreateJob creates a production job for an order line from the item's
// step templates.
func (s *ExecutionService) CreateJob(ctx context.Context, cmd CreateJobCommand) (*JobDTO, error) {
	item, err := s.items.FindByCode(ctx, cmd.ItemCode)
	if err != nil {
		return nil, errors.ErrInternal("failed to load item").Wrap(err)
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("item", cmd.ItemCode)
	}

	jobNumber := cmd.JobNumber
	if jobNumber == "" {
		jobNumber = generateJobNumber()
	}

	job, err := domain.NewJob(jobNumber, cmd.OrderNumber, cmd.OrderLineID, item, cmd.Quantity, cmd.Priority, cmd.DeliveryDate)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		if stderrors.Is(err, domain.ErrDuplicateJobNumber) {
			return nil, errors.ErrConflict(fmt.Sprintf("job %s already exists", jobNumber))
		}
		return nil, errors.ErrInternal("failed to save job").Wrap(err)
	}

	s.publishEvents(ctx, job)
	s.projector.SyncJobs(ctx, job)
	s.metrics.RecordJobCreated("api")

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "JobCreated",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "create",
		RelatedIDs: map[string]string{
			"orderNumber": job.OrderNumber,
			"itemCode":    job.ItemCode,
		},
	})

	return ToJobDTO(job), nil
}

// GetJob retrieves a job by number
func (s *ExecutionService) GetJob(ctx context.Context, query GetJobQuery) (*JobDTO, error) {
	job, err := s.loadJob(ctx, query.JobNumber)
	if err != nil {
		return nil, err
	}
	return ToJobDTO(job), nil
}

// ListJobs lists jobs filtered by order number, status or stage. Filters
// are applied in that precedence; an unfiltered query lists by status
// in_progress.
func (s *ExecutionService) ListJobs(ctx context.Context, query ListJobsQuery) ([]JobDTO, error) {
	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var (
		jobs []*domain.Job
		err  error
	)
	switch {
	case query.OrderNumber != "":
		jobs, err = s.jobs.FindByOrderNumber(ctx, query.OrderNumber)
	case query.Status != "":
		jobs, err = s.jobs.FindByStatus(ctx, domain.JobStatus(query.Status), limit)
	case query.Stage != "":
		jobs, err = s.jobs.FindByStage(ctx, domain.JobStage(query.Stage), limit)
	default:
		jobs, err = s.jobs.FindByStatus(ctx, domain.JobStatusInProgress, limit)
	}
	if err != nil {
		return nil, errors.ErrInternal("failed to list jobs").Wrap(err)
	}

	return ToJobDTOs(jobs), nil
}

// ListOpenSteps builds the shop-floor feed of claimable steps. Jobs on
// hold are excluded even when they carry open pending steps.
func (s *ExecutionService) ListOpenSteps(ctx context.Context, query ListOpenStepsQuery) ([]*OpenStepDTO, error) {
	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	jobs, err := s.jobs.FindWithOpenSteps(ctx, limit)
	if err != nil {
		return nil, errors.ErrInternal("failed to list open steps").Wrap(err)
	}

	feed := make([]*OpenStepDTO, 0)
	for _, job := range jobs {
		if job.Status == domain.JobStatusOnHold {
			continue
		}
		for _, step := range job.OpenSteps() {
			feed = append(feed, &OpenStepDTO{
				JobNumber: job.JobNumber,
				ItemCode:  job.ItemCode,
				ItemName:  job.ItemName,
				StepID:    step.StepID,
				StepName:  step.Name,
				StepType:  string(step.Type),
				Quantity:  step.ReceivedQty,
				Priority:  job.Priority,
			})
		}
	}

	return feed, nil
}

// AssignStep assigns employees to a step, or opens it for claiming when no
// employees are given and open is set.
func (s *ExecutionService) AssignStep(ctx context.Context, cmd AssignStepCommand) (*JobDTO, error) {
	for i, ref := range cmd.EmployeeIDs {
		employee, appErr := s.resolveEmployee(ctx, ref)
		if appErr != nil {
			return nil, appErr
		}
		cmd.EmployeeIDs[i] = employee.EmployeeID
	}

	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		return job.AssignStep(cmd.StepID, cmd.EmployeeIDs, cmd.Open)
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "StepAssigned",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "assign_step",
		RelatedIDs: map[string]string{"stepId": cmd.StepID},
	})

	return ToJobDTO(job), nil
}

// AcceptOpenStep claims an open step for the acting employee. Exactly one
// of several concurrent claimants wins: the winner's save closes the step,
// and every loser's reapply fails against the refreshed state.
func (s *ExecutionService) AcceptOpenStep(ctx context.Context, cmd AcceptStepCommand) (*JobDTO, error) {
	employee, appErr := s.resolveEmployee(ctx, cmd.EmployeeID)
	if appErr != nil {
		return nil, appErr
	}

	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		return job.AcceptOpenStep(cmd.StepID, employee.EmployeeID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "StepAccepted",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "accept_step",
		RelatedIDs: map[string]string{
			"stepId":     cmd.StepID,
			"employeeId": employee.EmployeeID,
		},
	})

	return ToJobDTO(job), nil
}

// ExecuteStep transitions a step to the target status on behalf of the
// acting employee. Completion requires all three quantities; supervisors
// and roles holding the execute_any_step capability bypass the assignment
// check.
func (s *ExecutionService) ExecuteStep(ctx context.Context, cmd ExecuteStepCommand) (*JobDTO, error) {
	employee, appErr := s.resolveEmployee(ctx, cmd.EmployeeID)
	if appErr != nil {
		return nil, appErr
	}
	bypass := s.authorizer.Can(employee, domain.CapabilityExecuteAnyStep)

	target := domain.StepStatus(cmd.TargetStatus)
	var qty *domain.StepQuantities
	if cmd.ReceivedQty != nil && cmd.ProcessedQty != nil && cmd.RejectedQty != nil {
		qty = &domain.StepQuantities{
			Received:  *cmd.ReceivedQty,
			Processed: *cmd.ProcessedQty,
			Rejected:  *cmd.RejectedQty,
		}
	}

	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		return job.ExecuteStep(cmd.StepID, employee.EmployeeID, target, qty, cmd.Remarks, bypass)
	})
	if err != nil {
		return nil, err
	}

	step, findErr := job.FindStep(cmd.StepID)
	if findErr == nil && step.Status == domain.StepStatusCompleted {
		s.metrics.RecordStepCompleted(string(step.Type))
		if step.RejectedQty > 0 {
			s.metrics.RecordGoodsRejected(string(step.Type), step.RejectedQty)
		}
		s.projector.SyncAfterStep(ctx, job, step, employee.EmployeeID)
	}
	s.nudgeOrderInProduction(ctx, job)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "StepExecuted",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "execute_step",
		RelatedIDs: map[string]string{
			"stepId":       cmd.StepID,
			"employeeId":   employee.EmployeeID,
			"targetStatus": cmd.TargetStatus,
		},
	})

	return ToJobDTO(job), nil
}

// CompleteOutwardStep closes an outward (subcontracted) step with the
// quantities returned by the external party.
func (s *ExecutionService) CompleteOutwardStep(ctx context.Context, cmd CompleteOutwardCommand) (*JobDTO, error) {
	employee, appErr := s.resolveEmployee(ctx, cmd.EmployeeID)
	if appErr != nil {
		return nil, appErr
	}
	bypass := s.authorizer.Can(employee, domain.CapabilityExecuteAnyStep)

	returnDate := time.Now()
	if cmd.ReturnDate != nil {
		returnDate = *cmd.ReturnDate
	}

	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		return job.CompleteOutward(cmd.StepID, employee.EmployeeID, cmd.ReceivedQty, cmd.RejectedQty, cmd.Remarks, returnDate, bypass)
	})
	if err != nil {
		return nil, err
	}

	if step, findErr := job.FindStep(cmd.StepID); findErr == nil {
		s.metrics.RecordStepCompleted(string(step.Type))
		if step.RejectedQty > 0 {
			s.metrics.RecordGoodsRejected(string(step.Type), step.RejectedQty)
		}
		s.projector.SyncAfterStep(ctx, job, step, employee.EmployeeID)
	}
	s.nudgeOrderInProduction(ctx, job)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "OutwardStepCompleted",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "complete_outward",
		RelatedIDs: map[string]string{"stepId": cmd.StepID},
	})

	return ToJobDTO(job), nil
}

// SubmitFinalInspection records final inspection results and closes the
// job. When processedQty is omitted the accepted count falls back to the
// last manufacturing step's processed quantity. A job that is already
// finalized rejects the resubmission, so a retried request settles the
// ledgers at most once.
func (s *ExecutionService) SubmitFinalInspection(ctx context.Context, cmd FinalInspectionCommand) (*JobDTO, error) {
	employee, appErr := s.resolveEmployee(ctx, cmd.EmployeeID)
	if appErr != nil {
		return nil, appErr
	}

	readings := ToInspectionReadings(cmd.Results)

	var accepted int
	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		accepted = job.LastProcessedQty()
		if cmd.ProcessedQty != nil {
			accepted = *cmd.ProcessedQty
		}
		return job.FinalizeInspection(cmd.StepID, accepted, cmd.RejectedQty, cmd.Remarks, readings)
	})
	if err != nil {
		return nil, err
	}

	s.projector.SyncFinalization(ctx, job, accepted, cmd.RejectedQty, "Final Quality Check", employee.EmployeeID)
	s.settleOrder(ctx, job, accepted, cmd.RejectedQty)

	result := "accepted"
	if accepted == 0 {
		result = "rejected"
	}
	s.metrics.RecordJobFinalized(result)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "JobFinalized",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "final_inspection",
		RelatedIDs: map[string]string{
			"orderNumber": job.OrderNumber,
			"acceptedQty": fmt.Sprintf("%d", accepted),
			"rejectedQty": fmt.Sprintf("%d", cmd.RejectedQty),
		},
	})

	return ToJobDTO(job), nil
}

// SplitJob splits a job into two, keeping splitQty on the original and
// moving the remainder to a new job with reset steps. Requires the
// manage_jobs capability.
func (s *ExecutionService) SplitJob(ctx context.Context, cmd SplitJobCommand) (*SplitResultDTO, error) {
	if appErr := s.requireCapability(ctx, cmd.EmployeeID, domain.CapabilityManageJobs); appErr != nil {
		return nil, appErr
	}

	newJobNumber := cmd.NewJobNumber
	if newJobNumber == "" {
		newJobNumber = generateJobNumber()
	}

	var newJob *domain.Job
	original, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		split, splitErr := job.Split(newJobNumber, cmd.SplitQty)
		if splitErr != nil {
			return splitErr
		}
		newJob = split
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.jobs.Save(ctx, newJob); err != nil {
		return nil, errors.ErrInternal("failed to save split job").Wrap(err)
	}
	s.publishEvents(ctx, newJob)
	s.metrics.RecordJobCreated("split")

	s.projector.SyncJobs(ctx, original, newJob)
	s.recordSplitBatches(ctx, original, newJob)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "JobSplit",
		EntityType: "job",
		EntityID:   original.JobNumber,
		Action:     "split",
		RelatedIDs: map[string]string{
			"newJobNumber": newJob.JobNumber,
			"splitQty":     fmt.Sprintf("%d", cmd.SplitQty),
		},
	})

	return &SplitResultDTO{
		Original: ToJobDTO(original),
		NewJob:   ToJobDTO(newJob),
	}, nil
}

// HoldJob places a job on hold. Requires the manage_jobs capability.
func (s *ExecutionService) HoldJob(ctx context.Context, cmd HoldJobCommand) (*JobDTO, error) {
	if appErr := s.requireCapability(ctx, cmd.EmployeeID, domain.CapabilityManageJobs); appErr != nil {
		return nil, appErr
	}

	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		return job.Hold(cmd.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.projector.SyncJobs(ctx, job)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "JobHeld",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "hold",
		RelatedIDs: map[string]string{"reason": cmd.Reason},
	})

	return ToJobDTO(job), nil
}

// ResumeJob lifts a hold and returns the job to the stage it held at.
// Requires the manage_jobs capability.
func (s *ExecutionService) ResumeJob(ctx context.Context, cmd ResumeJobCommand) (*JobDTO, error) {
	if appErr := s.requireCapability(ctx, cmd.EmployeeID, domain.CapabilityManageJobs); appErr != nil {
		return nil, appErr
	}

	job, err := s.mutateJob(ctx, cmd.JobNumber, func(job *domain.Job) error {
		return job.Resume()
	})
	if err != nil {
		return nil, err
	}

	s.projector.SyncJobs(ctx, job)

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "JobResumed",
		EntityType: "job",
		EntityID:   job.JobNumber,
		Action:     "resume",
	})

	return ToJobDTO(job), nil
}

// loadJob fetches a job or returns a not-found application error
func (s *ExecutionService) loadJob(ctx context.Context, jobNumber string) (*domain.Job, error) {
	job, err := s.jobs.FindByJobNumber(ctx, jobNumber)
	if err != nil {
		return nil, errors.ErrInternal("failed to load job").Wrap(err)
	}
	if job == nil {
		return nil, errors.ErrNotFoundWithID("job", jobNumber)
	}
	return job, nil
}

// mutateJob runs the load-mutate-save cycle under the conflict retry loop.
// Each attempt reloads the aggregate, reapplies the mutation against fresh
// state, and saves; a reapply that no longer holds (a claimed step, a
// finalized job) surfaces its domain error instead of retrying.
func (s *ExecutionService) mutateJob(ctx context.Context, jobNumber string, mutate func(*domain.Job) error) (*domain.Job, error) {
	job, err := WithConflictRetry(ctx, ConflictRetryAttempts, func(ctx context.Context) (*domain.Job, error) {
		job, err := s.loadJob(ctx, jobNumber)
		if err != nil {
			return nil, err
		}

		if err := mutate(job); err != nil {
			return nil, s.mapDomainError(err)
		}

		if err := s.jobs.Save(ctx, job); err != nil {
			if stderrors.Is(err, domain.ErrVersionConflict) {
				s.metrics.RecordVersionConflict("save_job")
				return nil, err
			}
			return nil, errors.ErrInternal("failed to save job").Wrap(err)
		}
		return job, nil
	})
	if err != nil {
		if stderrors.Is(err, domain.ErrVersionConflict) {
			return nil, errors.ErrConflict("job was modified concurrently, please retry")
		}
		return nil, err
	}

	s.publishEvents(ctx, job)
	return job, nil
}

func (s *ExecutionService) mapDomainError(err error) error {
	var blocked *domain.StepBlockedError
	var mismatch *domain.QuantityMismatchError

	switch {
	case stderrors.Is(err, domain.ErrStepNotFound):
		return errors.ErrNotFound("step").Wrap(err)
	case stderrors.Is(err, domain.ErrStepNotOpen):
		return errors.ErrConflict("step is no longer open for claiming")
	case stderrors.Is(err, domain.ErrAlreadyAssigned):
		return errors.ErrConflict("employee is already assigned to this step")
	case stderrors.Is(err, domain.ErrNotAssigned):
		return errors.ErrForbidden("employee is not assigned to this step")
	case stderrors.Is(err, domain.ErrStepCompleted):
		return errors.ErrConflict("step is already completed")
	case stderrors.Is(err, domain.ErrJobFinalized):
		return errors.ErrConflict("job is already finalized")
	case stderrors.As(err, &blocked), stderrors.As(err, &mismatch):
		return errors.ErrValidation(err.Error())
	default:
		return errors.ErrValidation(err.Error())
	}
}

func (s *ExecutionService) resolveEmployee(ctx context.Context, ref string) (*domain.Employee, *errors.AppError) {
	if ref == "" {
		return nil, errors.ErrUnauthorized("employee identity is required")
	}

	employee, err := s.employees.Resolve(ctx, ref)
	if err != nil {
		if stderrors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, errors.ErrNotFoundWithID("employee", ref)
		}
		return nil, errors.ErrInternal("failed to resolve employee").Wrap(err)
	}
	if !employee.Active {
		return nil, errors.ErrForbidden("employee is not active")
	}
	return employee, nil
}

func (s *ExecutionService) requireCapability(ctx context.Context, employeeRef string, capability domain.Capability) *errors.AppError {
	employee, appErr := s.resolveEmployee(ctx, employeeRef)
	if appErr != nil {
		return appErr
	}
	if !s.authorizer.Can(employee, capability) {
		return errors.ErrForbidden(fmt.Sprintf("role %s may not perform this action", employee.Role))
	}
	return nil
}

// publishEvents drains the aggregate's domain events onto the bus.
// Publishing is best-effort; a broker outage must not roll back a saved job.
func (s *ExecutionService) publishEvents(ctx context.Context, job *domain.Job) {
	events := job.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	job.ClearDomainEvents()

	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to publish domain events",
			"jobNumber", job.JobNumber,
			"eventCount", len(events),
		)
	}
}

// recordSplitBatches rewrites the order line's batch list after a split:
// the original job's entry is corrected to its reduced quantity and the new
// job gets its own entry. A failed write leaves the order line out of step
// with its jobs, so it is logged at error level and counted rather than
// dropped silently.
func (s *ExecutionService) recordSplitBatches(ctx context.Context, original, newJob *domain.Job) {
	breaker := s.breakers.Get(resilience.BreakerOrderLedger)

	for _, job := range []*domain.Job{original, newJob} {
		_, err := breaker.Execute(ctx, func() (interface{}, error) {
			return nil, s.orders.UpsertBatch(ctx, job.OrderNumber, job.OrderLineID, domain.Batch{
				JobNumber: job.JobNumber,
				Quantity:  job.Quantity,
			})
		})
		if err != nil {
			s.metrics.RecordStockSyncFailure("order_batches")
			s.logger.WithContext(ctx).WithError(err).Error("Order line batches out of step with split jobs",
				"orderNumber", job.OrderNumber,
				"jobNumber", job.JobNumber,
			)
		}
	}
}

// nudgeOrderInProduction moves the originating order to in_production the
// first time work lands on one of its jobs. Best-effort through the order
// ledger breaker.
func (s *ExecutionService) nudgeOrderInProduction(ctx context.Context, job *domain.Job) {
	if !job.HasProgress() {
		return
	}

	breaker := s.breakers.Get(resilience.BreakerOrderLedger)
	_, err := breaker.Execute(ctx, func() (interface{}, error) {
		return nil, s.orders.AdvanceStage(ctx, job.OrderNumber, domain.OrderStageInProduction)
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to advance order stage",
			"orderNumber", job.OrderNumber,
			"stage", string(domain.OrderStageInProduction),
		)
	}
}

// settleOrder records the finalized batch on the originating order line
// and, when every sibling job of the order has finalized, advances the
// order to completed. Best-effort through the order ledger breaker.
func (s *ExecutionService) settleOrder(ctx context.Context, job *domain.Job, acceptedQty, rejectedQty int) {
	breaker := s.breakers.Get(resilience.BreakerOrderLedger)

	_, err := breaker.Execute(ctx, func() (interface{}, error) {
		return nil, s.orders.UpsertBatch(ctx, job.OrderNumber, job.OrderLineID, domain.Batch{
			JobNumber:   job.JobNumber,
			Quantity:    job.Quantity,
			AcceptedQty: acceptedQty,
			RejectedQty: rejectedQty,
			DeliveredAt: time.Now(),
		})
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to record batch on order",
			"orderNumber", job.OrderNumber,
			"jobNumber", job.JobNumber,
		)
		return
	}

	siblings, err := s.jobs.FindByOrderNumber(ctx, job.OrderNumber)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to check sibling jobs",
			"orderNumber", job.OrderNumber,
		)
		return
	}
	for _, sibling := range siblings {
		if !sibling.IsFinalized() {
			return
		}
	}

	_, err = breaker.Execute(ctx, func() (interface{}, error) {
		return nil, s.orders.AdvanceStage(ctx, job.OrderNumber, domain.OrderStageCompleted)
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to complete order",
			"orderNumber", job.OrderNumber,
		)
	}
}

func generateJobNumber() string {
	return "JOB-" + strings.ToUpper(uuid.NewString()[:8])
}
