package application

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mes-platform/production-service/internal/domain"
	apperrors "github.com/mes-platform/production-service/pkg/errors"
	"github.com/mes-platform/production-service/pkg/logging"
	"github.com/mes-platform/production-service/pkg/metrics"
	"github.com/mes-platform/production-service/pkg/resilience"
)

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Save(ctx context.Context, job *domain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByJobNumber(ctx context.Context, jobNumber string) (*domain.Job, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) FindByOrderNumber(ctx context.Context, orderNumber string) ([]*domain.Job, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Job), args.Error(1)
}

func (m *MockJobRepository) FindByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.Job, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Job), args.Error(1)
}

func (m *MockJobRepository) FindByStage(ctx context.Context, stage domain.JobStage, limit int) ([]*domain.Job, error) {
	args := m.Called(ctx, stage, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Job), args.Error(1)
}

func (m *MockJobRepository) FindWithOpenSteps(ctx context.Context, limit int) ([]*domain.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Job), args.Error(1)
}

func (m *MockJobRepository) SumMaterialDemand(ctx context.Context) (map[string]float64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

type MockItemCatalog struct {
	mock.Mock
}

func (m *MockItemCatalog) FindByCode(ctx context.Context, itemCode string) (*domain.Item, error) {
	args := m.Called(ctx, itemCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemCatalog) IncrementStock(ctx context.Context, itemCode string, delta int) error {
	args := m.Called(ctx, itemCode, delta)
	return args.Error(0)
}

type MockEmployeeDirectory struct {
	mock.Mock
}

func (m *MockEmployeeDirectory) Resolve(ctx context.Context, idOrCode string) (*domain.Employee, error) {
	args := m.Called(ctx, idOrCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

type MockOrderLedger struct {
	mock.Mock
}

func (m *MockOrderLedger) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderLedger) AdvanceStage(ctx context.Context, orderNumber string, stage domain.OrderStage) error {
	args := m.Called(ctx, orderNumber, stage)
	return args.Error(0)
}

func (m *MockOrderLedger) UpsertBatch(ctx context.Context, orderNumber, lineID string, batch domain.Batch) error {
	args := m.Called(ctx, orderNumber, lineID, batch)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockWIPRepository struct {
	mock.Mock
}

func (m *MockWIPRepository) Upsert(ctx context.Context, record *domain.WIPRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockWIPRepository) FindByJobNumber(ctx context.Context, jobNumber string) (*domain.WIPRecord, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WIPRecord), args.Error(1)
}

func (m *MockWIPRepository) List(ctx context.Context, limit int) ([]*domain.WIPRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WIPRecord), args.Error(1)
}

func (m *MockWIPRepository) DeleteByJobNumber(ctx context.Context, jobNumber string) error {
	args := m.Called(ctx, jobNumber)
	return args.Error(0)
}

type MockFinishedGoodRepository struct {
	mock.Mock
}

func (m *MockFinishedGoodRepository) UpsertByJobNumber(ctx context.Context, good *domain.FinishedGood) error {
	args := m.Called(ctx, good)
	return args.Error(0)
}

func (m *MockFinishedGoodRepository) FindByJobNumber(ctx context.Context, jobNumber string) (*domain.FinishedGood, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinishedGood), args.Error(1)
}

func (m *MockFinishedGoodRepository) List(ctx context.Context, limit int) ([]*domain.FinishedGood, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FinishedGood), args.Error(1)
}

type MockRejectedGoodRepository struct {
	mock.Mock
}

func (m *MockRejectedGoodRepository) Insert(ctx context.Context, good *domain.RejectedGood) error {
	args := m.Called(ctx, good)
	return args.Error(0)
}

func (m *MockRejectedGoodRepository) ListByJobNumber(ctx context.Context, jobNumber string) ([]*domain.RejectedGood, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RejectedGood), args.Error(1)
}

func (m *MockRejectedGoodRepository) List(ctx context.Context, limit int) ([]*domain.RejectedGood, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RejectedGood), args.Error(1)
}

// Test fixtures

type serviceMocks struct {
	jobs      *MockJobRepository
	items     *MockItemCatalog
	employees *MockEmployeeDirectory
	orders    *MockOrderLedger
	publisher *MockEventPublisher
	wip       *MockWIPRepository
	finished  *MockFinishedGoodRepository
	rejected  *MockRejectedGoodRepository
}

func newTestService(t *testing.T) (*ExecutionService, *serviceMocks) {
	t.Helper()

	logConfig := logging.DefaultConfig("test")
	logConfig.Output = io.Discard
	logger := logging.New(logConfig)

	m := metrics.New(metrics.DefaultConfig("test"))
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger)

	mocks := &serviceMocks{
		jobs:      new(MockJobRepository),
		items:     new(MockItemCatalog),
		employees: new(MockEmployeeDirectory),
		orders:    new(MockOrderLedger),
		publisher: new(MockEventPublisher),
		wip:       new(MockWIPRepository),
		finished:  new(MockFinishedGoodRepository),
		rejected:  new(MockRejectedGoodRepository),
	}

	projector := NewStockProjector(mocks.wip, mocks.finished, mocks.rejected, mocks.items, breakers, m, logger)
	service := NewExecutionService(
		mocks.jobs, mocks.items, mocks.employees, mocks.orders,
		domain.NewRoleAuthorizer(), mocks.publisher, projector, breakers, m, logger,
	)
	return service, mocks
}

func testCatalogItem() *domain.Item {
	return &domain.Item{
		ItemCode: "ITM-GEAR-01",
		Name:     "Precision Gear",
		UOM:      "pcs",
		StepTemplates: []domain.StepTemplate{
			{Name: "Cutting", Type: domain.StepTypeExecution},
			{Name: "Assembly", Type: domain.StepTypeExecution, IsOpen: true},
			{Name: "Quality Inspection", Type: domain.StepTypeTesting},
		},
	}
}

func newPersistedJob(t *testing.T, jobNumber string, quantity int) *domain.Job {
	t.Helper()
	job, err := domain.NewJob(jobNumber, "ORD-5001", "L1", testCatalogItem(), quantity, 1, nil)
	require.NoError(t, err)
	job.ClearDomainEvents()
	job.Version = 1
	return job
}

func operator() *domain.Employee {
	return &domain.Employee{EmployeeID: "EMP-001", Code: "B-001", Role: "machine_operator", Active: true}
}

func supervisor() *domain.Employee {
	return &domain.Employee{EmployeeID: "EMP-SUP", Code: "B-900", Role: domain.RoleSupervisor, Active: true}
}

func inspector() *domain.Employee {
	return &domain.Employee{EmployeeID: "EMP-QA", Code: "B-450", Role: "quality_inspector", Active: true}
}

func intPtr(v int) *int { return &v }

func appErrorCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

// Tests

func TestCreateJob(t *testing.T) {
	t.Run("creates a job from the item's step templates", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.items.On("FindByCode", mock.Anything, "ITM-GEAR-01").Return(testCatalogItem(), nil)
		mocks.jobs.On("Save", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		dto, err := service.CreateJob(context.Background(), CreateJobCommand{
			OrderNumber: "ORD-5001",
			OrderLineID: "L1",
			ItemCode:    "ITM-GEAR-01",
			Quantity:    100,
		})

		require.NoError(t, err)
		require.NotNil(t, dto)
		assert.NotEmpty(t, dto.JobNumber)
		assert.Equal(t, "created", dto.Status)
		assert.Equal(t, "new", dto.Stage)
		assert.Len(t, dto.Steps, 3)
		assert.Equal(t, 100, dto.Steps[0].ReceivedQty)

		mocks.jobs.AssertExpectations(t)
		mocks.wip.AssertCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown item", func(t *testing.T) {
		service, mocks := newTestService(t)
		mocks.items.On("FindByCode", mock.Anything, "ITM-MISSING").Return(nil, nil)

		_, err := service.CreateJob(context.Background(), CreateJobCommand{
			OrderNumber: "ORD-5001",
			OrderLineID: "L1",
			ItemCode:    "ITM-MISSING",
			Quantity:    10,
		})

		assert.Equal(t, apperrors.CodeNotFound, appErrorCode(t, err))
	})

	t.Run("duplicate job number", func(t *testing.T) {
		service, mocks := newTestService(t)
		mocks.items.On("FindByCode", mock.Anything, "ITM-GEAR-01").Return(testCatalogItem(), nil)
		mocks.jobs.On("Save", mock.Anything, mock.Anything).Return(domain.ErrDuplicateJobNumber)

		_, err := service.CreateJob(context.Background(), CreateJobCommand{
			JobNumber:   "JOB-2024-001",
			OrderNumber: "ORD-5001",
			OrderLineID: "L1",
			ItemCode:    "ITM-GEAR-01",
			Quantity:    10,
		})

		assert.Equal(t, apperrors.CodeConflict, appErrorCode(t, err))
	})
}

func TestAcceptOpenStep(t *testing.T) {
	t.Run("first claimant wins", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 50)

		mocks.employees.On("Resolve", mock.Anything, "EMP-001").Return(operator(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, job).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

		dto, err := service.AcceptOpenStep(context.Background(), AcceptStepCommand{
			JobNumber:  "JOB-2024-001",
			StepID:     job.Steps[1].StepID,
			EmployeeID: "EMP-001",
		})

		require.NoError(t, err)
		assert.False(t, dto.Steps[1].IsOpen)
		require.Len(t, dto.Steps[1].Assignees, 1)
		assert.Equal(t, "EMP-001", dto.Steps[1].Assignees[0].EmployeeID)
	})

	t.Run("second claimant gets a conflict", func(t *testing.T) {
		service, mocks := newTestService(t)
		claimed := newPersistedJob(t, "JOB-2024-001", 50)
		require.NoError(t, claimed.AcceptOpenStep(claimed.Steps[1].StepID, "EMP-001"))
		claimed.ClearDomainEvents()

		mocks.employees.On("Resolve", mock.Anything, "EMP-002").
			Return(&domain.Employee{EmployeeID: "EMP-002", Role: "machine_operator", Active: true}, nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(claimed, nil)

		_, err := service.AcceptOpenStep(context.Background(), AcceptStepCommand{
			JobNumber:  "JOB-2024-001",
			StepID:     claimed.Steps[1].StepID,
			EmployeeID: "EMP-002",
		})

		assert.Equal(t, apperrors.CodeConflict, appErrorCode(t, err))
		mocks.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("version conflict triggers reload and reapply", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.employees.On("Resolve", mock.Anything, "EMP-001").Return(operator(), nil)
		// A fresh aggregate per attempt: the retry loop must reload
		for i := 0; i < 3; i++ {
			mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").
				Return(newPersistedJob(t, "JOB-2024-001", 50), nil).Once()
		}
		mocks.jobs.On("Save", mock.Anything, mock.Anything).Return(domain.ErrVersionConflict).Twice()
		mocks.jobs.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

		_, err := service.AcceptOpenStep(context.Background(), AcceptStepCommand{
			JobNumber:  "JOB-2024-001",
			StepID:     "JOB-2024-001-S02",
			EmployeeID: "EMP-001",
		})

		require.NoError(t, err)
		mocks.jobs.AssertNumberOfCalls(t, "Save", 3)
	})
}

func TestExecuteStep(t *testing.T) {
	t.Run("unassigned operator is rejected", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 50)

		mocks.employees.On("Resolve", mock.Anything, "EMP-001").Return(operator(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)

		_, err := service.ExecuteStep(context.Background(), ExecuteStepCommand{
			JobNumber:    "JOB-2024-001",
			StepID:       job.Steps[0].StepID,
			EmployeeID:   "EMP-001",
			TargetStatus: "in_progress",
		})

		assert.Equal(t, apperrors.CodeForbidden, appErrorCode(t, err))
	})

	t.Run("supervisor bypasses assignment and completion syncs stock", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 50)

		mocks.employees.On("Resolve", mock.Anything, "EMP-SUP").Return(supervisor(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, job).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		mocks.rejected.On("Insert", mock.Anything, mock.Anything).Return(nil)
		mocks.orders.On("AdvanceStage", mock.Anything, "ORD-5001", domain.OrderStageInProduction).Return(nil)

		received, processed, rejected := 50, 45, 5
		dto, err := service.ExecuteStep(context.Background(), ExecuteStepCommand{
			JobNumber:    "JOB-2024-001",
			StepID:       job.Steps[0].StepID,
			EmployeeID:   "EMP-SUP",
			TargetStatus: "completed",
			ReceivedQty:  &received,
			ProcessedQty: &processed,
			RejectedQty:  &rejected,
		})

		require.NoError(t, err)
		assert.Equal(t, "completed", dto.Steps[0].Status)
		assert.Equal(t, 45, dto.Steps[1].ReceivedQty)

		mocks.wip.AssertCalled(t, "Upsert", mock.Anything, mock.MatchedBy(func(r *domain.WIPRecord) bool {
			return r.JobNumber == "JOB-2024-001" && r.Quantity == 45 &&
				r.InitialQty == 50 && r.ProcessedQty == 45 && r.RejectedQty == 5 && r.UOM == "pcs"
		}))
		mocks.rejected.AssertCalled(t, "Insert", mock.Anything, mock.MatchedBy(func(g *domain.RejectedGood) bool {
			return g.Quantity == 5 && g.StepName == "Cutting" &&
				g.EmployeeID == "EMP-SUP" && g.Source == domain.RejectionSourceProduction &&
				g.Status == domain.DispositionPending
		}))
		mocks.orders.AssertCalled(t, "AdvanceStage", mock.Anything, "ORD-5001", domain.OrderStageInProduction)
	})

	t.Run("resubmitted completion is a conflict and writes no second rejection", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 50)
		qty := &domain.StepQuantities{Received: 50, Processed: 45, Rejected: 5}
		require.NoError(t, job.ExecuteStep(job.Steps[0].StepID, "EMP-SUP", domain.StepStatusCompleted, qty, "", true))
		job.ClearDomainEvents()

		mocks.employees.On("Resolve", mock.Anything, "EMP-SUP").Return(supervisor(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)

		received, processed, rejected := 50, 45, 5
		_, err := service.ExecuteStep(context.Background(), ExecuteStepCommand{
			JobNumber:    "JOB-2024-001",
			StepID:       job.Steps[0].StepID,
			EmployeeID:   "EMP-SUP",
			TargetStatus: "completed",
			ReceivedQty:  &received,
			ProcessedQty: &processed,
			RejectedQty:  &rejected,
		})

		assert.Equal(t, apperrors.CodeConflict, appErrorCode(t, err))
		mocks.rejected.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("stock sync failure does not fail the request", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 50)

		mocks.employees.On("Resolve", mock.Anything, "EMP-SUP").Return(supervisor(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, job).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("Upsert", mock.Anything, mock.Anything).Return(assert.AnError)
		mocks.orders.On("AdvanceStage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		received, processed, rejected := 50, 50, 0
		_, err := service.ExecuteStep(context.Background(), ExecuteStepCommand{
			JobNumber:    "JOB-2024-001",
			StepID:       job.Steps[0].StepID,
			EmployeeID:   "EMP-SUP",
			TargetStatus: "completed",
			ReceivedQty:  &received,
			ProcessedQty: &processed,
			RejectedQty:  &rejected,
		})

		assert.NoError(t, err)
	})
}

func TestSubmitFinalInspection(t *testing.T) {
	readyJob := func(t *testing.T) *domain.Job {
		job := newPersistedJob(t, "JOB-2024-001", 40)
		for i := 0; i < 2; i++ {
			step := job.Steps[i]
			qty := &domain.StepQuantities{Received: step.ReceivedQty, Processed: step.ReceivedQty, Rejected: 0}
			require.NoError(t, job.ExecuteStep(step.StepID, "EMP-SUP", domain.StepStatusCompleted, qty, "", true))
		}
		job.ClearDomainEvents()
		return job
	}

	t.Run("settles ledgers and the order", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := readyJob(t)

		mocks.employees.On("Resolve", mock.Anything, "EMP-QA").Return(inspector(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, job).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.finished.On("UpsertByJobNumber", mock.Anything, mock.Anything).Return(nil)
		mocks.items.On("IncrementStock", mock.Anything, "ITM-GEAR-01", 38).Return(nil)
		mocks.rejected.On("Insert", mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("DeleteByJobNumber", mock.Anything, "JOB-2024-001").Return(nil)
		mocks.orders.On("UpsertBatch", mock.Anything, "ORD-5001", "L1", mock.Anything).Return(nil)
		mocks.jobs.On("FindByOrderNumber", mock.Anything, "ORD-5001").Return([]*domain.Job{job}, nil)
		mocks.orders.On("AdvanceStage", mock.Anything, "ORD-5001", domain.OrderStageCompleted).Return(nil)

		dto, err := service.SubmitFinalInspection(context.Background(), FinalInspectionCommand{
			JobNumber:    "JOB-2024-001",
			EmployeeID:   "EMP-QA",
			ProcessedQty: intPtr(38),
			RejectedQty:  2,
			Results: []InspectionReadingDTO{
				{Parameter: "Diameter", Reading: "12.02mm", Passed: true},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "completed", dto.Status)
		assert.Equal(t, "completed", dto.Stage)
		require.Len(t, dto.Steps[2].Readings, 1)
		assert.Equal(t, "Diameter", dto.Steps[2].Readings[0].Parameter)

		mocks.finished.AssertCalled(t, "UpsertByJobNumber", mock.Anything, mock.MatchedBy(func(g *domain.FinishedGood) bool {
			return g.JobNumber == "JOB-2024-001" && g.Quantity == 38
		}))
		mocks.rejected.AssertCalled(t, "Insert", mock.Anything, mock.MatchedBy(func(g *domain.RejectedGood) bool {
			return g.Quantity == 2 && g.StepName == "Final Quality Check" &&
				g.EmployeeID == "EMP-QA" && g.Source == domain.RejectionSourceQC
		}))
		mocks.wip.AssertCalled(t, "DeleteByJobNumber", mock.Anything, "JOB-2024-001")
		mocks.orders.AssertCalled(t, "UpsertBatch", mock.Anything, "ORD-5001", "L1", mock.MatchedBy(func(b domain.Batch) bool {
			return b.JobNumber == "JOB-2024-001" && b.AcceptedQty == 38 && b.RejectedQty == 2
		}))
		// The only job of the order finalized, so the order completes
		mocks.orders.AssertCalled(t, "AdvanceStage", mock.Anything, "ORD-5001", domain.OrderStageCompleted)
	})

	t.Run("omitted accepted quantity falls back to the last processed count", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := readyJob(t)

		mocks.employees.On("Resolve", mock.Anything, "EMP-QA").Return(inspector(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, job).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.finished.On("UpsertByJobNumber", mock.Anything, mock.Anything).Return(nil)
		mocks.items.On("IncrementStock", mock.Anything, "ITM-GEAR-01", 40).Return(nil)
		mocks.wip.On("DeleteByJobNumber", mock.Anything, "JOB-2024-001").Return(nil)
		mocks.orders.On("UpsertBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mocks.jobs.On("FindByOrderNumber", mock.Anything, "ORD-5001").Return([]*domain.Job{job}, nil)
		mocks.orders.On("AdvanceStage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := service.SubmitFinalInspection(context.Background(), FinalInspectionCommand{
			JobNumber:  "JOB-2024-001",
			EmployeeID: "EMP-QA",
		})

		require.NoError(t, err)
		mocks.finished.AssertCalled(t, "UpsertByJobNumber", mock.Anything, mock.MatchedBy(func(g *domain.FinishedGood) bool {
			return g.Quantity == 40
		}))
	})

	t.Run("order stays open while sibling jobs run", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := readyJob(t)
		sibling := newPersistedJob(t, "JOB-2024-002", 60)

		mocks.employees.On("Resolve", mock.Anything, "EMP-QA").Return(inspector(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, job).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.finished.On("UpsertByJobNumber", mock.Anything, mock.Anything).Return(nil)
		mocks.items.On("IncrementStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("DeleteByJobNumber", mock.Anything, mock.Anything).Return(nil)
		mocks.orders.On("UpsertBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mocks.jobs.On("FindByOrderNumber", mock.Anything, "ORD-5001").Return([]*domain.Job{job, sibling}, nil)

		_, err := service.SubmitFinalInspection(context.Background(), FinalInspectionCommand{
			JobNumber:    "JOB-2024-001",
			EmployeeID:   "EMP-QA",
			ProcessedQty: intPtr(40),
			RejectedQty:  0,
		})

		require.NoError(t, err)
		mocks.orders.AssertNotCalled(t, "AdvanceStage", mock.Anything, "ORD-5001", domain.OrderStageCompleted)
	})

	t.Run("resubmission is a conflict", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := readyJob(t)
		require.NoError(t, job.FinalizeInspection("", 40, 0, "", nil))
		job.ClearDomainEvents()

		mocks.employees.On("Resolve", mock.Anything, "EMP-QA").Return(inspector(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)

		_, err := service.SubmitFinalInspection(context.Background(), FinalInspectionCommand{
			JobNumber:    "JOB-2024-001",
			EmployeeID:   "EMP-QA",
			ProcessedQty: intPtr(40),
			RejectedQty:  0,
		})

		assert.Equal(t, apperrors.CodeConflict, appErrorCode(t, err))
		mocks.finished.AssertNotCalled(t, "UpsertByJobNumber", mock.Anything, mock.Anything)
	})
}

func TestSplitJob(t *testing.T) {
	t.Run("requires the manage_jobs capability", func(t *testing.T) {
		service, mocks := newTestService(t)
		mocks.employees.On("Resolve", mock.Anything, "EMP-001").Return(operator(), nil)

		_, err := service.SplitJob(context.Background(), SplitJobCommand{
			JobNumber:  "JOB-2024-001",
			EmployeeID: "EMP-001",
			SplitQty:   30,
		})

		assert.Equal(t, apperrors.CodeForbidden, appErrorCode(t, err))
	})

	t.Run("saves both halves and rewrites the order line batches", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 100)

		mocks.employees.On("Resolve", mock.Anything, "EMP-SUP").Return(supervisor(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, mock.Anything).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		mocks.orders.On("UpsertBatch", mock.Anything, "ORD-5001", "L1", mock.Anything).Return(nil)

		result, err := service.SplitJob(context.Background(), SplitJobCommand{
			JobNumber:    "JOB-2024-001",
			EmployeeID:   "EMP-SUP",
			NewJobNumber: "JOB-2024-010",
			SplitQty:     30,
		})

		require.NoError(t, err)
		assert.Equal(t, 30, result.Original.Quantity)
		assert.Equal(t, 70, result.NewJob.Quantity)
		assert.Equal(t, "JOB-2024-010", result.NewJob.JobNumber)
		mocks.jobs.AssertNumberOfCalls(t, "Save", 2)

		// The original's entry is corrected and the new job gets its own
		mocks.orders.AssertCalled(t, "UpsertBatch", mock.Anything, "ORD-5001", "L1", mock.MatchedBy(func(b domain.Batch) bool {
			return b.JobNumber == "JOB-2024-001" && b.Quantity == 30
		}))
		mocks.orders.AssertCalled(t, "UpsertBatch", mock.Anything, "ORD-5001", "L1", mock.MatchedBy(func(b domain.Batch) bool {
			return b.JobNumber == "JOB-2024-010" && b.Quantity == 70
		}))
	})

	t.Run("batch write failure is surfaced without failing the split", func(t *testing.T) {
		service, mocks := newTestService(t)
		job := newPersistedJob(t, "JOB-2024-001", 100)

		mocks.employees.On("Resolve", mock.Anything, "EMP-SUP").Return(supervisor(), nil)
		mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
		mocks.jobs.On("Save", mock.Anything, mock.Anything).Return(nil)
		mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
		mocks.wip.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		mocks.orders.On("UpsertBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		result, err := service.SplitJob(context.Background(), SplitJobCommand{
			JobNumber:    "JOB-2024-001",
			EmployeeID:   "EMP-SUP",
			NewJobNumber: "JOB-2024-010",
			SplitQty:     30,
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		mocks.orders.AssertNumberOfCalls(t, "UpsertBatch", 2)
	})
}

func TestListOpenSteps(t *testing.T) {
	service, mocks := newTestService(t)

	active := newPersistedJob(t, "JOB-2024-001", 50)
	held := newPersistedJob(t, "JOB-2024-002", 20)
	require.NoError(t, held.Hold("material shortage"))

	mocks.jobs.On("FindWithOpenSteps", mock.Anything, 100).Return([]*domain.Job{active, held}, nil)

	feed, err := service.ListOpenSteps(context.Background(), ListOpenStepsQuery{})

	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "JOB-2024-001", feed[0].JobNumber)
	assert.Equal(t, "Assembly", feed[0].StepName)
}

func TestHoldJob(t *testing.T) {
	service, mocks := newTestService(t)
	job := newPersistedJob(t, "JOB-2024-001", 50)

	mocks.employees.On("Resolve", mock.Anything, "EMP-SUP").Return(supervisor(), nil)
	mocks.jobs.On("FindByJobNumber", mock.Anything, "JOB-2024-001").Return(job, nil)
	mocks.jobs.On("Save", mock.Anything, job).Return(nil)
	mocks.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)
	mocks.wip.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	dto, err := service.HoldJob(context.Background(), HoldJobCommand{
		JobNumber:  "JOB-2024-001",
		EmployeeID: "EMP-SUP",
		Reason:     "material shortage",
	})

	require.NoError(t, err)
	assert.Equal(t, "on_hold", dto.Status)
	assert.Equal(t, "hold", dto.Stage)
}
