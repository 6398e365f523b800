package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func testItem() *Item {
	return &Item{
		ItemCode: "ITM-GEAR-01",
		Name:     "Precision Gear",
		UOM:      "pcs",
		StepTemplates: []StepTemplate{
			{Name: "Cutting", Type: StepTypeExecution},
			{Name: "Assembly", Type: StepTypeExecution, IsOpen: true},
			{Name: "Quality Inspection", Type: StepTypeTesting},
		},
		Materials: []MaterialRequirement{
			{MaterialCode: "MAT-STEEL", Quantity: 2.5},
		},
	}
}

func testOutwardItem() *Item {
	return &Item{
		ItemCode: "ITM-SHAFT-02",
		Name:     "Drive Shaft",
		UOM:      "pcs",
		StepTemplates: []StepTemplate{
			{Name: "Cutting", Type: StepTypeExecution},
			{Name: "Plating", Type: StepTypeExecution, IsOutward: true},
			{Name: "Quality Inspection", Type: StepTypeTesting},
		},
	}
}

func testJob(t *testing.T, quantity int) *Job {
	t.Helper()
	job, err := NewJob("JOB-2024-001", "ORD-5001", "L1", testItem(), quantity, 1, nil)
	require.NoError(t, err)
	job.ClearDomainEvents()
	return job
}

// completeFirstSteps drives the first n execution steps to completion with a
// clean pass-through of the full quantity.
func completeFirstSteps(t *testing.T, job *Job, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		step := &job.Steps[i]
		if step.Status == StepStatusCompleted {
			continue
		}
		if step.Status == StepStatusPending {
			require.NoError(t, job.AssignStep(step.StepID, []string{"EMP-001"}, false))
		}
		qty := &StepQuantities{Received: step.ReceivedQty, Processed: step.ReceivedQty, Rejected: 0}
		require.NoError(t, job.ExecuteStep(step.StepID, "EMP-001", StepStatusCompleted, qty, "", false))
	}
}

func TestNewJob(t *testing.T) {
	tests := []struct {
		name        string
		item        *Item
		quantity    int
		expectError bool
	}{
		{
			name:     "valid job",
			item:     testItem(),
			quantity: 100,
		},
		{
			name:        "zero quantity",
			item:        testItem(),
			quantity:    0,
			expectError: true,
		},
		{
			name:        "item without step templates",
			item:        &Item{ItemCode: "ITM-EMPTY", StepTemplates: nil},
			quantity:    10,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewJob("JOB-2024-001", "ORD-5001", "L1", tt.item, tt.quantity, 1, nil)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, job)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, job)
			assert.Equal(t, JobStatusCreated, job.Status)
			assert.Equal(t, JobStageNew, job.Stage)
			assert.Len(t, job.Steps, 3)
			assert.Equal(t, "JOB-2024-001-S01", job.Steps[0].StepID)
			assert.Equal(t, tt.quantity, job.Steps[0].ReceivedQty)
			assert.Zero(t, job.Steps[1].ReceivedQty)

			// Material requirements scale per unit
			require.Len(t, job.Materials, 1)
			assert.InDelta(t, 2.5*float64(tt.quantity), job.Materials[0].Quantity, 0.001)

			events := job.GetDomainEvents()
			require.Len(t, events, 1)
			created, ok := events[0].(*JobCreatedEvent)
			require.True(t, ok)
			assert.Equal(t, "JOB-2024-001", created.JobNumber)
			assert.Equal(t, 3, created.StepCount)
		})
	}
}

func TestAssignStep(t *testing.T) {
	job := testJob(t, 50)

	err := job.AssignStep(job.Steps[0].StepID, []string{"EMP-001", "EMP-002"}, false)
	require.NoError(t, err)
	assert.Len(t, job.Steps[0].Assignees, 2)
	assert.Equal(t, JobStageAssigned, job.Stage)

	// Assigning the same employee twice keeps one assignment
	require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))
	assert.Len(t, job.Steps[0].Assignees, 2)

	// Unknown step
	err = job.AssignStep("JOB-2024-001-S99", []string{"EMP-001"}, false)
	assert.ErrorIs(t, err, ErrStepNotFound)

	// Started steps cannot be reassigned
	require.NoError(t, job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusInProgress, nil, "", false))
	err = job.AssignStep(job.Steps[0].StepID, []string{"EMP-003"}, false)
	assert.Error(t, err)
}

func TestAcceptOpenStep(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*Job)
		stepIndex   int
		employeeID  string
		expectError error
	}{
		{
			name:       "claim open step",
			stepIndex:  1,
			employeeID: "EMP-001",
		},
		{
			name: "step already claimed",
			setup: func(job *Job) {
				require.NoError(t, job.AcceptOpenStep(job.Steps[1].StepID, "EMP-001"))
			},
			stepIndex:   1,
			employeeID:  "EMP-002",
			expectError: ErrStepNotOpen,
		},
		{
			name: "claimant already assigned",
			setup: func(job *Job) {
				require.NoError(t, job.AcceptOpenStep(job.Steps[1].StepID, "EMP-001"))
			},
			stepIndex:   1,
			employeeID:  "EMP-001",
			expectError: ErrAlreadyAssigned,
		},
		{
			name:        "step not marked open",
			stepIndex:   0,
			employeeID:  "EMP-001",
			expectError: ErrStepNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testJob(t, 50)
			if tt.setup != nil {
				tt.setup(job)
			}

			err := job.AcceptOpenStep(job.Steps[tt.stepIndex].StepID, tt.employeeID)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}

			require.NoError(t, err)
			step := job.Steps[tt.stepIndex]
			assert.False(t, step.IsOpen, "accepted step must close to further claimants")
			require.Len(t, step.Assignees, 1)
			assert.Equal(t, tt.employeeID, step.Assignees[0].EmployeeID)
		})
	}
}

func TestExecuteStep(t *testing.T) {
	t.Run("unassigned employee is rejected", func(t *testing.T) {
		job := testJob(t, 50)
		err := job.ExecuteStep(job.Steps[0].StepID, "EMP-999", StepStatusInProgress, nil, "", false)
		assert.ErrorIs(t, err, ErrNotAssigned)
	})

	t.Run("bypass skips the assignment check", func(t *testing.T) {
		job := testJob(t, 50)
		err := job.ExecuteStep(job.Steps[0].StepID, "EMP-999", StepStatusInProgress, nil, "", true)
		require.NoError(t, err)
		assert.Equal(t, StepStatusInProgress, job.Steps[0].Status)
		assert.Equal(t, JobStatusInProgress, job.Status)
		assert.Equal(t, JobStageManufacturing, job.Stage)
	})

	t.Run("blocked by incomplete predecessor", func(t *testing.T) {
		job := testJob(t, 50)
		require.NoError(t, job.AssignStep(job.Steps[1].StepID, []string{"EMP-001"}, false))

		err := job.ExecuteStep(job.Steps[1].StepID, "EMP-001", StepStatusInProgress, nil, "", false)

		var blocked *StepBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, "Assembly", blocked.StepName)
		assert.Equal(t, "Cutting", blocked.BlockingStep)
	})

	t.Run("completion requires quantities", func(t *testing.T) {
		job := testJob(t, 50)
		require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))

		err := job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusCompleted, nil, "", false)
		assert.Error(t, err)
	})

	t.Run("quantities must conserve", func(t *testing.T) {
		job := testJob(t, 50)
		require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))

		qty := &StepQuantities{Received: 50, Processed: 48, Rejected: 5}
		err := job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusCompleted, qty, "", false)

		var mismatch *QuantityMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})

	t.Run("completion feeds the next step", func(t *testing.T) {
		job := testJob(t, 50)
		require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))

		qty := &StepQuantities{Received: 50, Processed: 45, Rejected: 5}
		require.NoError(t, job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusCompleted, qty, "burr defects", false))

		assert.Equal(t, StepStatusCompleted, job.Steps[0].Status)
		assert.Equal(t, 45, job.Steps[1].ReceivedQty)
		assert.Equal(t, 45, job.CurrentQuantity())
		assert.Equal(t, "Assembly", job.ActiveStepName())
	})

	t.Run("completed step cannot be completed again", func(t *testing.T) {
		job := testJob(t, 50)
		completeFirstSteps(t, job, 1)

		qty := &StepQuantities{Received: 50, Processed: 50, Rejected: 0}
		err := job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusCompleted, qty, "", false)

		assert.ErrorIs(t, err, ErrStepCompleted)
		assert.Equal(t, 50, job.Steps[1].ReceivedQty)
	})

	t.Run("failed step can be retried", func(t *testing.T) {
		job := testJob(t, 50)
		require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))

		require.NoError(t, job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusFailed, nil, "tool breakage", false))
		assert.Equal(t, StepStatusFailed, job.Steps[0].Status)

		require.NoError(t, job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusInProgress, nil, "", false))
		assert.Equal(t, StepStatusInProgress, job.Steps[0].Status)
	})
}

func TestStageProgression(t *testing.T) {
	job := testJob(t, 20)
	assert.Equal(t, JobStageNew, job.Stage)

	require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))
	assert.Equal(t, JobStageAssigned, job.Stage)

	require.NoError(t, job.ExecuteStep(job.Steps[0].StepID, "EMP-001", StepStatusInProgress, nil, "", false))
	assert.Equal(t, JobStageManufacturing, job.Stage)

	completeFirstSteps(t, job, 3)
	assert.Equal(t, JobStageVerification, job.Stage)

	// Verification is sticky: recomputing never drops the stage back
	job.RefreshStage()
	assert.Equal(t, JobStageVerification, job.Stage)

	// History records each transition once
	stages := make([]JobStage, 0, len(job.StageHistory))
	for _, entry := range job.StageHistory {
		stages = append(stages, entry.Stage)
	}
	assert.Equal(t, []JobStage{JobStageNew, JobStageAssigned, JobStageManufacturing, JobStageVerification}, stages)
}

func TestFinalizeInspection(t *testing.T) {
	t.Run("finalizes the job", func(t *testing.T) {
		job := testJob(t, 40)
		completeFirstSteps(t, job, 2)
		job.ClearDomainEvents()

		err := job.FinalizeInspection("", 38, 2, "minor surface defects", nil)
		require.NoError(t, err)

		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, JobStageCompleted, job.Stage)
		assert.True(t, job.IsFinalized())

		inspection := job.Steps[2]
		assert.Equal(t, StepStatusCompleted, inspection.Status)
		assert.Equal(t, 38, inspection.ProcessedQty)
		assert.Equal(t, 2, inspection.RejectedQty)

		var finalized *JobFinalizedEvent
		for _, event := range job.GetDomainEvents() {
			if e, ok := event.(*JobFinalizedEvent); ok {
				finalized = e
			}
		}
		require.NotNil(t, finalized)
		assert.Equal(t, 38, finalized.AcceptedQty)
	})

	t.Run("blocked while earlier steps are pending", func(t *testing.T) {
		job := testJob(t, 40)

		err := job.FinalizeInspection("", 40, 0, "", nil)

		var blocked *StepBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, "Quality Inspection", blocked.StepName)
		assert.Equal(t, JobStageNew, job.Stage)
		assert.Equal(t, StepStatusPending, job.Steps[0].Status)
		assert.False(t, job.IsFinalized())
	})

	t.Run("records parameter readings on the inspection step", func(t *testing.T) {
		job := testJob(t, 40)
		completeFirstSteps(t, job, 2)

		readings := []InspectionReading{
			{Parameter: "Diameter", Reading: "12.02mm", Passed: true},
			{Parameter: "Hardness", Reading: "58 HRC", Passed: false},
		}
		require.NoError(t, job.FinalizeInspection("", 38, 2, "", readings))

		inspection := job.Steps[2]
		require.Len(t, inspection.Readings, 2)
		assert.Equal(t, "Diameter", inspection.Readings[0].Parameter)
		assert.False(t, inspection.Readings[1].Passed)
	})

	t.Run("resubmission is rejected", func(t *testing.T) {
		job := testJob(t, 40)
		completeFirstSteps(t, job, 2)
		require.NoError(t, job.FinalizeInspection("", 40, 0, "", nil))

		err := job.FinalizeInspection("", 40, 0, "", nil)
		assert.ErrorIs(t, err, ErrJobFinalized)
	})

	t.Run("rejects quantities over the received count", func(t *testing.T) {
		job := testJob(t, 40)
		completeFirstSteps(t, job, 2)

		err := job.FinalizeInspection("", 39, 2, "", nil)
		var mismatch *QuantityMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})

	t.Run("no inspection step", func(t *testing.T) {
		item := &Item{
			ItemCode: "ITM-PLAIN",
			StepTemplates: []StepTemplate{
				{Name: "Cutting", Type: StepTypeExecution},
			},
		}
		job, err := NewJob("JOB-2024-002", "ORD-5001", "L1", item, 10, 1, nil)
		require.NoError(t, err)

		err = job.FinalizeInspection("", 10, 0, "", nil)
		assert.ErrorIs(t, err, ErrNoInspectionStep)
	})
}

func TestCompleteOutward(t *testing.T) {
	newOutwardJob := func(t *testing.T) *Job {
		job, err := NewJob("JOB-2024-003", "ORD-5002", "L1", testOutwardItem(), 30, 1, nil)
		require.NoError(t, err)
		job.ClearDomainEvents()
		completeFirstSteps(t, job, 1)
		return job
	}

	t.Run("reconciles returned quantities", func(t *testing.T) {
		job := newOutwardJob(t)
		returnDate := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

		err := job.CompleteOutward(job.Steps[1].StepID, "EMP-SUP", 30, 3, "plating defects", returnDate, true)
		require.NoError(t, err)

		step := job.Steps[1]
		assert.Equal(t, StepStatusCompleted, step.Status)
		assert.Equal(t, 27, step.ProcessedQty)
		assert.Equal(t, 3, step.RejectedQty)
		require.NotNil(t, step.ReturnedAt)
		assert.Equal(t, returnDate, *step.ReturnedAt)

		// The accepted output feeds the inspection step
		assert.Equal(t, 27, job.Steps[2].ReceivedQty)
	})

	t.Run("rejects non-outward steps", func(t *testing.T) {
		job := testJob(t, 30)
		err := job.CompleteOutward(job.Steps[0].StepID, "EMP-SUP", 30, 0, "", time.Now(), true)
		assert.ErrorIs(t, err, ErrNotOutward)
	})
}

func TestSplit(t *testing.T) {
	t.Run("splits quantity and resets the remainder pipeline", func(t *testing.T) {
		job := testJob(t, 100)
		require.NoError(t, job.AssignStep(job.Steps[0].StepID, []string{"EMP-001"}, false))

		newJob, err := job.Split("JOB-2024-010", 30)
		require.NoError(t, err)
		require.NotNil(t, newJob)

		assert.Equal(t, 30, job.Quantity)
		assert.Equal(t, 30, job.Steps[0].ReceivedQty)

		assert.Equal(t, 70, newJob.Quantity)
		assert.Equal(t, "JOB-2024-010", newJob.JobNumber)
		assert.Equal(t, job.OrderNumber, newJob.OrderNumber)
		assert.Equal(t, 70, newJob.Steps[0].ReceivedQty)
		for _, step := range newJob.Steps {
			assert.Equal(t, StepStatusPending, step.Status)
			assert.Empty(t, step.Assignees)
			assert.Nil(t, step.StartedAt)
		}

		// 250 units of steel split 30/70
		assert.InDelta(t, 75.0, job.Materials[0].Quantity, 0.001)
		assert.InDelta(t, 175.0, newJob.Materials[0].Quantity, 0.001)

		events := job.GetDomainEvents()
		require.NotEmpty(t, events)
		split, ok := events[len(events)-1].(*JobSplitEvent)
		require.True(t, ok)
		assert.Equal(t, 30, split.KeptQty)
		assert.Equal(t, 70, split.SplitQty)
	})

	t.Run("invalid split quantities", func(t *testing.T) {
		job := testJob(t, 100)
		for _, qty := range []int{0, -5, 100, 150} {
			_, err := job.Split("JOB-2024-011", qty)
			assert.ErrorIs(t, err, ErrInvalidSplitQuantity, "splitQty=%d", qty)
		}
	})
}

func TestHoldResume(t *testing.T) {
	job := testJob(t, 25)
	completeFirstSteps(t, job, 1)
	assert.Equal(t, JobStageManufacturing, job.Stage)

	require.NoError(t, job.Hold("material shortage"))
	assert.Equal(t, JobStatusOnHold, job.Status)
	assert.Equal(t, JobStageHold, job.Stage)

	require.NoError(t, job.Resume())
	assert.Equal(t, JobStatusInProgress, job.Status)
	assert.Equal(t, JobStageManufacturing, job.Stage)

	// Resume without a hold in place
	err := job.Resume()
	assert.Error(t, err)

	// Finalized jobs cannot be held
	completeFirstSteps(t, job, 2)
	require.NoError(t, job.FinalizeInspection("", 25, 0, "", nil))
	err = job.Hold("late hold")
	assert.ErrorIs(t, err, ErrJobFinalized)
}

func TestResumeRestoresHeldStage(t *testing.T) {
	job := testJob(t, 25)
	completeFirstSteps(t, job, 1)

	// A supervisor may park the job at a stage the step state alone would
	// not reproduce, e.g. while paperwork is being prepared.
	job.setStage(JobStageDocumentation, "Awaiting dispatch papers", time.Now())

	require.NoError(t, job.Hold("customs query"))
	assert.Equal(t, JobStageHold, job.Stage)

	require.NoError(t, job.Resume())
	assert.Equal(t, JobStageDocumentation, job.Stage)
}

func TestOpenSteps(t *testing.T) {
	job := testJob(t, 10)

	open := job.OpenSteps()
	require.Len(t, open, 1)
	assert.Equal(t, "Assembly", open[0].Name)

	require.NoError(t, job.AcceptOpenStep(open[0].StepID, "EMP-001"))
	assert.Empty(t, job.OpenSteps())
}

func TestQuantityHelpers(t *testing.T) {
	job := testJob(t, 60)
	completeFirstSteps(t, job, 1)
	step := &job.Steps[1]
	require.NoError(t, job.AssignStep(step.StepID, []string{"EMP-001"}, false))
	qty := &StepQuantities{Received: 60, Processed: 55, Rejected: 5}
	require.NoError(t, job.ExecuteStep(step.StepID, "EMP-001", StepStatusCompleted, qty, "", false))

	assert.Equal(t, 115, job.TotalProcessed())
	assert.Equal(t, 5, job.TotalRejected())
	assert.Equal(t, 55, job.CurrentQuantity())
	assert.Equal(t, 55, job.LastProcessedQty())
}

func TestVersionConflictSentinel(t *testing.T) {
	wrapped := errors.Join(ErrVersionConflict, errors.New("write failed"))
	assert.ErrorIs(t, wrapped, ErrVersionConflict)
}
