package application

import (
	"github.com/mes-platform/production-service/internal/domain"
)

// ToJobDTO converts a domain Job to its DTO
func ToJobDTO(job *domain.Job) *JobDTO {
	if job == nil {
		return nil
	}

	dto := &JobDTO{
		JobNumber:    job.JobNumber,
		OrderNumber:  job.OrderNumber,
		OrderLineID:  job.OrderLineID,
		ItemCode:     job.ItemCode,
		ItemName:     job.ItemName,
		UOM:          job.UOM,
		Quantity:     job.Quantity,
		Priority:     job.Priority,
		DeliveryDate: job.DeliveryDate,
		Status:       string(job.Status),
		Stage:        string(job.Stage),
		StageHistory: make([]StageDTO, 0, len(job.StageHistory)),
		Steps:        make([]StepDTO, 0, len(job.Steps)),
		Materials:    make([]MaterialDTO, 0, len(job.Materials)),
		Version:      job.Version,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}

	for _, entry := range job.StageHistory {
		dto.StageHistory = append(dto.StageHistory, StageDTO{
			Stage:       string(entry.Stage),
			At:          entry.At,
			Description: entry.Description,
		})
	}
	for i := range job.Steps {
		dto.Steps = append(dto.Steps, ToStepDTO(&job.Steps[i]))
	}
	for _, m := range job.Materials {
		dto.Materials = append(dto.Materials, MaterialDTO{
			MaterialCode: m.MaterialCode,
			Quantity:     m.Quantity,
		})
	}

	return dto
}

// ToJobDTOs converts a slice of jobs
func ToJobDTOs(jobs []*domain.Job) []JobDTO {
	dtos := make([]JobDTO, 0, len(jobs))
	for _, job := range jobs {
		dtos = append(dtos, *ToJobDTO(job))
	}
	return dtos
}

// ToStepDTO converts a domain Step to its DTO
func ToStepDTO(step *domain.Step) StepDTO {
	dto := StepDTO{
		Seq:          step.Seq,
		StepID:       step.StepID,
		Name:         step.Name,
		Type:         string(step.Type),
		Status:       string(step.Status),
		IsOpen:       step.IsOpen,
		IsOutward:    step.IsOutward,
		ReceivedQty:  step.ReceivedQty,
		ProcessedQty: step.ProcessedQty,
		RejectedQty:  step.RejectedQty,
		StartedAt:    step.StartedAt,
		CompletedAt:  step.CompletedAt,
		ReturnedAt:   step.ReturnedAt,
		Remarks:      step.Remarks,
	}
	for _, a := range step.Assignees {
		dto.Assignees = append(dto.Assignees, AssignmentDTO{
			EmployeeID: a.EmployeeID,
			AssignedAt: a.AssignedAt,
		})
	}
	for _, r := range step.Readings {
		dto.Readings = append(dto.Readings, InspectionReadingDTO{
			Parameter: r.Parameter,
			Reading:   r.Reading,
			Passed:    r.Passed,
		})
	}
	return dto
}

// ToInspectionReadings converts submitted inspection results to their
// domain form
func ToInspectionReadings(results []InspectionReadingDTO) []domain.InspectionReading {
	if len(results) == 0 {
		return nil
	}
	readings := make([]domain.InspectionReading, 0, len(results))
	for _, r := range results {
		readings = append(readings, domain.InspectionReading{
			Parameter: r.Parameter,
			Reading:   r.Reading,
			Passed:    r.Passed,
		})
	}
	return readings
}

// ToWIPDTOs converts WIP ledger rows
func ToWIPDTOs(records []*domain.WIPRecord) []WIPDTO {
	dtos := make([]WIPDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, WIPDTO{
			JobNumber:    r.JobNumber,
			OrderNumber:  r.OrderNumber,
			ItemCode:     r.ItemCode,
			ItemName:     r.ItemName,
			Quantity:     r.Quantity,
			InitialQty:   r.InitialQty,
			ProcessedQty: r.ProcessedQty,
			RejectedQty:  r.RejectedQty,
			UOM:          r.UOM,
			Stage:        r.Stage,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return dtos
}

// ToFinishedGoodDTOs converts finished-goods ledger rows
func ToFinishedGoodDTOs(goods []*domain.FinishedGood) []FinishedGoodDTO {
	dtos := make([]FinishedGoodDTO, 0, len(goods))
	for _, g := range goods {
		dtos = append(dtos, FinishedGoodDTO{
			JobNumber:   g.JobNumber,
			OrderNumber: g.OrderNumber,
			ItemCode:    g.ItemCode,
			ItemName:    g.ItemName,
			Quantity:    g.Quantity,
			UOM:         g.UOM,
			ProducedAt:  g.ProducedAt,
		})
	}
	return dtos
}

// ToRejectedGoodDTOs converts rejection ledger rows
func ToRejectedGoodDTOs(goods []*domain.RejectedGood) []RejectedGoodDTO {
	dtos := make([]RejectedGoodDTO, 0, len(goods))
	for _, g := range goods {
		dtos = append(dtos, RejectedGoodDTO{
			JobNumber:   g.JobNumber,
			OrderNumber: g.OrderNumber,
			ItemCode:    g.ItemCode,
			StepName:    g.StepName,
			EmployeeID:  g.EmployeeID,
			Quantity:    g.Quantity,
			Source:      g.Source,
			Status:      g.Status,
			Reason:      g.Reason,
			RejectedAt:  g.RejectedAt,
		})
	}
	return dtos
}

// ToRawMaterialDTOs converts raw-material availability rows
func ToRawMaterialDTOs(materials []*domain.RawMaterial) []RawMaterialDTO {
	dtos := make([]RawMaterialDTO, 0, len(materials))
	for _, m := range materials {
		dtos = append(dtos, RawMaterialDTO{
			MaterialCode: m.MaterialCode,
			ReceivedQty:  m.ReceivedQty,
			DemandQty:    m.DemandQty,
			NetQty:       m.NetQty,
			ComputedAt:   m.ComputedAt,
		})
	}
	return dtos
}
