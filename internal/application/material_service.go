package application

import (
	"context"
	"sort"
	"time"

	"github.com/mes-platform/production-service/internal/domain"
	"github.com/mes-platform/production-service/pkg/errors"
	"github.com/mes-platform/production-service/pkg/logging"
)

// MaterialService maintains the derived raw-material availability view.
// Recompute replaces the whole collection from receipts and open job
// demand rather than patching rows incrementally, so a missed sync never
// leaves a permanently wrong balance.
type MaterialService struct {
	raws      domain.RawMaterialRepository
	receipts  domain.MaterialReceiptRepository
	jobs      domain.JobRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	raws domain.RawMaterialRepository,
	receipts domain.MaterialReceiptRepository,
	jobs domain.JobRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *MaterialService {
	return &MaterialService{
		raws:      raws,
		receipts:  receipts,
		jobs:      jobs,
		publisher: publisher,
		logger:    logger,
	}
}

// Recompute rebuilds all raw-material rows: received totals from receipts
// minus the requirements declared by every job, completed or not.
func (s *MaterialService) Recompute(ctx context.Context) ([]RawMaterialDTO, error) {
	received, err := s.receipts.SumByMaterial(ctx)
	if err != nil {
		return nil, errors.ErrInternal("failed to sum material receipts").Wrap(err)
	}

	demand, err := s.jobs.SumMaterialDemand(ctx)
	if err != nil {
		return nil, errors.ErrInternal("failed to sum material demand").Wrap(err)
	}

	codes := make(map[string]struct{}, len(received)+len(demand))
	for code := range received {
		codes[code] = struct{}{}
	}
	for code := range demand {
		codes[code] = struct{}{}
	}

	now := time.Now()
	materials := make([]*domain.RawMaterial, 0, len(codes))
	for code := range codes {
		materials = append(materials, &domain.RawMaterial{
			MaterialCode: code,
			ReceivedQty:  received[code],
			DemandQty:    demand[code],
			NetQty:       received[code] - demand[code],
			ComputedAt:   now,
		})
	}
	sort.Slice(materials, func(i, j int) bool {
		return materials[i].MaterialCode < materials[j].MaterialCode
	})

	if err := s.raws.ReplaceAll(ctx, materials); err != nil {
		return nil, errors.ErrInternal("failed to replace raw material rows").Wrap(err)
	}

	event := &domain.MaterialsRecomputedEvent{
		MaterialCount: len(materials),
		RecomputedAt:  now,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to publish materials recompute event")
	}

	s.logger.WithContext(ctx).Info("Raw materials recomputed",
		"materialCount", len(materials),
	)

	return ToRawMaterialDTOs(materials), nil
}

// List returns the current raw-material availability rows
func (s *MaterialService) List(ctx context.Context) ([]RawMaterialDTO, error) {
	materials, err := s.raws.List(ctx)
	if err != nil {
		return nil, errors.ErrInternal("failed to list raw materials").Wrap(err)
	}
	return ToRawMaterialDTOs(materials), nil
}
