package application

import (
	"context"

	"github.com/mes-platform/production-service/internal/domain"
	"github.com/mes-platform/production-service/pkg/errors"
)

// StockQueryService serves read-only views over the stock ledgers
type StockQueryService struct {
	wip      domain.WIPRepository
	finished domain.FinishedGoodRepository
	rejected domain.RejectedGoodRepository
}

// NewStockQueryService creates a new StockQueryService
func NewStockQueryService(
	wip domain.WIPRepository,
	finished domain.FinishedGoodRepository,
	rejected domain.RejectedGoodRepository,
) *StockQueryService {
	return &StockQueryService{
		wip:      wip,
		finished: finished,
		rejected: rejected,
	}
}

// ListWIP lists the work-in-process ledger
func (s *StockQueryService) ListWIP(ctx context.Context, limit int) ([]WIPDTO, error) {
	records, err := s.wip.List(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, errors.ErrInternal("failed to list WIP stock").Wrap(err)
	}
	return ToWIPDTOs(records), nil
}

// ListFinishedGoods lists the finished-goods ledger
func (s *StockQueryService) ListFinishedGoods(ctx context.Context, limit int) ([]FinishedGoodDTO, error) {
	goods, err := s.finished.List(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, errors.ErrInternal("failed to list finished goods").Wrap(err)
	}
	return ToFinishedGoodDTOs(goods), nil
}

// ListRejectedGoods lists the rejection ledger, optionally for one job
func (s *StockQueryService) ListRejectedGoods(ctx context.Context, jobNumber string, limit int) ([]RejectedGoodDTO, error) {
	var (
		goods []*domain.RejectedGood
		err   error
	)
	if jobNumber != "" {
		goods, err = s.rejected.ListByJobNumber(ctx, jobNumber)
	} else {
		goods, err = s.rejected.List(ctx, normalizeLimit(limit))
	}
	if err != nil {
		return nil, errors.ErrInternal("failed to list rejected goods").Wrap(err)
	}
	return ToRejectedGoodDTOs(goods), nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
