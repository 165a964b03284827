package service

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/cache"
	"earnings-tracker/pkg/logger"
	"fmt"
)

const stockCountCacheKey = "earnings:stock_count"

type EarningsService interface {
	Create(ctx context.Context, req dto.CreateEarningsRequest, creatorID *uint) (*model.Earnings, error)
	FindAll(ctx context.Context) ([]model.Earnings, error)
	FindByStockName(ctx context.Context, name string) ([]model.Earnings, error)
	Update(ctx context.Context, id uint, req dto.UpdateEarningsRequest) error
	Delete(ctx context.Context, id uint) error
	StockCount(ctx context.Context) (int64, error)
}

type earningsService struct {
	cfg          *config.Config
	log          *logger.Logger
	cache        cache.Cache
	earningsRepo repository.EarningsRepository
}

func NewEarningsService(
	cfg *config.Config,
	log *logger.Logger,
	inmemoryCache cache.Cache,
	earningsRepo repository.EarningsRepository,
) *earningsService {
	return &earningsService{
		cfg:          cfg,
		log:          log,
		cache:        inmemoryCache,
		earningsRepo: earningsRepo,
	}
}

func (s *earningsService) Create(ctx context.Context, req dto.CreateEarningsRequest, creatorID *uint) (*model.Earnings, error) {
	fields, err := req.ToFields()
	if err != nil {
		return nil, err
	}

	record := &model.Earnings{UserID: creatorID}
	fields.Apply(record)
	if err := s.earningsRepo.Create(ctx, record); err != nil {
		s.log.ErrorContext(ctx, "Failed to create earnings", logger.ErrorField(err), logger.StringField("stock_name", record.StockName))
		return nil, err
	}
	s.cache.Delete(stockCountCacheKey)

	s.log.InfoContext(ctx, "Earnings created",
		logger.UintField("id", record.ID),
		logger.StringField("stock_name", record.StockName),
	)
	return record, nil
}

func (s *earningsService) FindAll(ctx context.Context) ([]model.Earnings, error) {
	return s.earningsRepo.FindAll(ctx)
}

func (s *earningsService) FindByStockName(ctx context.Context, name string) ([]model.Earnings, error) {
	return s.earningsRepo.FindByStockName(ctx, name)
}

func (s *earningsService) Update(ctx context.Context, id uint, req dto.UpdateEarningsRequest) error {
	fields, err := req.ToFields()
	if err != nil {
		return err
	}
	if len(fields.Columns()) == 0 {
		// nothing to change, but the target must still exist
		return s.ensureExists(ctx, id)
	}

	if err := s.earningsRepo.Update(ctx, id, fields); err != nil {
		return err
	}
	s.cache.Delete(stockCountCacheKey)
	return nil
}

func (s *earningsService) ensureExists(ctx context.Context, id uint) error {
	record, err := s.earningsRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return dto.ErrNotFound
	}
	return nil
}

func (s *earningsService) Delete(ctx context.Context, id uint) error {
	if err := s.earningsRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(stockCountCacheKey)
	s.log.InfoContext(ctx, "Earnings deleted", logger.UintField("id", id))
	return nil
}

// StockCount is served from the in-memory cache until the next write.
func (s *earningsService) StockCount(ctx context.Context) (int64, error) {
	if n, ok := cache.GetFromCache[int64](s.cache, stockCountCacheKey); ok {
		return n, nil
	}
	n, err := s.earningsRepo.StockCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count stocks: %w", err)
	}
	s.cache.Set(stockCountCacheKey, n, s.cfg.Cache.DefaultExpiration)
	return n, nil
}
