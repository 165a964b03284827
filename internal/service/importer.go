package service

import (
	"context"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/cache"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/sqlite"
	"earnings-tracker/pkg/utils"
	"fmt"
	"os"
	"strings"
)

type ImportService interface {
	Import(ctx context.Context, sourcePath string) (*dto.ImportResult, error)
}

type importService struct {
	log          *logger.Logger
	cache        cache.Cache
	earningsRepo repository.EarningsRepository
}

func NewImportService(log *logger.Logger, inmemoryCache cache.Cache, earningsRepo repository.EarningsRepository) *importService {
	return &importService{
		log:          log,
		cache:        inmemoryCache,
		earningsRepo: earningsRepo,
	}
}

// Import reconciles a legacy SQLite earnings table into the primary store:
// rows whose (stock, date) already exist are updated, the rest are inserted.
func (s *importService) Import(ctx context.Context, sourcePath string) (*dto.ImportResult, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("legacy source not readable: %w", err)
	}

	db, err := sqlite.Open(sourcePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sqlite.Close(db); err != nil {
			s.log.Warn("Failed to close legacy source", logger.ErrorField(err))
		}
	}()

	rows, err := repository.NewSQLiteEarningsRepository(db).ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Total: len(rows)}
	s.log.InfoContext(ctx, "Start legacy import", logger.StringField("source", sourcePath), logger.IntField("rows", len(rows)))

	for _, row := range rows {
		if !utils.ShouldContinue(ctx, s.log) {
			return result, ctx.Err()
		}

		fields, err := legacyFields(row)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping legacy row", logger.UintField("legacy_id", row.ID), logger.ErrorField(err))
			result.Skipped++
			continue
		}

		stock, date := *fields.StockName, *fields.EarningsDate
		exists, err := s.earningsRepo.Exists(ctx, stock, date)
		if err != nil {
			return result, err
		}
		if exists {
			if err := s.earningsRepo.UpdateByStockAndDate(ctx, stock, date, fields); err != nil {
				return result, err
			}
			result.Updated++
			continue
		}

		record := &model.Earnings{}
		fields.Apply(record)
		if err := s.earningsRepo.Create(ctx, record); err != nil {
			return result, err
		}
		result.Inserted++
	}

	if result.Inserted > 0 {
		s.cache.Delete(stockCountCacheKey)
	}
	s.log.InfoContext(ctx, "Legacy import finished",
		logger.IntField("inserted", result.Inserted),
		logger.IntField("updated", result.Updated),
		logger.IntField("skipped", result.Skipped),
	)
	return result, nil
}

func legacyFields(row repository.SQLiteEarningsRow) (dto.EarningsFields, error) {
	stock := strings.TrimSpace(row.StockName)
	if stock == "" {
		return dto.EarningsFields{}, fmt.Errorf("empty stock name")
	}
	date, err := utils.ParseDate(row.EarningsDate)
	if err != nil {
		return dto.EarningsFields{}, err
	}

	fields := dto.EarningsFields{
		StockName:    &stock,
		EarningsDate: &date,
		ClosePrice:   utils.ToPointer(row.ClosePrice),
	}
	priors := []struct {
		days  int
		close *float64
		date  *string
	}{
		{45, row.ClosePrior45d, row.DatePrior45d},
		{30, row.ClosePrior30d, row.DatePrior30d},
		{14, row.ClosePrior14d, row.DatePrior14d},
		{1, row.ClosePrior1d, row.DatePrior1d},
	}
	for _, p := range priors {
		if p.close != nil {
			fields.SetPriorClose(p.days, *p.close)
		}
		if p.date != nil && *p.date != "" {
			d, err := utils.ParseDate(*p.date)
			if err != nil {
				return dto.EarningsFields{}, err
			}
			fields.SetPriorDate(p.days, d)
		}
	}
	return fields, nil
}
