package repository

import (
	"context"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/utils"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type EarningsRepository interface {
	Create(ctx context.Context, earnings *model.Earnings) error
	FindAll(ctx context.Context, opts ...utils.DBOption) ([]model.Earnings, error)
	FindByID(ctx context.Context, id uint) (*model.Earnings, error)
	FindByStockName(ctx context.Context, substring string) ([]model.Earnings, error)
	FindMissingSnapshots(ctx context.Context) ([]model.Earnings, error)
	Update(ctx context.Context, id uint, fields dto.EarningsFields) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, stockName string, earningsDate time.Time) (bool, error)
	UpdateByStockAndDate(ctx context.Context, stockName string, earningsDate time.Time, fields dto.EarningsFields) error
	StockCount(ctx context.Context) (int64, error)
}

type earningsRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEarningsRepository(db *gorm.DB, log *logger.Logger) EarningsRepository {
	return &earningsRepository{db: db, log: log}
}

func (r *earningsRepository) Create(ctx context.Context, earnings *model.Earnings) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(earnings).Error; err != nil {
		return fmt.Errorf("failed to create earnings: %w", err)
	}
	return nil
}

// FindAll returns records newest first unless an option overrides the order.
func (r *earningsRepository) FindAll(ctx context.Context, opts ...utils.DBOption) ([]model.Earnings, error) {
	var records []model.Earnings
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}
	return records, nil
}

// FindByID returns nil, nil when no record matches.
func (r *earningsRepository) FindByID(ctx context.Context, id uint) (*model.Earnings, error) {
	var record model.Earnings
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find earnings %d: %w", id, result.Error)
	}
	return &record, nil
}

func (r *earningsRepository) FindByStockName(ctx context.Context, substring string) ([]model.Earnings, error) {
	var records []model.Earnings
	pattern := "%" + utils.EscapeLike(substring) + "%"
	if err := r.db.WithContext(ctx).Where(`stock_name LIKE ? ESCAPE '\'`, pattern).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to search earnings: %w", err)
	}
	return records, nil
}

func (r *earningsRepository) FindMissingSnapshots(ctx context.Context) ([]model.Earnings, error) {
	conds := make([]string, 0, len(model.PriorIntervals))
	for _, days := range model.PriorIntervals {
		conds = append(conds, model.PriorCloseColumn(days)+" IS NULL")
	}
	return r.FindAll(ctx, utils.WithWhere(strings.Join(conds, " OR ")))
}

func (r *earningsRepository) Update(ctx context.Context, id uint, fields dto.EarningsFields) error {
	result := r.db.WithContext(ctx).Model(&model.Earnings{}).Where("id = ?", id).Updates(fields.Columns())
	if result.Error != nil {
		return fmt.Errorf("failed to update earnings %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return dto.ErrNotFound
	}
	return nil
}

func (r *earningsRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Earnings{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete earnings %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return dto.ErrNotFound
	}
	return nil
}

func (r *earningsRepository) Exists(ctx context.Context, stockName string, earningsDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Earnings{}).
		Where("stock_name = ? AND earnings_date = ?", stockName, utils.TruncateDate(earningsDate)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check earnings existence: %w", err)
	}
	return count > 0, nil
}

// UpdateByStockAndDate only touches price and snapshot columns. A missing row is
// logged, not returned as an error.
func (r *earningsRepository) UpdateByStockAndDate(ctx context.Context, stockName string, earningsDate time.Time, fields dto.EarningsFields) error {
	fields.StockName = nil
	fields.EarningsDate = nil

	result := r.db.WithContext(ctx).Model(&model.Earnings{}).
		Where("stock_name = ? AND earnings_date = ?", stockName, utils.TruncateDate(earningsDate)).
		Updates(fields.Columns())
	if result.Error != nil {
		return fmt.Errorf("failed to update earnings %s %s: %w", stockName, utils.FormatDate(earningsDate), result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.WarnContext(ctx, "No earnings matched natural key",
			logger.StringField("stock_name", stockName),
			logger.StringField("earnings_date", utils.FormatDate(earningsDate)),
		)
	}
	return nil
}

func (r *earningsRepository) StockCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Earnings{}).Distinct("stock_name").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count stocks: %w", err)
	}
	return count, nil
}
