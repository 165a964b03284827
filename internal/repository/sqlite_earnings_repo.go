package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SQLiteEarningsRow is one row of the portable camelCase earnings table used
// by the SQLite export and by legacy data files. Dates are stored as text;
// older files hold either YYYY-MM-DD or ISO timestamps.
type SQLiteEarningsRow struct {
	ID            uint     `gorm:"column:id;primaryKey"`
	StockName     string   `gorm:"column:stockName"`
	EarningsDate  string   `gorm:"column:earningsDate"`
	ClosePrice    float64  `gorm:"column:closePrice"`
	ClosePrior45d *float64 `gorm:"column:closePrior45d"`
	DatePrior45d  *string  `gorm:"column:datePrior45d"`
	ClosePrior30d *float64 `gorm:"column:closePrior30d"`
	DatePrior30d  *string  `gorm:"column:datePrior30d"`
	ClosePrior14d *float64 `gorm:"column:closePrior14d"`
	DatePrior14d  *string  `gorm:"column:datePrior14d"`
	ClosePrior1d  *float64 `gorm:"column:closePrior1d"`
	DatePrior1d   *string  `gorm:"column:datePrior1d"`
	Created       *string  `gorm:"column:createdAt"`
	Updated       *string  `gorm:"column:updatedAt"`
}

func (SQLiteEarningsRow) TableName() string {
	return "earnings"
}

type SQLiteEarningsRepository interface {
	Migrate(ctx context.Context) error
	InsertAll(ctx context.Context, rows []SQLiteEarningsRow) error
	ReadAll(ctx context.Context) ([]SQLiteEarningsRow, error)
}

type sqliteEarningsRepository struct {
	db *gorm.DB
}

func NewSQLiteEarningsRepository(db *gorm.DB) SQLiteEarningsRepository {
	return &sqliteEarningsRepository{db: db}
}

func (r *sqliteEarningsRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&SQLiteEarningsRow{}); err != nil {
		return fmt.Errorf("failed to create sqlite earnings table: %w", err)
	}
	return nil
}

func (r *sqliteEarningsRepository) InsertAll(ctx context.Context, rows []SQLiteEarningsRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("failed to write sqlite earnings: %w", err)
	}
	return nil
}

// ReadAll selects every column so files created before the snapshot columns
// existed still load; missing columns stay nil.
func (r *sqliteEarningsRepository) ReadAll(ctx context.Context) ([]SQLiteEarningsRow, error) {
	var rows []SQLiteEarningsRow
	if err := r.db.WithContext(ctx).Raw("SELECT * FROM earnings ORDER BY id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read sqlite earnings: %w", err)
	}
	return rows, nil
}
