package service

import (
	"context"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/sqlite"
	"earnings-tracker/pkg/utils"
	"fmt"
	"os"
	"time"
)

// ToSQLiteRow converts a record to the portable SQLite shape with text dates.
func ToSQLiteRow(e model.Earnings) repository.SQLiteEarningsRow {
	row := repository.SQLiteEarningsRow{
		ID:           e.ID,
		StockName:    e.StockName,
		EarningsDate: utils.FormatDate(e.Date()),
		ClosePrice:   e.ClosePrice,
		Created:      utils.ToPointer(e.CreatedAt.UTC().Format(time.RFC3339)),
		Updated:      utils.ToPointer(e.UpdatedAt.UTC().Format(time.RFC3339)),
	}
	for _, p := range e.Priors() {
		var date *string
		if p.Date != nil {
			date = utils.ToPointer(utils.FormatDate(*p.Date))
		}
		switch p.Days {
		case 45:
			row.ClosePrior45d, row.DatePrior45d = p.Close, date
		case 30:
			row.ClosePrior30d, row.DatePrior30d = p.Close, date
		case 14:
			row.ClosePrior14d, row.DatePrior14d = p.Close, date
		case 1:
			row.ClosePrior1d, row.DatePrior1d = p.Close, date
		}
	}
	return row
}

// BuildSQLite writes records into a fresh SQLite file and returns its bytes.
// The temporary file is always removed.
func BuildSQLite(ctx context.Context, records []model.Earnings) ([]byte, error) {
	tmp, err := os.CreateTemp("", "earnings-export-*.db")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	defer os.Remove(path)
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}

	rows := make([]repository.SQLiteEarningsRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ToSQLiteRow(r))
	}

	repo := repository.NewSQLiteEarningsRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = sqlite.Close(db)
		return nil, err
	}
	if err := repo.InsertAll(ctx, rows); err != nil {
		_ = sqlite.Close(db)
		return nil, err
	}
	if err := sqlite.Close(db); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}

func (s *reportService) ExportSQLite(ctx context.Context) ([]byte, error) {
	records, err := s.earningsRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	data, err := BuildSQLite(ctx, records)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to build sqlite export", logger.ErrorField(err), logger.IntField("records", len(records)), logger.AlertField())
		return nil, fmt.Errorf("%w: %v", dto.ErrExportFailed, err)
	}

	s.log.InfoContext(ctx, "Earnings sqlite exported", logger.IntField("records", len(records)), logger.IntField("bytes", len(data)))
	return data, nil
}
