package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func record(id uint, stock string, date string, price float64) model.Earnings {
	d, _ := utils.ParseDate(date)
	return model.Earnings{ID: id, StockName: stock, EarningsDate: datatypes.Date(d), ClosePrice: price}
}

func complete(e model.Earnings) model.Earnings {
	for _, days := range model.PriorIntervals {
		e.SetPriorClose(days, e.ClosePrice-float64(days))
		e.SetPriorDate(days, e.Date().AddDate(0, 0, -days))
	}
	return e
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestBuildWorkbook_AAPLScenario(t *testing.T) {
	data, err := BuildWorkbook([]model.Earnings{record(1, "AAPL", "2024-01-10", 150)})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{SummarySheet, DataSheet}, f.GetSheetList())
	assert.Equal(t, 0, f.GetActiveSheetIndex())

	assert.Equal(t, "Total Records", raw(t, f, SummarySheet, "A1"))
	assert.Equal(t, "1", raw(t, f, SummarySheet, "B1"))
	assert.Equal(t, "1", raw(t, f, SummarySheet, "B2"))
	assert.Equal(t, "AAPL", raw(t, f, SummarySheet, "A5"))
	assert.Equal(t, "1 out of 1", raw(t, f, SummarySheet, "B5"))
	assert.Equal(t, "1", raw(t, f, SummarySheet, "C5"))

	assert.Equal(t, "Stock", raw(t, f, DataSheet, "A1"))
	assert.Equal(t, "Earnings Price", raw(t, f, DataSheet, "K1"))
	assert.Equal(t, "AAPL", raw(t, f, DataSheet, "A2"))
	assert.Equal(t, "150", raw(t, f, DataSheet, "K2"))

	priceStyle, err := f.GetCellStyle(DataSheet, "K2")
	require.NoError(t, err)
	missingStyle, err := f.GetCellStyle(DataSheet, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, priceStyle, missingStyle)
	for _, cell := range []string{"C2", "E2", "G2", "I2"} {
		style, err := f.GetCellStyle(DataSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, missingStyle, style, cell)
		assert.Empty(t, raw(t, f, DataSheet, cell))
	}

	panes, err := f.GetPanes(DataSheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestBuildWorkbook_DataSortedRegardlessOfInput(t *testing.T) {
	records := []model.Earnings{
		record(1, "MSFT", "2024-01-30", 400),
		record(2, "AAPL", "2024-05-02", 170),
		record(3, "AAPL", "2024-01-10", 150),
		record(4, "BHP", "2024-02-20", 45),
	}
	forward, err := BuildWorkbook(records)
	require.NoError(t, err)
	reversed, err := BuildWorkbook([]model.Earnings{records[3], records[2], records[1], records[0]})
	require.NoError(t, err)

	for _, data := range [][]byte{forward, reversed} {
		f := openWorkbook(t, data)
		rows, err := f.GetRows(DataSheet, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, "AAPL", rows[1][0])
		assert.Equal(t, "150", rows[1][10])
		assert.Equal(t, "AAPL", rows[2][0])
		assert.Equal(t, "170", rows[2][10])
		assert.Equal(t, "BHP", rows[3][0])
		assert.Equal(t, "MSFT", rows[4][0])
	}
}

func TestMissingByStock(t *testing.T) {
	records := []model.Earnings{
		complete(record(1, "CBA", "2024-02-14", 110)),
		record(2, "BHP", "2024-02-20", 45),
		complete(record(3, "BHP", "2023-08-22", 44)),
		record(4, "WES", "2024-02-15", 60),
		record(5, "WES", "2023-08-24", 55),
		record(6, "ANZ", "2024-05-06", 27),
	}
	records[0].ClosePrior1d = nil

	got := MissingByStock(records)
	assert.Equal(t, []StockMissing{
		{StockName: "WES", Missing: 2, Total: 2},
		{StockName: "ANZ", Missing: 1, Total: 1},
		{StockName: "BHP", Missing: 1, Total: 2},
		{StockName: "CBA", Missing: 1, Total: 1},
	}, got)

	// every stock with a gap appears exactly once
	distinct := map[string]bool{}
	for _, r := range records {
		if r.MissingPriorPrice() {
			distinct[r.StockName] = true
		}
	}
	assert.Len(t, got, len(distinct))

	assert.Empty(t, MissingByStock([]model.Earnings{complete(record(1, "CSL", "2024-02-13", 290))}))
}

func TestBuildWorkbook_Empty(t *testing.T) {
	data, err := BuildWorkbook(nil)
	require.NoError(t, err)
	f := openWorkbook(t, data)
	assert.Equal(t, "0", raw(t, f, SummarySheet, "B1"))
	assert.Equal(t, "0", raw(t, f, SummarySheet, "B2"))
}

type failingEarningsRepo struct {
	*fakeEarningsRepo
}

func (failingEarningsRepo) FindAll(context.Context, ...utils.DBOption) ([]model.Earnings, error) {
	return nil, errors.New("connection reset")
}

func TestReportService_ExportExcel(t *testing.T) {
	repo := newFakeEarningsRepo(record(0, "AAPL", "2024-01-10", 150))
	svc := NewReportService(logger.NewNop(), repo)

	data, err := svc.ExportExcel(context.Background())
	require.NoError(t, err)
	f := openWorkbook(t, data)
	assert.Equal(t, "AAPL", raw(t, f, DataSheet, "A2"))

	failing := NewReportService(logger.NewNop(), failingEarningsRepo{repo})
	data, err = failing.ExportExcel(context.Background())
	assert.Error(t, err)
	assert.Nil(t, data)
	assert.False(t, errors.Is(err, dto.ErrExportFailed), "storage errors are not export failures")
}
