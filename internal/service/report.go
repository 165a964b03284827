package service

import (
	"context"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/logger"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	DataSheet    = "Data"

	dateNumFmt     = "dd/mm/yyyy"
	priceNumFmt    = "$#,##0.00"
	missingFillHex = "FFC7CE"
)

var dataHeader = []string{
	"Stock",
	"45d Date", "45d Price",
	"30d Date", "30d Price",
	"14d Date", "14d Price",
	"1d Date", "1d Price",
	"Earnings Date", "Earnings Price",
}

// StockMissing is one Summary row: how many of a stock's records lack a prior price.
type StockMissing struct {
	StockName string
	Missing   int
	Total     int
}

// MissingByStock lists stocks with at least one record missing a prior price,
// most gaps first, ties by name.
func MissingByStock(records []model.Earnings) []StockMissing {
	index := map[string]*StockMissing{}
	for _, r := range records {
		m, ok := index[r.StockName]
		if !ok {
			m = &StockMissing{StockName: r.StockName}
			index[r.StockName] = m
		}
		m.Total++
		if r.MissingPriorPrice() {
			m.Missing++
		}
	}

	out := make([]StockMissing, 0, len(index))
	for _, m := range index {
		if m.Missing > 0 {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Missing != out[j].Missing {
			return out[i].Missing > out[j].Missing
		}
		return out[i].StockName < out[j].StockName
	})
	return out
}

// SortForReport orders records by stock name, then earnings date, then id.
func SortForReport(records []model.Earnings) []model.Earnings {
	sorted := append([]model.Earnings(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.StockName != b.StockName {
			return a.StockName < b.StockName
		}
		if !a.Date().Equal(b.Date()) {
			return a.Date().Before(b.Date())
		}
		return a.ID < b.ID
	})
	return sorted
}

type reportStyles struct {
	bold    int
	date    int
	price   int
	missing int
}

func newReportStyles(f *excelize.File) (*reportStyles, error) {
	dateFmt, priceFmt := dateNumFmt, priceNumFmt
	var (
		s   reportStyles
		err error
	)
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return nil, err
	}
	if s.price, err = f.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt}); err != nil {
		return nil, err
	}
	s.missing, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &priceFmt,
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{missingFillHex}},
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BuildWorkbook renders the Summary and Data sheets for records. The output
// depends only on the record set, not on its order.
func BuildWorkbook(records []model.Earnings) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newReportStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DataSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	if err := writeSummarySheet(f, styles, records); err != nil {
		return nil, err
	}
	if err := writeDataSheet(f, styles, SortForReport(records)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, styles *reportStyles, records []model.Earnings) error {
	missing := MissingByStock(records)

	rows := [][]interface{}{
		{"Total Records", len(records)},
		{"Stocks with Missing Data", len(missing)},
		{},
		{"Stock", "Missing Records", "Missing Count"},
	}
	for _, m := range missing {
		rows = append(rows, []interface{}{m.StockName, fmt.Sprintf("%d out of %d", m.Missing, m.Total), m.Missing})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(SummarySheet, "A1", "A2", styles.bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A4", "C4", styles.bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "C", 26)
}

func writeDataSheet(f *excelize.File, styles *reportStyles, records []model.Earnings) error {
	header := make([]interface{}, len(dataHeader))
	for i, h := range dataHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(DataSheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(dataHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(DataSheet, "A1", lastCol+"1", styles.bold); err != nil {
		return err
	}

	for i, r := range records {
		row := i + 2
		if err := setCell(f, DataSheet, 1, row, r.StockName, 0); err != nil {
			return err
		}

		col := 2
		for _, p := range r.Priors() {
			if p.Date != nil {
				if err := setCell(f, DataSheet, col, row, *p.Date, styles.date); err != nil {
					return err
				}
			}
			if p.Close != nil {
				if err := setCell(f, DataSheet, col+1, row, *p.Close, styles.price); err != nil {
					return err
				}
			} else if err := setCell(f, DataSheet, col+1, row, nil, styles.missing); err != nil {
				return err
			}
			col += 2
		}

		if err := setCell(f, DataSheet, col, row, r.Date(), styles.date); err != nil {
			return err
		}
		if err := setCell(f, DataSheet, col+1, row, r.ClosePrice, styles.price); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(DataSheet, "A", lastCol, 14); err != nil {
		return err
	}
	return f.SetPanes(DataSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if value != nil {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	if style == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

type ReportService interface {
	ExportExcel(ctx context.Context) ([]byte, error)
	ExportSQLite(ctx context.Context) ([]byte, error)
}

type reportService struct {
	log          *logger.Logger
	earningsRepo repository.EarningsRepository
}

func NewReportService(log *logger.Logger, earningsRepo repository.EarningsRepository) *reportService {
	return &reportService{
		log:          log,
		earningsRepo: earningsRepo,
	}
}

func (s *reportService) ExportExcel(ctx context.Context) ([]byte, error) {
	records, err := s.earningsRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	data, err := BuildWorkbook(records)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to build earnings workbook", logger.ErrorField(err), logger.IntField("records", len(records)), logger.AlertField())
		return nil, fmt.Errorf("%w: %v", dto.ErrExportFailed, err)
	}

	s.log.InfoContext(ctx, "Earnings workbook exported", logger.IntField("records", len(records)), logger.IntField("bytes", len(data)))
	return data, nil
}
