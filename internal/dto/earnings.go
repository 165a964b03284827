package dto

import (
	"earnings-tracker/internal/model"
	"earnings-tracker/pkg/utils"
	"time"

	"gorm.io/datatypes"
)

type CreateEarningsRequest struct {
	StockName     string   `json:"stockName" validate:"required,max=32"`
	EarningsDate  string   `json:"earningsDate" validate:"required,isodate"`
	ClosePrice    *float64 `json:"closePrice" validate:"required,gte=0"`
	ClosePrior45d *float64 `json:"closePrior45d" validate:"omitempty,gte=0"`
	DatePrior45d  *string  `json:"datePrior45d" validate:"omitempty,isodate"`
	ClosePrior30d *float64 `json:"closePrior30d" validate:"omitempty,gte=0"`
	DatePrior30d  *string  `json:"datePrior30d" validate:"omitempty,isodate"`
	ClosePrior14d *float64 `json:"closePrior14d" validate:"omitempty,gte=0"`
	DatePrior14d  *string  `json:"datePrior14d" validate:"omitempty,isodate"`
	ClosePrior1d  *float64 `json:"closePrior1d" validate:"omitempty,gte=0"`
	DatePrior1d   *string  `json:"datePrior1d" validate:"omitempty,isodate"`
}

// UpdateEarningsRequest is a partial update; nil fields are left untouched.
type UpdateEarningsRequest struct {
	StockName     *string  `json:"stockName" validate:"omitempty,min=1,max=32"`
	EarningsDate  *string  `json:"earningsDate" validate:"omitempty,isodate"`
	ClosePrice    *float64 `json:"closePrice" validate:"omitempty,gte=0"`
	ClosePrior45d *float64 `json:"closePrior45d" validate:"omitempty,gte=0"`
	DatePrior45d  *string  `json:"datePrior45d" validate:"omitempty,isodate"`
	ClosePrior30d *float64 `json:"closePrior30d" validate:"omitempty,gte=0"`
	DatePrior30d  *string  `json:"datePrior30d" validate:"omitempty,isodate"`
	ClosePrior14d *float64 `json:"closePrior14d" validate:"omitempty,gte=0"`
	DatePrior14d  *string  `json:"datePrior14d" validate:"omitempty,isodate"`
	ClosePrior1d  *float64 `json:"closePrior1d" validate:"omitempty,gte=0"`
	DatePrior1d   *string  `json:"datePrior1d" validate:"omitempty,isodate"`
}

type priorInput struct {
	days  int
	close *float64
	date  *string
}

func (r CreateEarningsRequest) priors() []priorInput {
	return []priorInput{
		{45, r.ClosePrior45d, r.DatePrior45d},
		{30, r.ClosePrior30d, r.DatePrior30d},
		{14, r.ClosePrior14d, r.DatePrior14d},
		{1, r.ClosePrior1d, r.DatePrior1d},
	}
}

func (r UpdateEarningsRequest) priors() []priorInput {
	return []priorInput{
		{45, r.ClosePrior45d, r.DatePrior45d},
		{30, r.ClosePrior30d, r.DatePrior30d},
		{14, r.ClosePrior14d, r.DatePrior14d},
		{1, r.ClosePrior1d, r.DatePrior1d},
	}
}

// ToFields converts the request to column assignments. Dates were checked by the
// validator, so a parse failure here is reported as an error rather than ignored.
func (r CreateEarningsRequest) ToFields() (EarningsFields, error) {
	fields := EarningsFields{
		StockName:  utils.ToPointer(r.StockName),
		ClosePrice: r.ClosePrice,
	}
	d, err := utils.ParseDate(r.EarningsDate)
	if err != nil {
		return EarningsFields{}, err
	}
	fields.EarningsDate = &d
	if err := fields.setPriors(r.priors()); err != nil {
		return EarningsFields{}, err
	}
	return fields, nil
}

func (r UpdateEarningsRequest) ToFields() (EarningsFields, error) {
	fields := EarningsFields{
		StockName:  r.StockName,
		ClosePrice: r.ClosePrice,
	}
	if r.EarningsDate != nil {
		d, err := utils.ParseDate(*r.EarningsDate)
		if err != nil {
			return EarningsFields{}, err
		}
		fields.EarningsDate = &d
	}
	if err := fields.setPriors(r.priors()); err != nil {
		return EarningsFields{}, err
	}
	return fields, nil
}

// EarningsFields is the set of assignable columns shared by create, update and import.
type EarningsFields struct {
	StockName    *string
	EarningsDate *time.Time
	ClosePrice   *float64
	PriorClose   map[int]float64
	PriorDate    map[int]time.Time
}

func (f *EarningsFields) setPriors(inputs []priorInput) error {
	for _, in := range inputs {
		if in.close != nil {
			f.SetPriorClose(in.days, *in.close)
		}
		if in.date != nil {
			d, err := utils.ParseDate(*in.date)
			if err != nil {
				return err
			}
			f.SetPriorDate(in.days, d)
		}
	}
	return nil
}

func (f *EarningsFields) SetPriorClose(days int, price float64) {
	if f.PriorClose == nil {
		f.PriorClose = map[int]float64{}
	}
	f.PriorClose[days] = price
}

func (f *EarningsFields) SetPriorDate(days int, date time.Time) {
	if f.PriorDate == nil {
		f.PriorDate = map[int]time.Time{}
	}
	f.PriorDate[days] = date
}

// Columns maps the provided fields to column names for a partial update.
func (f EarningsFields) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if f.StockName != nil {
		cols["stock_name"] = *f.StockName
	}
	if f.EarningsDate != nil {
		cols["earnings_date"] = *f.EarningsDate
	}
	if f.ClosePrice != nil {
		cols["close_price"] = *f.ClosePrice
	}
	for days, price := range f.PriorClose {
		cols[model.PriorCloseColumn(days)] = price
	}
	for days, date := range f.PriorDate {
		cols[model.PriorDateColumn(days)] = date
	}
	return cols
}

// Apply copies the provided fields onto e.
func (f EarningsFields) Apply(e *model.Earnings) {
	if f.StockName != nil {
		e.StockName = *f.StockName
	}
	if f.EarningsDate != nil {
		e.EarningsDate = datatypes.Date(*f.EarningsDate)
	}
	if f.ClosePrice != nil {
		e.ClosePrice = *f.ClosePrice
	}
	for days, price := range f.PriorClose {
		e.SetPriorClose(days, price)
	}
	for days, date := range f.PriorDate {
		e.SetPriorDate(days, date)
	}
}

type EarningsResponse struct {
	ID            uint      `json:"id"`
	StockName     string    `json:"stockName"`
	EarningsDate  string    `json:"earningsDate"`
	ClosePrice    float64   `json:"closePrice"`
	ClosePrior45d *float64  `json:"closePrior45d"`
	DatePrior45d  *string   `json:"datePrior45d"`
	ClosePrior30d *float64  `json:"closePrior30d"`
	DatePrior30d  *string   `json:"datePrior30d"`
	ClosePrior14d *float64  `json:"closePrior14d"`
	DatePrior14d  *string   `json:"datePrior14d"`
	ClosePrior1d  *float64  `json:"closePrior1d"`
	DatePrior1d   *string   `json:"datePrior1d"`
	UserID        *uint     `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return utils.ToPointer(utils.FormatDate(*t))
}

func NewEarningsResponse(e model.Earnings) EarningsResponse {
	p := e.Priors()
	return EarningsResponse{
		ID:            e.ID,
		StockName:     e.StockName,
		EarningsDate:  utils.FormatDate(e.Date()),
		ClosePrice:    e.ClosePrice,
		ClosePrior45d: p[0].Close,
		DatePrior45d:  formatOptionalDate(p[0].Date),
		ClosePrior30d: p[1].Close,
		DatePrior30d:  formatOptionalDate(p[1].Date),
		ClosePrior14d: p[2].Close,
		DatePrior14d:  formatOptionalDate(p[2].Date),
		ClosePrior1d:  p[3].Close,
		DatePrior1d:   formatOptionalDate(p[3].Date),
		UserID:        e.UserID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func NewEarningsResponses(records []model.Earnings) []EarningsResponse {
	out := make([]EarningsResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewEarningsResponse(r))
	}
	return out
}

type StockCountResponse struct {
	Count int64 `json:"count"`
}

// EnrichmentResult summarises one enrichment run.
type EnrichmentResult struct {
	Stocks       int      `json:"stocks"`
	Records      int      `json:"records"`
	Updated      int      `json:"updated"`
	FailedStocks []string `json:"failedStocks"`
}

// ImportResult summarises one legacy import run.
type ImportResult struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}
