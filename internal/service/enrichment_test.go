package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"earnings-tracker/internal/dto"
	"earnings-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	assert.Equal(t, "BHP.AX", Symbol("BHP", ".AX"))
	assert.Equal(t, "AIR.NZ", Symbol("AIR.NZ", ".AX"))
	assert.Equal(t, "AAPL", Symbol("AAPL", ""))
}

func TestPriorClose(t *testing.T) {
	target := day(2024, 1, 14)
	tests := []struct {
		name      string
		closes    map[string]float64
		wantPrice *float64
		wantDate  time.Time
	}{
		{name: "exact day", closes: map[string]float64{"2024-01-14": 10.004}, wantPrice: ptr(10.0), wantDate: target},
		{name: "walks back over weekend", closes: map[string]float64{"2024-01-12": 43.216, "2024-01-11": 1}, wantPrice: ptr(43.22), wantDate: day(2024, 1, 12)},
		{name: "six days back", closes: map[string]float64{"2024-01-08": 5}, wantPrice: ptr(5.0), wantDate: day(2024, 1, 8)},
		{name: "seven days back is too far", closes: map[string]float64{"2024-01-07": 5}, wantDate: target},
		{name: "no history", closes: map[string]float64{}, wantDate: target},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, date := PriorClose(tt.closes, target)
			assert.Equal(t, tt.wantPrice, price)
			assert.True(t, tt.wantDate.Equal(date), "got %s", date)
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}

func closes(pairs map[string]float64) []dto.DailyClose {
	out := make([]dto.DailyClose, 0, len(pairs))
	for d, c := range pairs {
		t, _ := time.Parse("2006-01-02", d)
		out = append(out, dto.DailyClose{Date: t, Close: c})
	}
	return out
}

func TestEnrichmentService_Enrich(t *testing.T) {
	repo := newFakeEarningsRepo(
		record(0, "BHP", "2024-01-15", 44),
		record(0, "AIR.NZ", "2024-02-20", 0.7),
		record(0, "CBA", "2024-03-01", 110),
		complete(record(0, "WES", "2024-02-15", 60)),
	)
	yahoo := &fakeYahooRepo{
		history: map[string][]dto.DailyClose{
			"BHP.AX": closes(map[string]float64{
				"2023-12-01": 40.126,
				"2023-12-15": 41,
				"2023-12-29": 42.5551,
				"2024-01-12": 43,
			}),
			"CBA.AX": closes(map[string]float64{"2020-01-02": 80}),
		},
		errs: map[string]error{"AIR.NZ": errors.New("404 not found")},
	}
	svc := NewEnrichmentService(testConfig(), logger.NewNop(), repo, yahoo)
	svc.now = func() time.Time { return day(2024, 6, 1) }

	result, err := svc.Enrich(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stocks)
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, []string{"AIR.NZ"}, result.FailedStocks)

	for _, p := range yahoo.params {
		if p.Symbol == "BHP.AX" {
			assert.True(t, day(2023, 11, 11).Equal(p.From), "history starts 65 days before the earliest date")
			assert.True(t, day(2024, 6, 1).Equal(p.To))
		}
	}

	bhp, _ := repo.FindByStockName(context.Background(), "BHP")
	require.Len(t, bhp, 1)
	wantBHP := map[int]struct {
		price float64
		date  time.Time
	}{
		45: {40.13, day(2023, 12, 1)},
		30: {41, day(2023, 12, 15)},
		14: {42.56, day(2023, 12, 29)},
		1:  {43, day(2024, 1, 12)},
	}
	for _, p := range bhp[0].Priors() {
		want := wantBHP[p.Days]
		if assert.NotNil(t, p.Close, "%dd", p.Days) {
			assert.Equal(t, want.price, *p.Close, "%dd", p.Days)
		}
		if assert.NotNil(t, p.Date) {
			assert.True(t, want.date.Equal(*p.Date), "%dd got %s", p.Days, p.Date)
		}
	}
	assert.False(t, bhp[0].MissingPriorPrice())

	cba, _ := repo.FindByStockName(context.Background(), "CBA")
	require.Len(t, cba, 1)
	for _, p := range cba[0].Priors() {
		assert.Nil(t, p.Close)
		if assert.NotNil(t, p.Date, "date is set even without a price") {
			assert.True(t, day(2024, 3, 1).AddDate(0, 0, -p.Days).Equal(*p.Date))
		}
	}

	air, _ := repo.FindByStockName(context.Background(), "AIR")
	require.Len(t, air, 1)
	assert.Nil(t, air[0].DatePrior45d, "failed stock is untouched")
}

func TestEnrichmentService_NothingMissing(t *testing.T) {
	repo := newFakeEarningsRepo(complete(record(0, "WES", "2024-02-15", 60)))
	yahoo := &fakeYahooRepo{}
	svc := NewEnrichmentService(testConfig(), logger.NewNop(), repo, yahoo)

	result, err := svc.Enrich(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stocks)
	assert.Empty(t, result.FailedStocks)
	assert.Empty(t, yahoo.params)
}
