package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYahooRepo(t *testing.T, handler http.HandlerFunc) YahooFinanceRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{Enrichment: config.Enrichment{
		BaseURL:             srv.URL,
		Timeout:             time.Second,
		MaxRequestPerMinute: 6000,
	}}
	return NewYahooFinanceRepository(cfg, logger.NewNop())
}

func TestYahooFinanceRepository_GetDailyCloses(t *testing.T) {
	// 2024-01-08 and 2024-01-09 market open in Sydney (UTC+11), i.e. the previous day in UTC.
	body := `{"chart":{"result":[{
		"meta":{"symbol":"BHP.AX","exchangeTimezoneName":"Australia/Sydney"},
		"timestamp":[1704668400,1704754800,1704841200],
		"indicators":{"quote":[{"close":[44.5,null,45.25]}]}
	}],"error":null}}`

	repo := newYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/BHP.AX", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1700000000", r.URL.Query().Get("period1"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	got, err := repo.GetDailyCloses(context.Background(), dto.GetStockHistoryParam{
		Symbol: "BHP.AX",
		From:   time.Unix(1700000000, 0),
		To:     time.Unix(1710000000, 0),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, 44.5, got[0].Close)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got[1].Date)
	assert.Equal(t, 45.25, got[1].Close)
}

func TestYahooFinanceRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "non ok status", status: http.StatusNotFound, body: `{}`, wantErr: "status: 404"},
		{name: "api error", status: http.StatusOK, body: `{"chart":{"result":null,"error":{"code":"Not Found"}}}`, wantErr: "yahoo finance api error"},
		{name: "empty result", status: http.StatusOK, body: `{"chart":{"result":[],"error":null}}`, wantErr: "no data returned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := repo.GetDailyCloses(context.Background(), dto.GetStockHistoryParam{Symbol: "X", From: time.Unix(0, 0), To: time.Unix(1, 0)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
