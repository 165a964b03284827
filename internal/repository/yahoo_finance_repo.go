package repository

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/pkg/httpclient"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/utils"
	"fmt"
	"net/http"
	"net/url"
	"time"
	_ "time/tzdata"

	"golang.org/x/time/rate"
)

type YahooFinanceRepository interface {
	GetDailyCloses(ctx context.Context, param dto.GetStockHistoryParam) ([]dto.DailyClose, error)
}

type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	perMinute := cfg.Enrichment.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)

	return &yahooFinanceRepository{
		httpClient:     httpclient.New(cfg.Enrichment.BaseURL, cfg.Enrichment.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

// GetDailyCloses returns daily closes between From and To, oldest first, dated in
// the exchange's own timezone. Days without a close are dropped.
func (r *yahooFinanceRepository) GetDailyCloses(ctx context.Context, param dto.GetStockHistoryParam) ([]dto.DailyClose, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", param.From.Unix()),
		"period2":        fmt.Sprintf("%d", param.To.Unix()),
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+url.PathEscape(param.Symbol), queryParams, headers, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("symbol", param.Symbol),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}

	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %v", yahooResp.Chart.Error)
	}

	if len(yahooResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", param.Symbol)
	}

	result := yahooResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", param.Symbol)
	}

	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	closes := result.Indicators.Quote[0].Close
	out := make([]dto.DailyClose, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] == 0 {
			continue
		}
		out = append(out, dto.DailyClose{
			Date:  utils.TruncateDate(time.Unix(ts, 0).In(loc)),
			Close: *closes[i],
		})
	}

	return out, nil
}
