package dto

import "time"

// DailyClose is one trading day's close, dated in the exchange's calendar.
type DailyClose struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

type GetStockHistoryParam struct {
	Symbol string
	From   time.Time
	To     time.Time
}

// Yahoo Finance API Response
type YahooFinanceResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}
