package service

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/utils"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	historyLookbackDays = 65
	tradingDayWalkBack  = 7
)

type EnrichmentService interface {
	Enrich(ctx context.Context) (*dto.EnrichmentResult, error)
}

type enrichmentService struct {
	cfg          *config.Config
	log          *logger.Logger
	earningsRepo repository.EarningsRepository
	yahooRepo    repository.YahooFinanceRepository
	now          func() time.Time
	running      sync.Mutex
}

func NewEnrichmentService(
	cfg *config.Config,
	log *logger.Logger,
	earningsRepo repository.EarningsRepository,
	yahooRepo repository.YahooFinanceRepository,
) *enrichmentService {
	return &enrichmentService{
		cfg:          cfg,
		log:          log,
		earningsRepo: earningsRepo,
		yahooRepo:    yahooRepo,
		now:          time.Now,
	}
}

// Symbol maps a stored stock name to a Yahoo ticker. Names that already carry
// an exchange suffix are used as is.
func Symbol(stockName, suffix string) string {
	if strings.Contains(stockName, ".") {
		return stockName
	}
	return stockName + suffix
}

// PriorClose finds the close on target or on one of the preceding trading days.
// The returned date is the trading day found, or target when none is.
func PriorClose(closes map[string]float64, target time.Time) (*float64, time.Time) {
	for i := 0; i < tradingDayWalkBack; i++ {
		day := target.AddDate(0, 0, -i)
		if price, ok := closes[utils.FormatDate(day)]; ok {
			return utils.ToPointer(utils.RoundTo(price, 2)), day
		}
	}
	return nil, target
}

// SnapshotFields computes every prior snapshot for one record. A date is
// always set; a price only when a trading day was found.
func SnapshotFields(record model.Earnings, closes map[string]float64) dto.EarningsFields {
	var fields dto.EarningsFields
	for _, days := range model.PriorIntervals {
		target := record.Date().AddDate(0, 0, -days)
		price, date := PriorClose(closes, target)
		if price != nil {
			fields.SetPriorClose(days, *price)
		}
		fields.SetPriorDate(days, date)
	}
	return fields
}

// Enrich fills prior snapshots for every record that still misses a price.
// Only one run is active at a time; a failing stock is reported, not fatal.
func (s *enrichmentService) Enrich(ctx context.Context) (*dto.EnrichmentResult, error) {
	if !s.running.TryLock() {
		return nil, fmt.Errorf("%w: enrichment already running", dto.ErrConflict)
	}
	defer s.running.Unlock()

	records, err := s.earningsRepo.FindMissingSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	byStock := map[string][]model.Earnings{}
	for _, r := range records {
		byStock[r.StockName] = append(byStock[r.StockName], r)
	}
	stocks := make([]string, 0, len(byStock))
	for name := range byStock {
		stocks = append(stocks, name)
	}
	sort.Strings(stocks)

	result := &dto.EnrichmentResult{
		Stocks:       len(stocks),
		Records:      len(records),
		FailedStocks: []string{},
	}
	s.log.InfoContext(ctx, "Start enrichment",
		logger.IntField("stocks", len(stocks)),
		logger.IntField("records", len(records)),
	)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	limit := s.cfg.Enrichment.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, stock := range stocks {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		stock := stock
		g.Go(func() error {
			updated, err := s.enrichStock(ctx, stock, byStock[stock])
			mu.Lock()
			defer mu.Unlock()
			result.Updated += updated
			if err != nil {
				s.log.ErrorContext(ctx, "Failed to enrich stock", logger.StringField("stock_name", stock), logger.ErrorField(err))
				result.FailedStocks = append(result.FailedStocks, stock)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.FailedStocks)
	if len(result.FailedStocks) > 0 {
		s.log.WarnContext(ctx, "Enrichment finished with failures",
			logger.Field("failed_stocks", result.FailedStocks),
			logger.IntField("updated", result.Updated),
			logger.AlertField(),
		)
	} else {
		s.log.InfoContext(ctx, "Enrichment finished", logger.IntField("updated", result.Updated))
	}
	return result, ctx.Err()
}

func (s *enrichmentService) enrichStock(ctx context.Context, stock string, records []model.Earnings) (int, error) {
	earliest := records[0].Date()
	for _, r := range records[1:] {
		if r.Date().Before(earliest) {
			earliest = r.Date()
		}
	}

	symbol := Symbol(stock, s.cfg.Enrichment.SymbolSuffix)
	history, err := s.yahooRepo.GetDailyCloses(ctx, dto.GetStockHistoryParam{
		Symbol: symbol,
		From:   earliest.AddDate(0, 0, -historyLookbackDays),
		To:     s.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}
	if len(history) == 0 {
		s.log.WarnContext(ctx, "No price history returned", logger.StringField("symbol", symbol))
		return 0, nil
	}

	closes := make(map[string]float64, len(history))
	for _, h := range history {
		closes[utils.FormatDate(h.Date)] = h.Close
	}

	updated := 0
	for _, r := range records {
		if err := s.earningsRepo.Update(ctx, r.ID, SnapshotFields(r, closes)); err != nil {
			return updated, fmt.Errorf("failed to update earnings %d: %w", r.ID, err)
		}
		updated++
	}
	s.log.DebugContext(ctx, "Stock enriched", logger.StringField("symbol", symbol), logger.IntField("records", updated))
	return updated, nil
}
