package service

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/pkg/logger"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const scheduledEnrichmentTimeout = 30 * time.Minute

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
}

type schedulerService struct {
	cfg        *config.Config
	log        *logger.Logger
	cron       *cron.Cron
	cronParser cron.Parser
	enrichment EnrichmentService
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, enrichment EnrichmentService) *schedulerService {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &schedulerService{
		cfg:        cfg,
		log:        log,
		cron:       cron.New(cron.WithParser(parser)),
		cronParser: parser,
		enrichment: enrichment,
	}
}

// Start registers the enrichment job when enrichment.schedule is set. An empty
// schedule disables scheduled runs.
func (s *schedulerService) Start(ctx context.Context) error {
	expr := s.cfg.Enrichment.Schedule
	if expr == "" {
		s.log.InfoContext(ctx, "Scheduled enrichment disabled")
		return nil
	}

	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid enrichment schedule %q: %w", expr, err)
	}

	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.run(ctx)
	}))
	s.cron.Start()

	s.log.InfoContext(ctx, "Scheduled enrichment started",
		logger.StringField("schedule", expr),
		logger.StringField("next_run", schedule.Next(time.Now()).Format(time.RFC3339)),
	)
	return nil
}

func (s *schedulerService) run(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, scheduledEnrichmentTimeout)
	defer cancel()

	result, err := s.enrichment.Enrich(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Scheduled enrichment failed", logger.ErrorField(err), logger.AlertField())
		return
	}
	s.log.InfoContext(ctx, "Scheduled enrichment completed",
		logger.IntField("stocks", result.Stocks),
		logger.IntField("updated", result.Updated),
		logger.IntField("failed", len(result.FailedStocks)),
	)
}

// Stop waits for a running job until ctx expires.
func (s *schedulerService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Timeout while stopping scheduler")
	}
}
