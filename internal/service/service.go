package service

import (
	"earnings-tracker/config"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/cache"
	"earnings-tracker/pkg/logger"
)

type Service struct {
	EarningsService   EarningsService
	ReportService     ReportService
	AuthService       AuthService
	UserService       UserService
	EnrichmentService EnrichmentService
	ImportService     ImportService
	SchedulerService  SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	signer TokenSigner,
) *Service {
	enrichmentService := NewEnrichmentService(cfg, log, repo.EarningsRepo, repo.YahooFinanceRepo)
	return &Service{
		EarningsService:   NewEarningsService(cfg, log, inmemoryCache, repo.EarningsRepo),
		ReportService:     NewReportService(log, repo.EarningsRepo),
		AuthService:       NewAuthService(cfg, log, repo.UserRepo, signer),
		UserService:       NewUserService(cfg, log, repo.UserRepo),
		EnrichmentService: enrichmentService,
		ImportService:     NewImportService(log, inmemoryCache, repo.EarningsRepo),
		SchedulerService:  NewSchedulerService(cfg, log, enrichmentService),
	}
}
