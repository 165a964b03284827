package repository

import (
	"earnings-tracker/config"
	"earnings-tracker/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	EarningsRepo     EarningsRepository
	UserRepo         UserRepository
	YahooFinanceRepo YahooFinanceRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		EarningsRepo:     NewEarningsRepository(db, log),
		UserRepo:         NewUserRepository(db),
		YahooFinanceRepo: NewYahooFinanceRepository(cfg, log),
	}
}
