package cmd

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/repository"
	"earnings-tracker/internal/service"
	"earnings-tracker/pkg/cache"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/postgres"
	"earnings-tracker/pkg/token"
	"earnings-tracker/pkg/validation"
	"strings"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	tokens    *token.Manager
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: validation.New(),
		db:        db,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}, nil
}

// newLogger adds the Telegram alert core when a bot token is configured.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.Telegram.BotToken == "" {
		return logger.New(cfg.Log.Level, cfg.Log.Encoding)
	}
	notifier, err := logger.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		return nil, err
	}
	return logger.New(cfg.Log.Level, cfg.Log.Encoding, logger.NewAlertCore(notifier, zapcore.WarnLevel))
}

// WithHTTP prepares the token manager and the echo instance with its global middleware.
func (d *AppDependency) WithHTTP() error {
	tokens, err := token.NewManager(d.cfg.Auth.JWTSecret, d.cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	d.tokens = tokens

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  strings.Split(d.cfg.API.CORSOrigin, ","),
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			d.log.InfoContext(c.Request().Context(), "HTTP request", fields...)
			return nil
		},
	}))
	d.echo = e
	return nil
}

// Services builds the repository and service graph on the shared pool.
func (d *AppDependency) Services() (*repository.Repository, *service.Service) {
	var signer service.TokenSigner
	if d.tokens != nil {
		signer = d.tokens
	}
	repo := repository.NewRepository(d.cfg, d.db.DB, d.log)
	return repo, service.NewService(d.cfg, d.log, repo, d.cache, signer)
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	defer d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
