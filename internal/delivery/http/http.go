package http

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/service"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	cfg         *config.Config
	log         *logger.Logger
	echo        *echo.Echo
	validator   *goValidator.Validate
	service     *service.Service
	tokenParser middleware.TokenParser
}

func NewHttpAPIHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	echo *echo.Echo,
	validator *goValidator.Validate,
	service *service.Service,
	tokenParser middleware.TokenParser,
) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:         cfg,
		log:         log,
		echo:        echo,
		validator:   validator,
		service:     service,
		tokenParser: tokenParser,
	}
}

// SetupRoutes registers every route with its guard:
// authenticated for reads and creates, admin for record mutation,
// enrichment and user management.
func (h *HttpAPIHandler) SetupRoutes() {
	authenticated := middleware.Authenticate(h.tokenParser)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	h.echo.GET("/health", h.health)
	h.SetupAuth(h.echo.Group("/auth"))
	h.SetupEarnings(h.echo.Group("/earnings", authenticated), adminOnly)
	h.SetupUsers(h.echo.Group("/users", authenticated, adminOnly))
}
