package http

import (
	"earnings-tracker/internal/dto"
	"earnings-tracker/pkg/middleware"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAuth(group *echo.Group) {
	limiter := middleware.NewRateLimiterMiddleware(h.cfg.API.LoginRatePerSecond, h.cfg.API.LoginBurst)
	group.POST("/login", h.login, limiter)
}

func (h *HttpAPIHandler) login(c echo.Context) error {
	req := new(dto.LoginRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	token, err := h.service.AuthService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("login successful", dto.LoginResponse{AccessToken: token}))
}
