package http

import (
	"earnings-tracker/internal/dto"
	"earnings-tracker/pkg/logger"
	"earnings-tracker/pkg/validation"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// bindAndValidate returns a 400 response when the body cannot be decoded or
// fails validation, nil otherwise.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			return dto.NewBaseResponse(http.StatusBadRequest, "validation failed", fields)
		}
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidIDResponse(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid id"))
}

// errorResponse maps service errors to status codes. Unknown errors are
// logged and reported as 500 without detail.
func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	var response *dto.BaseResponse
	switch {
	case errors.Is(err, dto.ErrNotFound):
		response = dto.NewBaseResponse(http.StatusNotFound, "record not found", nil)
	case errors.Is(err, dto.ErrConflict):
		response = dto.NewBaseResponse(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, dto.ErrUnauthorized):
		response = dto.NewBaseResponse(http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, dto.ErrForbidden):
		response = dto.NewBaseResponse(http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, dto.ErrExportFailed):
		response = dto.NewBaseResponse(http.StatusInternalServerError, "export failed", nil)
	default:
		h.log.ErrorContext(c.Request().Context(), "Request failed",
			logger.StringField("path", c.Path()),
			logger.ErrorField(err),
		)
		response = dto.NewBaseResponse(http.StatusInternalServerError, "internal server error", nil)
	}
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
}
