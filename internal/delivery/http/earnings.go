package http

import (
	"earnings-tracker/internal/dto"
	"earnings-tracker/pkg/middleware"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sqliteContentType = "application/vnd.sqlite3"
)

func (h *HttpAPIHandler) SetupEarnings(group *echo.Group, adminOnly echo.MiddlewareFunc) {
	group.POST("", h.createEarnings)
	group.GET("", h.listEarnings)
	group.GET("/stock-count", h.stockCount)
	group.GET("/export/excel", h.exportExcel)
	group.GET("/export/sqlite", h.exportSQLite)
	group.GET("/stock/:name", h.findByStockName)
	group.PUT("/:id", h.updateEarnings, adminOnly)
	group.DELETE("/:id", h.deleteEarnings, adminOnly)
	group.POST("/enrich", h.enrich, adminOnly)
}

func (h *HttpAPIHandler) createEarnings(c echo.Context) error {
	req := new(dto.CreateEarningsRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	var creatorID *uint
	if claims, err := middleware.GetClaims(c); err == nil {
		if id, err := claims.UserID(); err == nil {
			creatorID = &id
		}
	}

	record, err := h.service.EarningsService.Create(c.Request().Context(), *req, creatorID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "record created", dto.NewEarningsResponse(*record)))
}

func (h *HttpAPIHandler) listEarnings(c echo.Context) error {
	records, err := h.service.EarningsService.FindAll(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", dto.NewEarningsResponses(records)))
}

func (h *HttpAPIHandler) stockCount(c echo.Context) error {
	count, err := h.service.EarningsService.StockCount(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", dto.StockCountResponse{Count: count}))
}

func (h *HttpAPIHandler) findByStockName(c echo.Context) error {
	records, err := h.service.EarningsService.FindByStockName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", dto.NewEarningsResponses(records)))
}

func (h *HttpAPIHandler) updateEarnings(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidIDResponse(c)
	}
	req := new(dto.UpdateEarningsRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	if err := h.service.EarningsService.Update(c.Request().Context(), id, *req); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Record updated successfully", nil))
}

func (h *HttpAPIHandler) deleteEarnings(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidIDResponse(c)
	}
	if err := h.service.EarningsService.Delete(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Record deleted successfully", nil))
}

func (h *HttpAPIHandler) exportExcel(c echo.Context) error {
	data, err := h.service.ReportService.ExportExcel(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=earnings.xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (h *HttpAPIHandler) exportSQLite(c echo.Context) error {
	data, err := h.service.ReportService.ExportSQLite(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=earnings.db")
	return c.Blob(http.StatusOK, sqliteContentType, data)
}

func (h *HttpAPIHandler) enrich(c echo.Context) error {
	result, err := h.service.EnrichmentService.Enrich(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("enrichment finished", result))
}
