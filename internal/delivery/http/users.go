package http

import (
	"earnings-tracker/internal/dto"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupUsers(group *echo.Group) {
	group.GET("", h.listUsers)
	group.POST("", h.createUser)
	group.PATCH("/:id", h.updateUser)
	group.DELETE("/:id", h.deleteUser)
}

func (h *HttpAPIHandler) listUsers(c echo.Context) error {
	users, err := h.service.UserService.FindAll(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", dto.NewUserResponses(users)))
}

func (h *HttpAPIHandler) createUser(c echo.Context) error {
	req := new(dto.CreateUserRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	user, err := h.service.UserService.Create(c.Request().Context(), *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "user created", dto.NewUserResponse(*user)))
}

func (h *HttpAPIHandler) updateUser(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidIDResponse(c)
	}
	req := new(dto.UpdateUserRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	user, err := h.service.UserService.Update(c.Request().Context(), id, *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("user updated", dto.NewUserResponse(*user)))
}

func (h *HttpAPIHandler) deleteUser(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidIDResponse(c)
	}
	if err := h.service.UserService.Delete(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("User deleted successfully", nil))
}
