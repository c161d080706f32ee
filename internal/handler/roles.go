package handler

import (
	"net/http"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/service"

	"github.com/labstack/echo/v4"
)

type RolesHandler struct {
	userService service.UserService
}

func NewRolesHandler(userService service.UserService) *RolesHandler {
	return &RolesHandler{userService: userService}
}

func (h *RolesHandler) ListUsers(c echo.Context) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}

	users, total, err := h.userService.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.NewPage(users, page, limit, total)))
}

func (h *RolesHandler) UpdateRole(c echo.Context) error {
	var req dto.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.userService.UpdateRole(c.Request().Context(), c.Param("id"),
		model.Role(req.Role), req.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(user))
}
