package handler

import (
	"net/http"
	"strconv"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/middleware"
	"digital-goods-store/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	items := make([]service.CheckoutItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, service.CheckoutItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
		})
	}

	order, err := h.orderService.Checkout(c.Request().Context(), middleware.UserID(c), items)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.OK(order))
}

func (h *OrderHandler) List(c echo.Context) error {
	// Admins see everything; customers see their own orders.
	if middleware.IsAdmin(c) {
		page, limit, err := pagination(c)
		if err != nil {
			return err
		}
		orders, total, err := h.orderService.List(c.Request().Context(), page, limit)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.OK(dto.NewPage(orders, page, limit, total)))
	}

	orders, err := h.orderService.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(orders))
}

func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orderService.Get(c.Request().Context(), c.Param("id"),
		middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(order))
}

func (h *OrderHandler) RevealDelivery(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	view, err := h.orderService.RevealDelivery(c.Request().Context(), c.Param("id"),
		uint(itemID), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(view))
}
