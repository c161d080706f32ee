package handler

import (
	"net/http"
	"time"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/service"

	"github.com/labstack/echo/v4"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) Track(c echo.Context) error {
	var req dto.TrackEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	event := &model.AnalyticsEvent{
		EventType: req.EventType,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Metadata:  req.Metadata,
	}
	if err := h.analyticsService.Track(c.Request().Context(), event); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.OK(event))
}

func (h *AnalyticsHandler) Summary(c echo.Context) error {
	var from, to time.Time
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		from = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		to = t
	}

	summary, err := h.analyticsService.Summary(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(summary))
}
