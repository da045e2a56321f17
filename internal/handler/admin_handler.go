package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/milanhq/milan/internal/dto"
	"github.com/milanhq/milan/internal/middleware"
	"github.com/milanhq/milan/internal/service"
)

type AdminHandler struct {
	reviews service.ReviewService
	events  service.EventService
	sweeps  service.SweepService
}

func NewAdminHandler(reviews service.ReviewService, events service.EventService, sweeps service.SweepService) *AdminHandler {
	return &AdminHandler{reviews: reviews, events: events, sweeps: sweeps}
}

func (h *AdminHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/events/pending", h.ListPending)
	admin.POST("/events/:id/approve", h.ApproveEvent)
	admin.POST("/events/:id/reject", h.RejectEvent)
	admin.GET("/cron-logs", h.ListCronLogs)
}

func (h *AdminHandler) ListPending(c echo.Context) error {
	events, err := h.events.ListPending(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]dto.HostEventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToHostEventResponse(&e)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ApproveEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.reviews.Approve(c.Request().Context(), middleware.CurrentProfile(c), id)
	if err != nil {
		return mapReviewError(err)
	}
	return c.JSON(http.StatusOK, dto.ToHostEventResponse(event))
}

func (h *AdminHandler) RejectEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var req dto.RejectEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.reviews.Reject(c.Request().Context(), middleware.CurrentProfile(c), id, req.Reason)
	if err != nil {
		return mapReviewError(err)
	}
	return c.JSON(http.StatusOK, dto.ToHostEventResponse(event))
}

func (h *AdminHandler) ListCronLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, err := h.sweeps.RecentLogs(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

func mapReviewError(err error) error {
	var conflict *service.StatusConflictError
	switch {
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	case errors.Is(err, service.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAdmin):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrReasonTooShort):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
