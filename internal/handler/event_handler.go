package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/milanhq/milan/internal/dto"
	"github.com/milanhq/milan/internal/middleware"
	"github.com/milanhq/milan/internal/service"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(public *echo.Group, authed *echo.Group) {
	public.GET("/events", h.ListEvents)
	public.GET("/events/:id", h.GetEvent)

	authed.POST("/events", h.CreateEvent)
	authed.GET("/me/events", h.ListMyEvents)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	host := middleware.CurrentProfile(c)

	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), host, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEvent):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPriceNotAllowed):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrQuotaExceeded):
			return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
		case errors.Is(err, service.ErrDuplicateTitle):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}

	return c.JSON(http.StatusCreated, dto.ToHostEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.svc.GetPublished(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.ToPublicEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]dto.PublicEventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToPublicEventResponse(&e)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) ListMyEvents(c echo.Context) error {
	host := middleware.CurrentProfile(c)

	events, err := h.svc.ListByHost(c.Request().Context(), host.ID)
	if err != nil {
		return err
	}

	resp := make([]dto.HostEventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToHostEventResponse(&e)
	}
	return c.JSON(http.StatusOK, resp)
}
