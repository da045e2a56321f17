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

type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) RegisterRoutes(public *echo.Group, authed *echo.Group) {
	public.POST("/events/:id/register", h.Register)
	// The confirmation is access-controlled by possession of the id.
	public.GET("/registrations/:id", h.GetConfirmation)

	authed.GET("/events/:id/registrations", h.ListAttendees)
}

func (h *RegistrationHandler) Register(c echo.Context) error {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reg, event, err := h.svc.RegisterFree(c.Request().Context(), eventID, req.ToInput())
	if err != nil {
		return mapRegistrationError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToRegistrationResponse(reg, event))
}

func (h *RegistrationHandler) GetConfirmation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}

	reg, event, err := h.svc.GetConfirmation(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg, event))
}

func (h *RegistrationHandler) ListAttendees(c echo.Context) error {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	regs, err := h.svc.ListForEvent(c.Request().Context(), middleware.CurrentProfile(c), eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotEventHost):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return err
		}
	}

	resp := make([]dto.AttendeeResponse, len(regs))
	for i, r := range regs {
		resp[i] = dto.ToAttendeeResponse(&r)
	}
	return c.JSON(http.StatusOK, resp)
}

// mapRegistrationError translates the registration preconditions shared by
// the free and paid paths. Conflicts (already registered) are distinct from
// precondition failures (full, past, unpublished) so clients can react
// differently.
func mapRegistrationError(err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEventNotPublished),
		errors.Is(err, service.ErrEventPast),
		errors.Is(err, service.ErrPaidEvent),
		errors.Is(err, service.ErrFreeEvent):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEventFull):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
