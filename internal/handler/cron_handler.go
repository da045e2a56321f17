package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/milanhq/milan/internal/dto"
	"github.com/milanhq/milan/internal/service"
)

// CronHandler is the thin HTTP adapter over the sweep service: routes are
// invoked by an external scheduler carrying the shared-secret bearer token.
type CronHandler struct {
	svc service.SweepService
}

func NewCronHandler(svc service.SweepService) *CronHandler {
	return &CronHandler{svc: svc}
}

func (h *CronHandler) RegisterRoutes(cron *echo.Group) {
	cron.POST("/expire", h.ExpireSubmissions)
	cron.POST("/complete", h.CompleteEvents)
}

func (h *CronHandler) ExpireSubmissions(c echo.Context) error {
	affected, err := h.svc.ExpireSubmissions(c.Request().Context(), triggerSource(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.SweepResponse{Job: service.JobExpireSubmissions, Affected: affected})
}

func (h *CronHandler) CompleteEvents(c echo.Context) error {
	affected, err := h.svc.CompleteEvents(c.Request().Context(), triggerSource(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.SweepResponse{Job: service.JobCompleteEvents, Affected: affected})
}

func triggerSource(c echo.Context) string {
	if src := c.QueryParam("source"); src != "" {
		return src
	}
	return "scheduler"
}
