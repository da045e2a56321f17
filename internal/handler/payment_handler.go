package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/milanhq/milan/internal/dto"
	"github.com/milanhq/milan/internal/service"
)

const webhookSignatureHeader = "X-Webhook-Signature"

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(public *echo.Group) {
	public.POST("/events/:id/orders", h.CreateOrder)
	public.POST("/payments/verify", h.VerifyPayment)
	public.POST("/payments/webhook", h.Webhook)
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
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

	reg, order, err := h.svc.CreateOrder(c.Request().Context(), eventID, req.ToInput())
	if err != nil {
		return mapRegistrationError(err)
	}

	return c.JSON(http.StatusCreated, dto.OrderResponse{
		RegistrationID: reg.ID,
		OrderRef:       order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
	})
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reg, err := h.svc.VerifyRedirect(c.Request().Context(), req.OrderRef, req.TransactionRef, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrEventFull), errors.Is(err, service.ErrAlreadyRegistered):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"registration_id": reg.ID.String(),
		"payment_status":  string(reg.PaymentStatus),
	})
}

func (h *PaymentHandler) Webhook(c echo.Context) error {
	// The raw body must be captured before any parsing: the HMAC covers the
	// bytes as sent, and a re-serialized payload may not match them.
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	if err := h.svc.HandleWebhook(c.Request().Context(), body, c.Request().Header.Get(webhookSignatureHeader)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrMalformedWebhook):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventFull), errors.Is(err, service.ErrAlreadyRegistered):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
