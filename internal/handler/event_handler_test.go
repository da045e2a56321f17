package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milanhq/milan/internal/dto"
	"github.com/milanhq/milan/internal/lifecycle"
	"github.com/milanhq/milan/internal/middleware"
	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/service"
	"github.com/milanhq/milan/pkg/validator"
)

// --- Mock EventService ---

type mockEventService struct {
	createFn        func(ctx context.Context, host *models.Profile, in service.CreateEventInput) (*models.Event, error)
	getPublishedFn  func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	listPublishedFn func(ctx context.Context) ([]models.Event, error)
	listByHostFn    func(ctx context.Context, hostID uuid.UUID) ([]models.Event, error)
	listPendingFn   func(ctx context.Context) ([]models.Event, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, host *models.Profile, in service.CreateEventInput) (*models.Event, error) {
	return m.createFn(ctx, host, in)
}
func (m *mockEventService) GetPublished(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return m.getPublishedFn(ctx, id)
}
func (m *mockEventService) ListPublished(ctx context.Context) ([]models.Event, error) {
	return m.listPublishedFn(ctx)
}
func (m *mockEventService) ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.Event, error) {
	return m.listByHostFn(ctx, hostID)
}
func (m *mockEventService) ListPending(ctx context.Context) ([]models.Event, error) {
	return m.listPendingFn(ctx)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func sampleEvent() *models.Event {
	return &models.Event{
		ID:          uuid.New(),
		Title:       "Go Meetup",
		Description: "Monthly community meetup",
		Mode:        models.ModeOnline,
		MeetingLink: "https://meet.example.com/go",
		MaxCapacity: 50,
		Status:      lifecycle.StatusPublished,
		HostID:      uuid.New(),
		EventDate:   time.Now().Add(96 * time.Hour),
	}
}

const createEventBody = `{
	"title": "Go Meetup",
	"description": "Monthly community meetup",
	"mode": "online",
	"meeting_link": "https://meet.example.com/go",
	"max_capacity": 50,
	"event_date": "2027-03-01T18:00:00Z"
}`

func TestCreateEvent_Handler_Success(t *testing.T) {
	event := sampleEvent()
	event.Status = lifecycle.StatusSubmitted
	svc := &mockEventService{
		createFn: func(_ context.Context, _ *models.Profile, in service.CreateEventInput) (*models.Event, error) {
			assert.Equal(t, "Go Meetup", in.Title)
			assert.Equal(t, models.ModeOnline, in.Mode)
			return event, nil
		},
	}

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/events", createEventBody), rec)
	middleware.SetProfile(c, &models.Profile{ID: uuid.New()})

	require.NoError(t, NewEventHandler(svc).CreateEvent(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.HostEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, event.ID, resp.ID)
	assert.Equal(t, string(lifecycle.StatusSubmitted), resp.Status)
}

func TestCreateEvent_Handler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid", service.ErrInvalidEvent, http.StatusBadRequest},
		{"price forbidden", service.ErrPriceNotAllowed, http.StatusForbidden},
		{"quota", service.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"duplicate title", service.ErrDuplicateTitle, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockEventService{
				createFn: func(context.Context, *models.Profile, service.CreateEventInput) (*models.Event, error) {
					return nil, tc.err
				},
			}

			e := newEcho()
			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/events", createEventBody), rec)
			middleware.SetProfile(c, &models.Profile{ID: uuid.New()})

			err := NewEventHandler(svc).CreateEvent(c)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tc.code, he.Code)
		})
	}
}

func TestCreateEvent_Handler_ValidationRejectsBadMode(t *testing.T) {
	e := newEcho()
	body := strings.Replace(createEventBody, `"online"`, `"in-person"`, 1)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/events", body), rec)
	middleware.SetProfile(c, &models.Profile{ID: uuid.New()})

	err := NewEventHandler(&mockEventService{}).CreateEvent(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetEvent_Handler_PublicViewWithholdsJoinDetails(t *testing.T) {
	event := sampleEvent()
	event.Venue = "Community Hall"
	svc := &mockEventService{
		getPublishedFn: func(_ context.Context, id uuid.UUID) (*models.Event, error) {
			assert.Equal(t, event.ID, id)
			return event, nil
		},
	}

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(event.ID.String())

	require.NoError(t, NewEventHandler(svc).GetEvent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Go Meetup")
	assert.NotContains(t, body, "meeting_link")
	assert.NotContains(t, body, "Community Hall")
}

func TestGetEvent_Handler_NotFound(t *testing.T) {
	svc := &mockEventService{
		getPublishedFn: func(context.Context, uuid.UUID) (*models.Event, error) {
			return nil, service.ErrEventNotFound
		},
	}

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := NewEventHandler(svc).GetEvent(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetEvent_Handler_BadID(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := NewEventHandler(&mockEventService{}).GetEvent(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestListMyEvents_Handler(t *testing.T) {
	host := &models.Profile{ID: uuid.New()}
	svc := &mockEventService{
		listByHostFn: func(_ context.Context, hostID uuid.UUID) ([]models.Event, error) {
			assert.Equal(t, host.ID, hostID)
			return []models.Event{*sampleEvent()}, nil
		},
	}

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	middleware.SetProfile(c, host)

	require.NoError(t, NewEventHandler(svc).ListMyEvents(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.HostEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, string(lifecycle.StatusPublished), resp[0].Status)
}
