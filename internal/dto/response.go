package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/milanhq/milan/internal/models"
)

// PublicEventResponse is the listing/detail shape for anyone browsing
// events. Meeting links and venue details are withheld here; they are
// disclosed only on registration confirmations.
type PublicEventResponse struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Mode                 string    `json:"mode"`
	City                 string    `json:"city,omitempty"`
	MaxCapacity          int       `json:"max_capacity"`
	CurrentRegistrations int       `json:"current_registrations"`
	Price                int64     `json:"price"`
	ImageURL             string    `json:"image_url,omitempty"`
	EventDate            time.Time `json:"event_date"`
}

func ToPublicEventResponse(e *models.Event) PublicEventResponse {
	return PublicEventResponse{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Mode:                 string(e.Mode),
		City:                 e.City,
		MaxCapacity:          e.MaxCapacity,
		CurrentRegistrations: e.CurrentRegistrations,
		Price:                e.Price,
		ImageURL:             e.ImageURL,
		EventDate:            e.EventDate,
	}
}

// HostEventResponse is what hosts and admins see for events they own or
// review: full detail including status and review outcome.
type HostEventResponse struct {
	PublicEventResponse
	Status          string     `json:"status"`
	MeetingLink     string     `json:"meeting_link,omitempty"`
	Venue           string     `json:"venue,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewDeadline  time.Time  `json:"review_deadline"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

func ToHostEventResponse(e *models.Event) HostEventResponse {
	return HostEventResponse{
		PublicEventResponse: ToPublicEventResponse(e),
		Status:              string(e.Status),
		MeetingLink:         e.MeetingLink,
		Venue:               e.Venue,
		RejectionReason:     e.RejectionReason,
		SubmittedAt:         e.SubmittedAt,
		ReviewDeadline:      e.ReviewDeadline,
		ReviewedAt:          e.ReviewedAt,
	}
}

// JoinDetails carries the mode-dependent "how to attend" information that is
// only revealed with a confirmed registration.
type JoinDetails struct {
	MeetingLink string `json:"meeting_link,omitempty"`
	City        string `json:"city,omitempty"`
	Venue       string `json:"venue,omitempty"`
}

type RegistrationResponse struct {
	ID            uuid.UUID    `json:"id"`
	EventID       uuid.UUID    `json:"event_id"`
	EventTitle    string       `json:"event_title"`
	EventDate     time.Time    `json:"event_date"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	PaymentStatus string       `json:"payment_status"`
	JoinDetails   *JoinDetails `json:"join_details,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ToRegistrationResponse builds the confirmation view. Join details are
// attached only for settled registrations.
func ToRegistrationResponse(r *models.Registration, e *models.Event) RegistrationResponse {
	resp := RegistrationResponse{
		ID:            r.ID,
		EventID:       r.EventID,
		EventTitle:    e.Title,
		EventDate:     e.EventDate,
		Name:          r.Name,
		Email:         r.Email,
		PaymentStatus: string(r.PaymentStatus),
		CreatedAt:     r.CreatedAt,
	}
	if r.PaymentStatus.Settled() {
		resp.JoinDetails = &JoinDetails{
			MeetingLink: e.MeetingLink,
			City:        e.City,
			Venue:       e.Venue,
		}
	}
	return resp
}

// AttendeeResponse is the per-event attendee list for the owning host.
type AttendeeResponse struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PaymentStatus string    `json:"payment_status"`
	RegisteredAt  time.Time `json:"registered_at"`
}

func ToAttendeeResponse(r *models.Registration) AttendeeResponse {
	return AttendeeResponse{
		Name:          r.Name,
		Email:         r.Email,
		PaymentStatus: string(r.PaymentStatus),
		RegisteredAt:  r.CreatedAt,
	}
}

type OrderResponse struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	OrderRef       string    `json:"order_ref"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
}

type SweepResponse struct {
	Job      string `json:"job"`
	Affected int64  `json:"affected"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
