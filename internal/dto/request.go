package dto

import (
	"time"

	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/service"
)

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Mode        string    `json:"mode" validate:"required,oneof=online offline hybrid"`
	MeetingLink string    `json:"meeting_link" validate:"omitempty,url"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	MaxCapacity int       `json:"max_capacity" validate:"required,gt=0"`
	Price       int64     `json:"price" validate:"gte=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	EventDate   time.Time `json:"event_date" validate:"required"`
}

func (r CreateEventRequest) ToInput() service.CreateEventInput {
	return service.CreateEventInput{
		Title:       r.Title,
		Description: r.Description,
		Mode:        models.EventMode(r.Mode),
		MeetingLink: r.MeetingLink,
		City:        r.City,
		Venue:       r.Venue,
		MaxCapacity: r.MaxCapacity,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		EventDate:   r.EventDate,
	}
}

type RegisterRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Contact string `json:"contact" validate:"omitempty,max=20"`
}

func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{Name: r.Name, Email: r.Email, Contact: r.Contact}
}

type RejectEventRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

type VerifyPaymentRequest struct {
	OrderRef       string `json:"order_ref" validate:"required"`
	TransactionRef string `json:"transaction_ref" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}
