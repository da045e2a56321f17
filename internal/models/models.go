package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/milanhq/milan/internal/lifecycle"
)

type EventMode string

const (
	ModeOnline  EventMode = "online"
	ModeOffline EventMode = "offline"
	ModeHybrid  EventMode = "hybrid"
)

// Event is a host-submitted community event. CurrentRegistrations is derived
// state: it is only ever mutated through the conditional increment in the
// event repository and must never be written from handler code.
type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"uniqueIndex;not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	Mode        EventMode `gorm:"type:varchar(10);not null" json:"mode"`

	// Mode-dependent detail. MeetingLink and Venue are withheld from public
	// reads and disclosed only on registration confirmations.
	MeetingLink string `json:"meeting_link,omitempty"`
	City        string `json:"city,omitempty"`
	Venue       string `json:"venue,omitempty"`

	MaxCapacity          int   `gorm:"not null" json:"max_capacity"`
	CurrentRegistrations int   `gorm:"not null;default:0" json:"current_registrations"`
	Price                int64 `gorm:"not null;default:0" json:"price"` // minor units (paise); 0 = free

	ImageURL string `json:"image_url,omitempty"`

	Status          lifecycle.Status `gorm:"type:varchar(12);not null;default:'submitted';index" json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`

	HostID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"host_id"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	EventDate      time.Time `gorm:"not null;index" json:"event_date"`
	SubmittedAt    time.Time `gorm:"not null" json:"submitted_at"`
	ReviewDeadline time.Time `gorm:"not null;index" json:"review_deadline"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentFree    PaymentStatus = "free"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Settled reports whether the row counts toward capacity and the per-event
// uniqueness constraint. Pending and failed rows may be superseded.
func (s PaymentStatus) Settled() bool {
	return s == PaymentFree || s == PaymentPaid
}

// Registration is a ledger row for one attendee. Email is stored lowercased;
// a partial unique index over settled rows enforces at most one paid/free
// registration per (event, email).
type Registration struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Contact string `json:"contact,omitempty"`

	PaymentStatus  PaymentStatus `gorm:"type:varchar(10);not null" json:"payment_status"`
	OrderRef       string        `gorm:"index" json:"order_ref,omitempty"`
	TransactionRef string        `json:"transaction_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// Profile is the identity record for hosts and admins. Login itself is
// external; the service only consumes the token, the admin flag and the
// daily submission counter pair.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Name        string    `json:"name"`
	Affiliation string    `json:"affiliation,omitempty"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	APIToken    string    `gorm:"uniqueIndex;not null" json:"-"`

	// Daily submission quota state, keyed by UTC day. Mutated only through
	// the conditional update in the profile repository.
	SubmissionsToday int    `gorm:"not null;default:0" json:"-"`
	SubmissionDay    string `gorm:"type:varchar(10)" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CronLog is an append-only audit record of one sweep execution. Rows are
// never updated after insert.
type CronLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	JobName       string    `gorm:"not null;index" json:"job_name"`
	Outcome       string    `gorm:"type:varchar(10);not null" json:"outcome"` // success | error
	AffectedCount int64     `gorm:"not null" json:"affected_count"`
	DurationMS    int64     `gorm:"not null" json:"duration_ms"`
	ErrorDetail   string    `json:"error_detail,omitempty"`
	TriggeredBy   string    `json:"triggered_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
