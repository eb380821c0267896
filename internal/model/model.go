// Package model defines the core domain types for the event registration
// and ticket-validation platform.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventgate/internal/ticket"
)

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleValidator   Role = "validator"
	RoleAdmin       Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleParticipant, RoleOrganizer, RoleValidator, RoleAdmin:
		return true
	}
	return false
}

// User is an account in the identity store. PasswordHash never leaves the
// server; the json tag drops it from every response.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the slice of a user shown to organizers and validators.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Event is a bookable event owned by exactly one organizer.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Location    string          `json:"location"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Poster      *string         `json:"poster,omitempty"`
	MaxCapacity int             `json:"max_capacity"`
	Price       decimal.Decimal `json:"price"`
	OrganizerID string          `json:"organizer_id"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsFree reports whether registrations for the event skip payment review.
func (e *Event) IsFree() bool {
	return e.Price.LessThanOrEqual(decimal.Zero)
}

// HasOccurred reports whether the event's start instant is in the past.
func (e *Event) HasOccurred(now time.Time) bool {
	return e.Date.Before(now)
}

// IsOnDay reports whether the event is scheduled for the same calendar day
// as now, evaluated in loc. The door check compares days, not instants, so
// a ticket is admissible any time on the event day.
func (e *Event) IsOnDay(now time.Time, loc *time.Location) bool {
	ey, em, ed := e.Date.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	return ey == ny && em == nm && ed == nd
}

// EventWithCount is an event plus its confirmed (paid) registration count,
// used by the public and organizer listings.
type EventWithCount struct {
	Event
	PaidCount int `json:"registration_count"`
}

// PaymentStatus is the organizer's confirmation state for a registration.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRejected PaymentStatus = "rejected"
)

// EntryState tracks whether a registration's ticket has been consumed.
type EntryState string

const (
	EntryAvailable EntryState = "available"
	EntryUsed      EntryState = "used"
	EntrySpent     EntryState = "spent"
)

// NormalizeEntryState defaults legacy records with no entry state to
// available. Applied at every read path, including bulk queries.
func NormalizeEntryState(s EntryState) EntryState {
	if s == "" {
		return EntryAvailable
	}
	return s
}

// Consumed reports whether the ticket can no longer admit entry.
func (s EntryState) Consumed() bool {
	return s == EntryUsed || s == EntrySpent
}

// Registration is a participant's claim on an event seat, tracked from
// creation through payment confirmation to one-time entry use.
type Registration struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	EventID       string        `json:"event_id"`
	Token         string        `json:"token"`
	Code          string        `json:"code"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentProof  *string       `json:"payment_proof,omitempty"`
	EntryState    EntryState    `json:"entry_state"`
	HasEntered    bool          `json:"has_entered"`
	EnteredAt     *time.Time    `json:"entered_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Joined views, populated by list queries.
	User  *UserSummary `json:"user,omitempty"`
	Event *Event       `json:"event,omitempty"`
}

// NewRegistration builds a complete registration for the given user and
// event: token and code are generated up front, the payment status derives
// from the event price (free events are confirmed immediately) and the
// entry state starts available. The returned value is valid before it is
// ever persisted; no later hook mutates it.
func NewRegistration(userID string, event *Event, now time.Time) (*Registration, error) {
	token, err := ticket.NewToken()
	if err != nil {
		return nil, err
	}
	code, err := ticket.NewCode()
	if err != nil {
		return nil, err
	}

	status := PaymentPending
	if event.IsFree() {
		status = PaymentPaid
	}

	return &Registration{
		ID:            uuid.New().String(),
		UserID:        userID,
		EventID:       event.ID,
		Token:         token,
		Code:          code,
		PaymentStatus: status,
		EntryState:    EntryAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Regenerate replaces the token and code after a uniqueness collision.
func (r *Registration) Regenerate() error {
	token, err := ticket.NewToken()
	if err != nil {
		return err
	}
	code, err := ticket.NewCode()
	if err != nil {
		return err
	}
	r.Token = token
	r.Code = code
	return nil
}

// EntryStatus is the validator-facing outcome of a scan.
type EntryStatus string

const (
	EntryStatusInvalid        EntryStatus = "invalid"
	EntryStatusWrongDate      EntryStatus = "wrong_date"
	EntryStatusPaymentPending EntryStatus = "payment_pending"
	EntryStatusAlreadyUsed    EntryStatus = "already_used"
	EntryStatusValid          EntryStatus = "valid"
)

// EntryDecision is the result of evaluating a presented token.
type EntryDecision struct {
	Valid         bool          `json:"valid"`
	Status        EntryStatus   `json:"status"`
	User          *UserSummary  `json:"user,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	EntryState    EntryState    `json:"entry_state,omitempty"`
	EnteredAt     *time.Time    `json:"entered_at,omitempty"`
}

// EvaluateEntry runs the ordered admission guards for a registration whose
// token matched a scan. Each guard is terminal: wrong day before unresolved
// payment before consumed ticket, so the operator learns timing mistakes
// before security-relevant outcomes. Only a valid decision consumes the
// ticket, and the caller must perform that transition atomically.
func EvaluateEntry(reg *Registration, event *Event, user *UserSummary, now time.Time, loc *time.Location) EntryDecision {
	if !event.IsOnDay(now, loc) {
		return EntryDecision{Status: EntryStatusWrongDate}
	}
	if reg.PaymentStatus != PaymentPaid {
		return EntryDecision{
			Status:        EntryStatusPaymentPending,
			User:          user,
			PaymentStatus: reg.PaymentStatus,
		}
	}
	if NormalizeEntryState(reg.EntryState).Consumed() {
		return EntryDecision{
			Status:     EntryStatusAlreadyUsed,
			User:       user,
			EntryState: reg.EntryState,
			EnteredAt:  reg.EnteredAt,
		}
	}
	return EntryDecision{Valid: true, Status: EntryStatusValid, User: user}
}

// EventStats summarises an event's registrations for its organizer.
type EventStats struct {
	EventID            string `json:"event_id"`
	Title              string `json:"title"`
	MaxCapacity        int    `json:"max_capacity"`
	TotalRegistrations int    `json:"total_registrations"`
	ConfirmedAttendees int    `json:"confirmed_attendees"`
	FreeSlots          int    `json:"free_slots"`
	ByPaymentStatus    struct {
		Pending  int `json:"pending"`
		Paid     int `json:"paid"`
		Rejected int `json:"rejected"`
	} `json:"by_payment_status"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
