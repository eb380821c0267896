package model

import "github.com/shopspring/decimal"

// SignupRequest is the payload for public account creation. Role is only
// honoured when an admin performs the creation; public signups always
// become participants.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// LoginRequest is the payload for credential exchange.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token and the account.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateUserRequest is the admin payload for account maintenance. Nil
// fields are left untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CreateEventRequest is the organizer payload for publishing an event.
type CreateEventRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Date        string           `json:"date"` // RFC 3339
	Location    string           `json:"location"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	Poster      *string          `json:"poster,omitempty"`
	MaxCapacity int              `json:"max_capacity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// UpdateEventRequest mirrors CreateEventRequest with every field optional.
type UpdateEventRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	Poster      *string          `json:"poster,omitempty"`
	MaxCapacity *int             `json:"max_capacity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// CreateRegistrationRequest is the participant payload for claiming a seat.
type CreateRegistrationRequest struct {
	EventID string `json:"event_id"`
}

// UploadProofRequest attaches an opaque payment proof reference.
type UploadProofRequest struct {
	PaymentProof string `json:"payment_proof"`
}

// PaymentDecision is the organizer's verdict on a payment proof.
type PaymentDecision string

const (
	DecisionAccept PaymentDecision = "accept"
	DecisionReject PaymentDecision = "reject"
)

// PaymentDecisionRequest is the organizer payload for accepting or
// rejecting a payment.
type PaymentDecisionRequest struct {
	Action PaymentDecision `json:"action"`
}

// ValidateEntryRequest is the validator payload carrying the scanned token.
type ValidateEntryRequest struct {
	Token string `json:"token"`
}
