// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"time"

	"eventgate/internal/model"
)

// UserStore is the persistence surface the user service depends on.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
}

// EventStore is the persistence surface the event service depends on.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
	ListUpcoming(ctx context.Context, now time.Time) ([]model.EventWithCount, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.EventWithCount, error)
}

// RegistrationStore is the persistence surface the registration engine and
// entry validator depend on. Register and ConsumeEntry are the two atomic
// check-then-act operations; implementations must serialize them (the pgx
// repository uses row locks inside a transaction).
type RegistrationStore interface {
	Register(ctx context.Context, userID, eventID string, now time.Time) (*model.Registration, error)
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	Update(ctx context.Context, reg *model.Registration) error
	Delete(ctx context.Context, id string) error
	ConsumeEntry(ctx context.Context, token string, now time.Time, loc *time.Location) (*model.EntryDecision, error)
}
