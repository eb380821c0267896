package service

import (
	"context"
	"time"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
	"eventgate/internal/monitoring"
)

// EntryService is the door-side validator. It resolves a scanned token and
// consumes the ticket exactly once; the atomicity of that transition is
// delegated to the store so two simultaneous scans can never both succeed.
type EntryService struct {
	registrations RegistrationStore
	loc           *time.Location
	now           func() time.Time
}

// NewEntryService constructs an EntryService. loc is the validator's local
// timezone, used for the calendar-day check.
func NewEntryService(registrations RegistrationStore, loc *time.Location) *EntryService {
	if loc == nil {
		loc = time.Local
	}
	return &EntryService{registrations: registrations, loc: loc, now: time.Now}
}

// ValidateEntry decides admission for a presented token. Only validators
// may call. The outcome is always a decision, never an error, for every
// recognisable scan: unknown tokens yield status "invalid".
func (s *EntryService) ValidateEntry(ctx context.Context, actor *model.User, token string) (*model.EntryDecision, error) {
	if err := requireRole(actor, model.RoleValidator); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperr.InvalidArgument("token is required")
	}

	start := s.now()
	decision, err := s.registrations.ConsumeEntry(ctx, token, s.now().UTC(), s.loc)
	if err != nil {
		return nil, err
	}
	monitoring.TrackEntryValidation(string(decision.Status), s.now().Sub(start))
	return decision, nil
}
