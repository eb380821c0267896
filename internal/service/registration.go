package service

import (
	"context"
	"time"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
	"eventgate/internal/monitoring"
)

// RegistrationService is the registration engine: it creates and terminates
// registrations under capacity and uniqueness constraints and manages
// payment-status transitions. The capacity check-then-act lives in the
// store's atomic Register.
type RegistrationService struct {
	registrations RegistrationStore
	events        EventStore
	now           func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(registrations RegistrationStore, events EventStore) *RegistrationService {
	return &RegistrationService{registrations: registrations, events: events, now: time.Now}
}

// Create registers the actor for an event. Free events come back paid
// immediately; priced events start pending.
func (s *RegistrationService) Create(ctx context.Context, actor *model.User, eventID string) (*model.Registration, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, apperr.InvalidArgument("event id is required")
	}

	reg, err := s.registrations.Register(ctx, actor.ID, eventID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	monitoring.TrackRegistrationCreated(string(reg.PaymentStatus))
	return reg, nil
}

// Get returns a registration to its owner; the token inside is the QR
// payload, so nobody else may read it.
func (s *RegistrationService) Get(ctx context.Context, actor *model.User, id string) (*model.Registration, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, reg.UserID, "registration"); err != nil {
		return nil, err
	}
	return reg, nil
}

// ListMine returns the actor's registrations with their events attached.
func (s *RegistrationService) ListMine(ctx context.Context, actor *model.User) ([]model.Registration, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.registrations.ListByUser(ctx, actor.ID)
}

// Cancel deletes the actor's registration. A confirmed (paid) seat cannot
// be self-cancelled and nothing can be cancelled once the event has passed.
func (s *RegistrationService) Cancel(ctx context.Context, actor *model.User, id string) error {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, reg.UserID, "registration"); err != nil {
		return err
	}
	if reg.Event == nil {
		return apperr.Internal("registration is missing its event", nil)
	}
	if reg.Event.HasOccurred(s.now().UTC()) {
		return apperr.InvalidState("cannot cancel a registration for an event that already occurred")
	}
	if reg.PaymentStatus == model.PaymentPaid {
		return apperr.InvalidState("cannot cancel a registration with a confirmed payment")
	}

	if err := s.registrations.Delete(ctx, id); err != nil {
		return err
	}
	monitoring.TrackRegistrationCancelled()
	return nil
}

// UploadProof attaches a payment proof reference and forces the payment
// status back to pending; a rejected payment re-enters review.
func (s *RegistrationService) UploadProof(ctx context.Context, actor *model.User, id, proof string) (*model.Registration, error) {
	if proof == "" {
		return nil, apperr.InvalidArgument("payment proof is required")
	}
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, reg.UserID, "registration"); err != nil {
		return nil, err
	}

	reg.PaymentProof = &proof
	reg.PaymentStatus = model.PaymentPending
	reg.UpdatedAt = s.now().UTC()
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// DecidePayment records the organizer's verdict on a payment proof. Only
// the organizer owning the parent event may call. Accepting resets the
// entry state to available unless the ticket was already consumed, which
// covers re-acceptance after an earlier rejection.
func (s *RegistrationService) DecidePayment(ctx context.Context, actor *model.User, id string, action model.PaymentDecision) (*model.Registration, error) {
	if action != model.DecisionAccept && action != model.DecisionReject {
		return nil, apperr.InvalidArgument(`action must be "accept" or "reject"`)
	}

	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Event == nil {
		return nil, apperr.Internal("registration is missing its event", nil)
	}
	if err := requireRole(actor, model.RoleOrganizer); err != nil {
		return nil, err
	}
	if err := requireOwner(actor, reg.Event.OrganizerID, "registration"); err != nil {
		return nil, err
	}

	if action == model.DecisionAccept {
		reg.PaymentStatus = model.PaymentPaid
		if !model.NormalizeEntryState(reg.EntryState).Consumed() {
			reg.EntryState = model.EntryAvailable
		}
	} else {
		reg.PaymentStatus = model.PaymentRejected
	}
	reg.UpdatedAt = s.now().UTC()

	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, err
	}
	monitoring.TrackPaymentDecision(string(action))
	return reg, nil
}

// ListForEvent returns an event's registrations to its owning organizer.
func (s *RegistrationService) ListForEvent(ctx context.Context, actor *model.User, eventID string) ([]model.Registration, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, model.RoleOrganizer); err != nil {
		return nil, err
	}
	if err := requireOwner(actor, event.OrganizerID, "event"); err != nil {
		return nil, err
	}
	return s.registrations.ListByEvent(ctx, eventID)
}
