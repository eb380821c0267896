package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

// defaultCapacity is used when an organizer omits max_capacity.
const defaultCapacity = 100

// EventService orchestrates the event catalog.
type EventService struct {
	events        EventStore
	registrations RegistrationStore
	now           func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, registrations RegistrationStore) *EventService {
	return &EventService{events: events, registrations: registrations, now: time.Now}
}

// Create publishes a new event owned by the acting organizer.
func (s *EventService) Create(ctx context.Context, actor *model.User, req model.CreateEventRequest) (*model.Event, error) {
	if err := requireRole(actor, model.RoleOrganizer); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" || req.Description == "" || req.Date == "" || req.Location == "" {
		return nil, apperr.InvalidArgument("title, description, date and location are required")
	}
	if len(req.Title) < 3 || len(req.Title) > 200 {
		return nil, apperr.InvalidArgument("title must be between 3 and 200 characters")
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, apperr.InvalidArgument("date must be RFC 3339")
	}

	capacity := req.MaxCapacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	if capacity < 1 {
		return nil, apperr.InvalidArgument("max_capacity must be at least 1")
	}

	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}
	if price.IsNegative() {
		return nil, apperr.InvalidArgument("price cannot be negative")
	}

	now := s.now().UTC()
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Poster:      req.Poster,
		MaxCapacity: capacity,
		Price:       price,
		OrganizerID: actor.ID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Get returns a single event; public.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("event id is required")
	}
	return s.events.GetByID(ctx, id)
}

// ListPublic returns upcoming active events with their confirmed counts.
func (s *EventService) ListPublic(ctx context.Context) ([]model.EventWithCount, error) {
	return s.events.ListUpcoming(ctx, s.now().UTC())
}

// ListMine returns the acting organizer's events.
func (s *EventService) ListMine(ctx context.Context, actor *model.User) ([]model.EventWithCount, error) {
	if err := requireRole(actor, model.RoleOrganizer); err != nil {
		return nil, err
	}
	return s.events.ListByOrganizer(ctx, actor.ID)
}

// Update modifies an event; only the owning organizer may call.
func (s *EventService) Update(ctx context.Context, actor *model.User, id string, req model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, event.OrganizerID, "event"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if len(title) < 3 || len(title) > 200 {
			return nil, apperr.InvalidArgument("title must be between 3 and 200 characters")
		}
		event.Title = title
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			return nil, apperr.InvalidArgument("date must be RFC 3339")
		}
		event.Date = date
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Latitude != nil {
		event.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		event.Longitude = req.Longitude
	}
	if req.Poster != nil {
		event.Poster = req.Poster
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity < 1 {
			return nil, apperr.InvalidArgument("max_capacity must be at least 1")
		}
		event.MaxCapacity = *req.MaxCapacity
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperr.InvalidArgument("price cannot be negative")
		}
		event.Price = *req.Price
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	event.UpdatedAt = s.now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event; only the owning organizer may call.
func (s *EventService) Delete(ctx context.Context, actor *model.User, id string) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, event.OrganizerID, "event"); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}

// Stats summarises an event's registrations for its organizer.
func (s *EventService) Stats(ctx context.Context, actor *model.User, id string) (*model.EventStats, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, event.OrganizerID, "event"); err != nil {
		return nil, err
	}

	regs, err := s.registrations.ListByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(event, regs), nil
}

// summarize folds registrations into the organizer statistics view.
func summarize(event *model.Event, regs []model.Registration) *model.EventStats {
	stats := &model.EventStats{
		EventID:            event.ID,
		Title:              event.Title,
		MaxCapacity:        event.MaxCapacity,
		TotalRegistrations: len(regs),
		FreeSlots:          event.MaxCapacity - len(regs),
	}
	for _, reg := range regs {
		if reg.HasEntered {
			stats.ConfirmedAttendees++
		}
		switch reg.PaymentStatus {
		case model.PaymentPending:
			stats.ByPaymentStatus.Pending++
		case model.PaymentPaid:
			stats.ByPaymentStatus.Paid++
		case model.PaymentRejected:
			stats.ByPaymentStatus.Rejected++
		}
	}
	return stats
}
