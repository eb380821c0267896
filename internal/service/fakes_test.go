package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

// memState is shared in-memory storage for the store fakes. A single mutex
// serializes every operation, mirroring the row locking the real
// repositories get from the database.
type memState struct {
	mu     sync.Mutex
	users  map[string]*model.User
	events map[string]*model.Event
	regs   map[string]*model.Registration
}

func newMemState() *memState {
	return &memState{
		users:  make(map[string]*model.User),
		events: make(map[string]*model.Event),
		regs:   make(map[string]*model.Registration),
	}
}

type memUsers struct{ *memState }
type memEvents struct{ *memState }
type memRegs struct{ *memState }

func (s *memUsers) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperr.Conflict("email already registered")
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *memUsers) List(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUsers) Update(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUsers) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(s.users, id)
	return nil
}

func (s *memEvents) Create(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memEvents) GetByID(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	cp := *e
	return &cp, nil
}

func (s *memEvents) Update(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return apperr.NotFound("event not found")
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memEvents) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return apperr.NotFound("event not found")
	}
	delete(s.events, id)
	return nil
}

func (s *memEvents) ListUpcoming(ctx context.Context, now time.Time) ([]model.EventWithCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EventWithCount
	for _, e := range s.events {
		if e.IsActive && !e.Date.Before(now) {
			out = append(out, model.EventWithCount{Event: *e, PaidCount: s.paidCountLocked(e.ID)})
		}
	}
	return out, nil
}

func (s *memEvents) ListByOrganizer(ctx context.Context, organizerID string) ([]model.EventWithCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EventWithCount
	for _, e := range s.events {
		if e.OrganizerID == organizerID {
			out = append(out, model.EventWithCount{Event: *e, PaidCount: s.paidCountLocked(e.ID)})
		}
	}
	return out, nil
}

func (s *memState) paidCountLocked(eventID string) int {
	n := 0
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.PaymentStatus == model.PaymentPaid {
			n++
		}
	}
	return n
}

// Register mirrors the transactional precondition order of the real
// repository: existence, schedule, duplicate, then capacity.
func (s *memRegs) Register(ctx context.Context, userID, eventID string, now time.Time) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	if event.HasOccurred(now) {
		return nil, apperr.InvalidState("event already occurred")
	}
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			return nil, apperr.Conflict("already registered for this event")
		}
	}
	if s.paidCountLocked(eventID) >= event.MaxCapacity {
		return nil, apperr.CapacityExceeded("event has reached its maximum capacity")
	}

	reg, err := model.NewRegistration(userID, event, now)
	if err != nil {
		return nil, err
	}
	cp := *reg
	s.regs[reg.ID] = &cp

	eventCopy := *event
	reg.Event = &eventCopy
	return reg, nil
}

func (s *memRegs) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.regs[id]
	if !ok {
		return nil, apperr.NotFound("registration not found")
	}
	cp := *reg
	if event, ok := s.events[reg.EventID]; ok {
		eventCopy := *event
		cp.Event = &eventCopy
	}
	return &cp, nil
}

func (s *memRegs) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Registration
	for _, reg := range s.regs {
		if reg.EventID == eventID {
			cp := *reg
			if u, ok := s.users[reg.UserID]; ok {
				summary := u.Summary()
				cp.User = &summary
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *memRegs) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Registration
	for _, reg := range s.regs {
		if reg.UserID == userID {
			cp := *reg
			if event, ok := s.events[reg.EventID]; ok {
				eventCopy := *event
				cp.Event = &eventCopy
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *memRegs) Update(ctx context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.regs[reg.ID]
	if !ok {
		return apperr.NotFound("registration not found")
	}
	stored.PaymentStatus = reg.PaymentStatus
	stored.PaymentProof = reg.PaymentProof
	stored.EntryState = reg.EntryState
	stored.UpdatedAt = reg.UpdatedAt
	return nil
}

func (s *memRegs) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[id]; !ok {
		return apperr.NotFound("registration not found")
	}
	delete(s.regs, id)
	return nil
}

// ConsumeEntry mirrors the atomic evaluate-then-mark of the real
// repository under the shared mutex.
func (s *memRegs) ConsumeEntry(ctx context.Context, token string, now time.Time, loc *time.Location) (*model.EntryDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reg *model.Registration
	for _, candidate := range s.regs {
		if candidate.Token == token {
			reg = candidate
			break
		}
	}
	if reg == nil {
		return &model.EntryDecision{Status: model.EntryStatusInvalid}, nil
	}

	event, ok := s.events[reg.EventID]
	if !ok {
		return nil, apperr.Internal("registration references missing event", nil)
	}
	var summary *model.UserSummary
	if u, ok := s.users[reg.UserID]; ok {
		v := u.Summary()
		summary = &v
	}

	d := model.EvaluateEntry(reg, event, summary, now, loc)
	if d.Valid {
		entered := now
		reg.EntryState = model.EntryUsed
		reg.HasEntered = true
		reg.EnteredAt = &entered
		reg.UpdatedAt = now
		d.EntryState = model.EntryUsed
		d.EnteredAt = &entered
	}
	return &d, nil
}

// harness bundles the services wired against the shared in-memory state.
type harness struct {
	state    *memState
	users    *UserService
	events   *EventService
	regs     *RegistrationService
	entry    *EntryService
	now      time.Time
	location *time.Location
}

func newHarness() *harness {
	state := newMemState()
	userStore := &memUsers{state}
	eventStore := &memEvents{state}
	regStore := &memRegs{state}

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := NewUserService(userStore)
	users.now = clock
	events := NewEventService(eventStore, regStore)
	events.now = clock
	regs := NewRegistrationService(regStore, eventStore)
	regs.now = clock
	entry := NewEntryService(regStore, time.UTC)
	entry.now = clock

	return &harness{
		state:    state,
		users:    users,
		events:   events,
		regs:     regs,
		entry:    entry,
		now:      now,
		location: time.UTC,
	}
}

func (h *harness) addUser(id string, role model.Role) *model.User {
	u := &model.User{
		ID:       id,
		Email:    id + "@example.com",
		Name:     id,
		Role:     role,
		IsActive: true,
	}
	h.state.mu.Lock()
	cp := *u
	h.state.users[id] = &cp
	h.state.mu.Unlock()
	return u
}

func (h *harness) addEvent(id, organizerID string, capacity int, price int64, date time.Time) *model.Event {
	e := &model.Event{
		ID:          id,
		Title:       "Event " + id,
		Description: "description",
		Date:        date,
		Location:    "Main Hall",
		MaxCapacity: capacity,
		Price:       decimal.NewFromInt(price),
		OrganizerID: organizerID,
		IsActive:    true,
	}
	h.state.mu.Lock()
	cp := *e
	h.state.events[id] = &cp
	h.state.mu.Unlock()
	return e
}
