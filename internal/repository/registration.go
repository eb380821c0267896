package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

// credentialRetries bounds token/code regeneration after a uniqueness
// collision. Collisions are astronomically rare; hitting the bound means
// something else is wrong.
const credentialRetries = 3

// RegistrationRepository handles persistence for registrations, including
// the two check-then-act critical sections: capacity-bounded creation and
// single-use entry consumption. Both are serialized with row-level locks
// (SELECT ... FOR UPDATE) inside a transaction, so concurrent attempts
// queue on the same row instead of racing.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, user_id, event_id, token, code, payment_status, payment_proof,
	entry_state, has_entered, entered_at, created_at, updated_at`

// scanRegistration reads the common registration columns. entry_state is
// nullable for legacy rows and normalizes to available.
func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var (
		reg   model.Registration
		state *string
	)
	err := row.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.Token, &reg.Code, &reg.PaymentStatus,
		&reg.PaymentProof, &state, &reg.HasEntered, &reg.EnteredAt, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("registration not found")
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	if state != nil {
		reg.EntryState = model.EntryState(*state)
	}
	reg.EntryState = model.NormalizeEntryState(reg.EntryState)
	return &reg, nil
}

// Register performs a concurrency-safe registration inside a transaction.
//
// The event row is locked with SELECT ... FOR UPDATE before the duplicate
// and capacity checks, so two concurrent creations for the same event are
// serialized: when only one confirmed seat remains, exactly one wins.
// Capacity counts paid registrations only; pending ones may oversubscribe
// but never consume a confirmed seat.
func (r *RegistrationRepository) Register(ctx context.Context, userID, eventID string, now time.Time) (reg *model.Registration, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row. Precondition order matters: existence, then
	// schedule, then duplicate, then capacity.
	row := tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
	event, err := scanEvent(row)
	if err != nil {
		return nil, err
	}

	if event.HasOccurred(now) {
		return nil, apperr.InvalidState("event already occurred")
	}

	var dup int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&dup)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup > 0 {
		return nil, apperr.Conflict("already registered for this event")
	}

	var paid int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND payment_status = $2`,
		eventID, model.PaymentPaid,
	).Scan(&paid)
	if err != nil {
		return nil, fmt.Errorf("count paid registrations: %w", err)
	}
	if paid >= event.MaxCapacity {
		return nil, apperr.CapacityExceeded("event has reached its maximum capacity")
	}

	reg, err = model.NewRegistration(userID, event, now)
	if err != nil {
		return nil, err
	}

	if err = r.insertWithRetry(ctx, tx, reg); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	reg.Event = event
	return reg, nil
}

// insertWithRetry inserts the registration, regenerating token and code on
// a uniqueness collision. Each attempt runs in a savepoint so a failed
// insert does not poison the outer transaction.
func (r *RegistrationRepository) insertWithRetry(ctx context.Context, tx pgx.Tx, reg *model.Registration) error {
	return retryCredentialCollisions(reg, func(reg *model.Registration) error {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin savepoint: %w", err)
		}
		_, err = sp.Exec(ctx,
			`INSERT INTO registrations (`+registrationColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			reg.ID, reg.UserID, reg.EventID, reg.Token, reg.Code, reg.PaymentStatus,
			reg.PaymentProof, string(reg.EntryState), reg.HasEntered, reg.EnteredAt,
			reg.CreatedAt, reg.UpdatedAt,
		)
		if err == nil {
			return sp.Commit(ctx)
		}
		_ = sp.Rollback(ctx)
		return err
	})
}

// retryCredentialCollisions runs insert, regenerating the registration's
// token and code when the insert trips their unique constraints. A
// duplicate user+event pair is a terminal Conflict, never a retry.
func retryCredentialCollisions(reg *model.Registration, insert func(*model.Registration) error) error {
	for attempt := 0; attempt < credentialRetries; attempt++ {
		err := insert(reg)
		if err == nil {
			return nil
		}

		switch {
		case isUniqueViolation(err, "registrations_user_event_key"):
			return apperr.Conflict("already registered for this event")
		case isUniqueViolation(err, "registrations_token_key"),
			isUniqueViolation(err, "registrations_code_key"):
			if regenErr := reg.Regenerate(); regenErr != nil {
				return regenErr
			}
		default:
			return fmt.Errorf("insert registration: %w", err)
		}
	}
	return fmt.Errorf("insert registration: credential collision persisted after %d attempts", credentialRetries)
}

// GetByID returns a registration with its event attached.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, err
	}

	event, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, reg.EventID))
	if err != nil {
		return nil, err
	}
	reg.Event = event
	return reg, nil
}

// ListByEvent returns all registrations for an event, newest first, each
// with its participant summary for the organizer view.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.user_id, r.event_id, r.token, r.code, r.payment_status, r.payment_proof,
		        r.entry_state, r.has_entered, r.entered_at, r.created_at, r.updated_at,
		        u.name, u.email
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = $1
		 ORDER BY r.created_at DESC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var (
			reg   model.Registration
			state *string
			user  model.UserSummary
		)
		err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.Token, &reg.Code, &reg.PaymentStatus,
			&reg.PaymentProof, &state, &reg.HasEntered, &reg.EnteredAt, &reg.CreatedAt,
			&reg.UpdatedAt, &user.Name, &user.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if state != nil {
			reg.EntryState = model.EntryState(*state)
		}
		reg.EntryState = model.NormalizeEntryState(reg.EntryState)
		user.ID = reg.UserID
		reg.User = &user
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// ListByUser returns a participant's registrations, newest first, each with
// its event attached so clients can render tickets without extra lookups.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.user_id, r.event_id, r.token, r.code, r.payment_status, r.payment_proof,
		        r.entry_state, r.has_entered, r.entered_at, r.created_at, r.updated_at,
		        e.id, e.title, e.description, e.date, e.location, e.latitude, e.longitude,
		        e.poster, e.max_capacity, e.price, e.organizer_id, e.is_active, e.created_at, e.updated_at
		 FROM registrations r
		 JOIN events e ON e.id = r.event_id
		 WHERE r.user_id = $1
		 ORDER BY r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var (
			reg   model.Registration
			state *string
			event model.Event
		)
		err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.Token, &reg.Code, &reg.PaymentStatus,
			&reg.PaymentProof, &state, &reg.HasEntered, &reg.EnteredAt, &reg.CreatedAt, &reg.UpdatedAt,
			&event.ID, &event.Title, &event.Description, &event.Date, &event.Location,
			&event.Latitude, &event.Longitude, &event.Poster, &event.MaxCapacity, &event.Price,
			&event.OrganizerID, &event.IsActive, &event.CreatedAt, &event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if state != nil {
			reg.EntryState = model.EntryState(*state)
		}
		reg.EntryState = model.NormalizeEntryState(reg.EntryState)
		reg.Event = &event
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// Update persists payment status, proof and entry state in one statement so
// a payment decision never partially applies.
func (r *RegistrationRepository) Update(ctx context.Context, reg *model.Registration) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE registrations
		 SET payment_status = $2, payment_proof = $3, entry_state = $4, updated_at = $5
		 WHERE id = $1`,
		reg.ID, reg.PaymentStatus, reg.PaymentProof, string(reg.EntryState), reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("registration not found")
	}
	return nil
}

// Delete removes a registration.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("registration not found")
	}
	return nil
}

// ConsumeEntry resolves a scanned token and, when every admission guard
// passes, marks the ticket used — atomically. The registration row is
// locked FOR UPDATE for the whole evaluation, so two simultaneous scans of
// the same token serialize: the first consumes the ticket, the second sees
// it already used. An unknown token yields an invalid decision, not an
// error.
func (r *RegistrationRepository) ConsumeEntry(ctx context.Context, token string, now time.Time, loc *time.Location) (decision *model.EntryDecision, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		reg   model.Registration
		state *string
		event model.Event
		user  model.UserSummary
	)
	err = tx.QueryRow(ctx,
		`SELECT r.id, r.user_id, r.event_id, r.token, r.code, r.payment_status, r.payment_proof,
		        r.entry_state, r.has_entered, r.entered_at, r.created_at, r.updated_at,
		        e.id, e.title, e.description, e.date, e.location, e.latitude, e.longitude,
		        e.poster, e.max_capacity, e.price, e.organizer_id, e.is_active, e.created_at, e.updated_at,
		        u.id, u.name, u.email
		 FROM registrations r
		 JOIN events e ON e.id = r.event_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.token = $1
		 FOR UPDATE OF r`,
		token,
	).Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.Token, &reg.Code, &reg.PaymentStatus,
		&reg.PaymentProof, &state, &reg.HasEntered, &reg.EnteredAt, &reg.CreatedAt, &reg.UpdatedAt,
		&event.ID, &event.Title, &event.Description, &event.Date, &event.Location,
		&event.Latitude, &event.Longitude, &event.Poster, &event.MaxCapacity, &event.Price,
		&event.OrganizerID, &event.IsActive, &event.CreatedAt, &event.UpdatedAt,
		&user.ID, &user.Name, &user.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			_ = tx.Rollback(ctx)
			return &model.EntryDecision{Status: model.EntryStatusInvalid}, nil
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if state != nil {
		reg.EntryState = model.EntryState(*state)
	}
	reg.EntryState = model.NormalizeEntryState(reg.EntryState)

	d := model.EvaluateEntry(&reg, &event, &user, now, loc)
	if d.Valid {
		_, err = tx.Exec(ctx,
			`UPDATE registrations
			 SET entry_state = $2, has_entered = TRUE, entered_at = $3, updated_at = $3
			 WHERE id = $1`,
			reg.ID, string(model.EntryUsed), now,
		)
		if err != nil {
			return nil, fmt.Errorf("consume entry: %w", err)
		}
		entered := now
		d.EntryState = model.EntryUsed
		d.EnteredAt = &entered
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &d, nil
}
