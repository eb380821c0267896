package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, date, location, latitude, longitude, poster,
	max_capacity, price, organizer_id, is_active, created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Latitude, &e.Longitude,
		&e.Poster, &e.MaxCapacity, &e.Price, &e.OrganizerID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("event not found")
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.Latitude, e.Longitude,
		e.Poster, e.MaxCapacity, e.Price, e.OrganizerID, e.IsActive, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or NotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// Update persists all mutable event fields in one statement.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, date = $4, location = $5, latitude = $6,
		     longitude = $7, poster = $8, max_capacity = $9, price = $10,
		     is_active = $11, updated_at = $12
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.Latitude, e.Longitude,
		e.Poster, e.MaxCapacity, e.Price, e.IsActive, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

// Delete removes an event and, via ON DELETE CASCADE, its registrations.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

const eventWithCountQuery = `
	SELECT ` + eventColumns + `,
	       (SELECT COUNT(*) FROM registrations r
	        WHERE r.event_id = events.id AND r.payment_status = 'paid') AS paid_count
	FROM events`

func (r *EventRepository) listWithCount(ctx context.Context, query string, args ...any) ([]model.EventWithCount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.EventWithCount
	for rows.Next() {
		var e model.EventWithCount
		err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Latitude, &e.Longitude,
			&e.Poster, &e.MaxCapacity, &e.Price, &e.OrganizerID, &e.IsActive, &e.CreatedAt,
			&e.UpdatedAt, &e.PaidCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListUpcoming returns active events that have not yet started, soonest
// first, each with its confirmed registration count.
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.EventWithCount, error) {
	return r.listWithCount(ctx,
		eventWithCountQuery+` WHERE is_active AND date >= $1 ORDER BY date ASC`, now)
}

// ListByOrganizer returns all events owned by the organizer, newest first.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]model.EventWithCount, error) {
	return r.listWithCount(ctx,
		eventWithCountQuery+` WHERE organizer_id = $1 ORDER BY date DESC`, organizerID)
}
