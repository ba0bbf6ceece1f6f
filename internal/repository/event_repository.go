package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
)

const eventColumns = `id, event_name, event_date, photographers_required, created_at`

// EventRepositoryImpl handles persistence for events.
type EventRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

// Create inserts a new event and returns it with a generated id.
func (r *EventRepositoryImpl) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		ID:                    NewID(),
		Name:                  req.Name,
		Date:                  req.Date,
		PhotographersRequired: req.PhotographersRequired,
		CreatedAt:             time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, event_name, event_date, photographers_required, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.Name, event.Date.Time(), event.PhotographersRequired, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", mapPgError(err))
	}
	return event, nil
}

// List returns all events ordered by creation time descending.
func (r *EventRepositoryImpl) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update replaces the mutable fields of an existing event.
func (r *EventRepositoryImpl) Update(ctx context.Context, event *model.Event) (*model.Event, error) {
	if !validID(event.ID) {
		return nil, ErrNotFound
	}
	e, err := scanEvent(r.db.QueryRow(ctx,
		`UPDATE events
		 SET event_name = $2, event_date = $3, photographers_required = $4
		 WHERE id = $1
		 RETURNING `+eventColumns,
		event.ID, event.Name, event.Date.Time(), event.PhotographersRequired,
	))
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

// Delete removes an event; its assignments go with it.
func (r *EventRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanEvent maps one event row; pgx.ErrNoRows becomes ErrNotFound.
func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e    model.Event
		date time.Time
	)
	if err := row.Scan(&e.ID, &e.Name, &date, &e.PhotographersRequired, &e.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	e.Date = model.DateOf(date)
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
