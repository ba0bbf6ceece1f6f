package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
)

// AssignmentRepositoryImpl serves read projections over assignments.
// Assignments are only ever written through TransactionManager.
type AssignmentRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepositoryImpl {
	return &AssignmentRepositoryImpl{db: db}
}

// ListByEvent returns the assignments of an event with their photographers.
func (r *AssignmentRepositoryImpl) ListByEvent(ctx context.Context, eventID string) ([]model.AssignmentView, error) {
	if !validID(eventID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.event_id, p.id, p.name, p.email, p.phone, p.is_active
		 FROM assignments a
		 JOIN photographers p ON p.id = a.photographer_id
		 WHERE a.event_id = $1
		 ORDER BY a.photographer_id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var views []model.AssignmentView
	for rows.Next() {
		var v model.AssignmentView
		p := &v.Photographer
		if err := rows.Scan(&v.ID, &v.EventID, &p.ID, &p.Name, &p.Email, &p.Phone, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// PhotographersForEvent returns the photographers assigned to an event.
func (r *AssignmentRepositoryImpl) PhotographersForEvent(ctx context.Context, eventID string) ([]model.Photographer, error) {
	if !validID(eventID) {
		return nil, nil
	}
	return photographersForEvent(ctx, r.db, eventID)
}

// EventsForPhotographer returns the events a photographer is assigned to,
// ordered by date then name.
func (r *AssignmentRepositoryImpl) EventsForPhotographer(ctx context.Context, photographerID string) ([]model.Event, error) {
	if !validID(photographerID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.event_name, e.event_date, e.photographers_required, e.created_at
		 FROM assignments a
		 JOIN events e ON e.id = a.event_id
		 WHERE a.photographer_id = $1
		 ORDER BY e.event_date, e.event_name, e.id`,
		photographerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list photographer events: %w", err)
	}
	return collectEvents(rows)
}

func photographersForEvent(ctx context.Context, q dbtx, eventID string) ([]model.Photographer, error) {
	rows, err := q.Query(ctx,
		`SELECT p.id, p.name, p.email, p.phone, p.is_active
		 FROM assignments a
		 JOIN photographers p ON p.id = a.photographer_id
		 WHERE a.event_id = $1
		 ORDER BY p.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list event photographers: %w", err)
	}
	return collectPhotographers(rows)
}
