package repository

import (
	"context"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
)

// EventRepository defines methods for event data access.
type EventRepository interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) (*model.Event, error)
	Delete(ctx context.Context, id string) error
}

// PhotographerRepository defines methods for photographer data access.
// Create expects req.IsActive to be resolved by the caller.
type PhotographerRepository interface {
	Create(ctx context.Context, req model.CreatePhotographerRequest) (*model.Photographer, error)
	List(ctx context.Context) ([]model.Photographer, error)
	GetByID(ctx context.Context, id string) (*model.Photographer, error)
	Update(ctx context.Context, p *model.Photographer) (*model.Photographer, error)
	Delete(ctx context.Context, id string) error
}

// AssignmentRepository exposes read projections over assignments.
type AssignmentRepository interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.AssignmentView, error)
	PhotographersForEvent(ctx context.Context, eventID string) ([]model.Photographer, error)
	EventsForPhotographer(ctx context.Context, photographerID string) ([]model.Event, error)
}

// OutboxRepository defines methods for outbox event data access.
type OutboxRepository interface {
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkAsPublished(ctx context.Context, id int64) error
}

// AssignmentTx is the set of operations available inside one assignment unit.
// Every read observes writes committed by units that finished before
// LockEvent/LockDate returned.
type AssignmentTx interface {
	// LockEvent loads the event and holds it until the unit ends.
	LockEvent(ctx context.Context, eventID string) (*model.Event, error)
	// LockDate serializes all units that assign photographers on date.
	LockDate(ctx context.Context, date model.Date) error
	CountAssignments(ctx context.Context, eventID string) (int, error)
	// BookedPhotographerIDs returns the ids of photographers assigned to any event on date.
	BookedPhotographerIDs(ctx context.Context, date model.Date) ([]string, error)
	// ActivePhotographers returns active photographers ordered by id ascending.
	// Their rows cannot be updated or deleted by others until the unit ends.
	ActivePhotographers(ctx context.Context) ([]model.Photographer, error)
	CreateAssignments(ctx context.Context, eventID string, photographerIDs []string) ([]model.Assignment, error)
	PhotographersForEvent(ctx context.Context, eventID string) ([]model.Photographer, error)
	CreateOutboxEvent(ctx context.Context, params *model.CreateOutboxEventParams) error
}

// TransactionManager runs fn inside one atomic unit. The unit commits when fn
// returns nil and rolls back otherwise.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx AssignmentTx) error) error
}

// Store bundles every repository a backend provides.
type Store struct {
	Events        EventRepository
	Photographers PhotographerRepository
	Assignments   AssignmentRepository
	Outbox        OutboxRepository
	Tx            TransactionManager
}
