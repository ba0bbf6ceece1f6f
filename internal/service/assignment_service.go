package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

// AssignedMessage is returned with every successful assignment run.
const AssignedMessage = "Photographers assigned successfully"

// AssignmentService is the assignment engine: it books the required number of
// active, free photographers onto an event in one atomic unit, or rejects the
// request without touching the store.
type AssignmentService struct {
	transactionMgr repository.TransactionManager
	availability   AvailabilityResolver
	now            func() time.Time
	log            *slog.Logger
}

// AssignmentOption configures an AssignmentService.
type AssignmentOption func(*AssignmentService)

// WithClock sets the clock that decides what "today" is. The calendar day is
// taken in the location of the returned time.
func WithClock(now func() time.Time) AssignmentOption {
	return func(s *AssignmentService) { s.now = now }
}

// WithLogger sets the logger used for rejections and commits.
func WithLogger(l *slog.Logger) AssignmentOption {
	return func(s *AssignmentService) { s.log = l }
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(transactionMgr repository.TransactionManager, opts ...AssignmentOption) *AssignmentService {
	s := &AssignmentService{
		transactionMgr: transactionMgr,
		now:            time.Now,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssignPhotographers assigns photographers to eventID.
//
// The event row lock makes a second run for the same event wait and then
// report AlreadyAssigned. The date lock makes runs for different events on
// the same day see each other's bookings. Both are released when the unit ends.
func (s *AssignmentService) AssignPhotographers(ctx context.Context, eventID string) (*model.AssignmentResult, error) {
	var result *model.AssignmentResult

	err := s.transactionMgr.WithTransaction(ctx, func(ctx context.Context, tx repository.AssignmentTx) error {
		event, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			return err
		}

		required := event.PhotographersRequired
		if required < 1 {
			return ErrInvalidRequirement
		}
		if event.Date.Before(model.DateOf(s.now())) {
			return ErrPastEvent
		}

		if err := tx.LockDate(ctx, event.Date); err != nil {
			return err
		}

		assigned, err := tx.CountAssignments(ctx, event.ID)
		if err != nil {
			return err
		}
		if assigned > 0 {
			return &AlreadyAssignedError{AssignedCount: assigned}
		}

		booked, err := s.availability.BookedOn(ctx, tx, event.Date)
		if err != nil {
			return err
		}
		active, err := tx.ActivePhotographers(ctx)
		if err != nil {
			return fmt.Errorf("load active photographers: %w", err)
		}

		selected := selectCandidates(active, booked, required)
		if len(selected) < required {
			return &InsufficientPhotographersError{Required: required, Available: len(selected)}
		}

		ids := make([]string, len(selected))
		for i, p := range selected {
			ids[i] = p.ID
		}
		if _, err := tx.CreateAssignments(ctx, event.ID, ids); err != nil {
			// A photographer or the pair changed under us.
			if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
			}
			return err
		}

		if err := s.createOutboxEvent(ctx, tx, event, ids); err != nil {
			return err
		}

		current, err := tx.PhotographersForEvent(ctx, event.ID)
		if err != nil {
			return err
		}

		result = &model.AssignmentResult{
			Message:               AssignedMessage,
			Event:                 model.EventDetail{Event: *event, AssignedPhotographers: current},
			AssignedPhotographers: selected,
		}
		return nil
	})

	if err != nil {
		return nil, s.reject(ctx, eventID, err)
	}

	s.log.InfoContext(ctx, "photographers assigned",
		"event_id", eventID,
		"event_date", result.Event.Date.String(),
		"count", len(result.AssignedPhotographers),
	)
	return result, nil
}

// selectCandidates returns up to limit active photographers that are not in
// booked, keeping the order of active.
func selectCandidates(active []model.Photographer, booked BookedSet, limit int) []model.Photographer {
	out := make([]model.Photographer, 0, limit)
	for _, p := range active {
		if len(out) == limit {
			break
		}
		if !p.IsActive || booked.Has(p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *AssignmentService) createOutboxEvent(ctx context.Context, tx repository.AssignmentTx, event *model.Event, ids []string) error {
	payload, err := json.Marshal(model.PhotographersAssignedEvent{
		EventID:         event.ID,
		EventDate:       event.Date,
		PhotographerIDs: ids,
		AssignedAt:      s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	if err := tx.CreateOutboxEvent(ctx, &model.CreateOutboxEventParams{
		AggregateID: "event_" + event.ID,
		EventType:   model.EventTypePhotographersAssigned,
		Payload:     payload,
	}); err != nil {
		return fmt.Errorf("create outbox event: %w", err)
	}
	return nil
}

// reject logs a failed run and returns the error the caller should see.
func (s *AssignmentService) reject(ctx context.Context, eventID string, err error) error {
	var (
		already      *AlreadyAssignedError
		insufficient *InsufficientPhotographersError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound) && !errors.Is(err, ErrConcurrencyConflict):
		s.log.InfoContext(ctx, "assignment rejected", "event_id", eventID, "reason", "not_found")
		return repository.ErrNotFound
	case errors.Is(err, ErrInvalidRequirement):
		s.log.InfoContext(ctx, "assignment rejected", "event_id", eventID, "reason", "invalid_requirement")
	case errors.Is(err, ErrPastEvent):
		s.log.InfoContext(ctx, "assignment rejected", "event_id", eventID, "reason", "past_event")
	case errors.As(err, &already):
		s.log.InfoContext(ctx, "assignment rejected", "event_id", eventID, "reason", "already_assigned",
			"assigned_count", already.AssignedCount)
	case errors.As(err, &insufficient):
		s.log.InfoContext(ctx, "assignment rejected", "event_id", eventID, "reason", "insufficient_photographers",
			"required", insufficient.Required, "available", insufficient.Available)
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, repository.ErrConflict):
		s.log.WarnContext(ctx, "assignment conflicted", "event_id", eventID, "error", err)
		return ErrConcurrencyConflict
	default:
		s.log.ErrorContext(ctx, "assignment failed", "event_id", eventID, "error", err)
		return fmt.Errorf("assign photographers: %w", err)
	}
	return err
}
