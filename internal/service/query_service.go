package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

// QueryService serves read projections over events, photographers and
// their assignments.
type QueryService struct {
	events        repository.EventRepository
	photographers repository.PhotographerRepository
	assignments   repository.AssignmentRepository
}

// NewQueryService constructs a QueryService.
func NewQueryService(
	events repository.EventRepository,
	photographers repository.PhotographerRepository,
	assignments repository.AssignmentRepository,
) *QueryService {
	return &QueryService{events: events, photographers: photographers, assignments: assignments}
}

// EventDetail returns an event with its assigned photographers.
func (s *QueryService) EventDetail(ctx context.Context, eventID string) (*model.EventDetail, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.assignments.PhotographersForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event detail: %w", err)
	}
	if assigned == nil {
		assigned = []model.Photographer{}
	}
	return &model.EventDetail{Event: *event, AssignedPhotographers: assigned}, nil
}

// EventAssignments lists the assignments of an event.
func (s *QueryService) EventAssignments(ctx context.Context, eventID string) ([]model.AssignmentView, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	views, err := s.assignments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event assignments: %w", err)
	}
	if views == nil {
		views = []model.AssignmentView{}
	}
	return views, nil
}

// PhotographerSchedule returns a photographer with the events they are
// assigned to, ordered by date then name.
func (s *QueryService) PhotographerSchedule(ctx context.Context, photographerID string) (*model.PhotographerSchedule, error) {
	p, err := s.photographers.GetByID(ctx, photographerID)
	if err != nil {
		return nil, err
	}
	events, err := s.assignments.EventsForPhotographer(ctx, photographerID)
	if err != nil {
		return nil, fmt.Errorf("photographer schedule: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return &model.PhotographerSchedule{Photographer: *p, AssignedEvents: events}, nil
}
