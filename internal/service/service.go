// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

const (
	maxNameLength  = 200
	maxPhoneLength = 20
)

// EventService orchestrates event CRUD.
type EventService struct {
	events repository.EventRepository
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events repository.EventRepository) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateEvent(req.Name, req.Date, req.PhotographersRequired); err != nil {
		return nil, err
	}
	return s.events.Create(ctx, req)
}

// ListEvents returns all events, newest first.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ReplaceEvent overwrites every mutable field of an event (PUT).
func (s *EventService) ReplaceEvent(ctx context.Context, id string, req model.CreateEventRequest) (*model.Event, error) {
	name := req.Name
	return s.UpdateEvent(ctx, id, model.UpdateEventRequest{
		Name:                  &name,
		Date:                  &req.Date,
		PhotographersRequired: &req.PhotographersRequired,
	})
}

// UpdateEvent applies the non-nil fields of req (PATCH).
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		event.Name = strings.TrimSpace(*req.Name)
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.PhotographersRequired != nil {
		event.PhotographersRequired = *req.PhotographersRequired
	}
	if err := validateEvent(event.Name, event.Date, event.PhotographersRequired); err != nil {
		return nil, err
	}
	return s.events.Update(ctx, event)
}

// DeleteEvent removes an event and its assignments.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

func validateEvent(name string, date model.Date, required int) error {
	switch {
	case name == "":
		return invalid("event_name", "event_name is required")
	case utf8.RuneCountInString(name) > maxNameLength:
		return invalid("event_name", "event_name cannot exceed %d characters", maxNameLength)
	case date.IsZero():
		return invalid("event_date", "event_date is required (YYYY-MM-DD)")
	case required < 1:
		return invalid("photographers_required", "photographers_required must be at least 1")
	}
	return nil
}

// PhotographerService orchestrates photographer CRUD.
type PhotographerService struct {
	photographers repository.PhotographerRepository
}

// NewPhotographerService constructs a PhotographerService.
func NewPhotographerService(photographers repository.PhotographerRepository) *PhotographerService {
	return &PhotographerService{photographers: photographers}
}

// CreatePhotographer validates and stores a new photographer. Emails are
// compared case-insensitively, so they are stored lower-cased.
func (s *PhotographerService) CreatePhotographer(ctx context.Context, req model.CreatePhotographerRequest) (*model.Photographer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validatePhotographer(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if req.IsActive == nil {
		active := true
		req.IsActive = &active
	}
	return s.photographers.Create(ctx, req)
}

// ListPhotographers returns all photographers ordered by name.
func (s *PhotographerService) ListPhotographers(ctx context.Context) ([]model.Photographer, error) {
	return s.photographers.List(ctx)
}

// GetPhotographer returns a single photographer by ID.
func (s *PhotographerService) GetPhotographer(ctx context.Context, id string) (*model.Photographer, error) {
	p, err := s.photographers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get photographer: %w", err)
	}
	return p, nil
}

// ReplacePhotographer overwrites every mutable field (PUT). An omitted
// is_active keeps its current value.
func (s *PhotographerService) ReplacePhotographer(ctx context.Context, id string, req model.CreatePhotographerRequest) (*model.Photographer, error) {
	name, email, phone := req.Name, req.Email, req.Phone
	return s.UpdatePhotographer(ctx, id, model.UpdatePhotographerRequest{
		Name:     &name,
		Email:    &email,
		Phone:    &phone,
		IsActive: req.IsActive,
	})
}

// UpdatePhotographer applies the non-nil fields of req (PATCH).
func (s *PhotographerService) UpdatePhotographer(ctx context.Context, id string, req model.UpdatePhotographerRequest) (*model.Photographer, error) {
	p, err := s.GetPhotographer(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		p.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Phone != nil {
		p.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validatePhotographer(p.Name, p.Email, p.Phone); err != nil {
		return nil, err
	}
	return s.photographers.Update(ctx, p)
}

// DeletePhotographer removes a photographer and their assignments.
func (s *PhotographerService) DeletePhotographer(ctx context.Context, id string) error {
	return s.photographers.Delete(ctx, id)
}

func validatePhotographer(name, email, phone string) error {
	switch {
	case name == "":
		return invalid("name", "name is required")
	case utf8.RuneCountInString(name) > maxNameLength:
		return invalid("name", "name cannot exceed %d characters", maxNameLength)
	case email == "":
		return invalid("email", "email is required")
	case !isValidEmail(email):
		return invalid("email", "email is not a valid email address")
	case phone == "":
		return invalid("phone", "phone is required")
	case utf8.RuneCountInString(phone) > maxPhoneLength:
		return invalid("phone", "phone cannot exceed %d characters", maxPhoneLength)
	}
	return nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
