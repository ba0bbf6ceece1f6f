// Package model defines the core domain types for the photographer assignment system.
package model

import "time"

// Event is a dated occasion that needs a fixed number of photographers.
type Event struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"event_name"`
	Date                  Date      `json:"event_date"`
	PhotographersRequired int       `json:"photographers_required"`
	CreatedAt             time.Time `json:"created_at"`
}

// Photographer is a person who can be assigned to events.
type Photographer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

// Assignment links one photographer to one event.
type Assignment struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	PhotographerID string    `json:"photographer_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventDetail is an event together with the photographers assigned to it.
type EventDetail struct {
	Event
	AssignedPhotographers []Photographer `json:"assigned_photographers"`
}

// AssignmentView is the read projection of one assignment of an event.
type AssignmentView struct {
	ID           string       `json:"id"`
	Photographer Photographer `json:"photographer"`
	EventID      string       `json:"event"`
}

// PhotographerSchedule is a photographer together with the events they cover.
type PhotographerSchedule struct {
	Photographer
	AssignedEvents []Event `json:"assigned_events"`
}

// CreateEventRequest is the payload for creating or replacing an event.
type CreateEventRequest struct {
	Name                  string `json:"event_name"`
	Date                  Date   `json:"event_date"`
	PhotographersRequired int    `json:"photographers_required"`
}

// UpdateEventRequest carries a partial event update. Nil fields are left unchanged.
type UpdateEventRequest struct {
	Name                  *string `json:"event_name"`
	Date                  *Date   `json:"event_date"`
	PhotographersRequired *int    `json:"photographers_required"`
}

// CreatePhotographerRequest is the payload for creating or replacing a photographer.
type CreatePhotographerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active"`
}

// UpdatePhotographerRequest carries a partial photographer update.
type UpdatePhotographerRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// AssignmentResult is the outcome of a successful assignment run.
type AssignmentResult struct {
	Message               string         `json:"message"`
	Event                 EventDetail    `json:"event"`
	AssignedPhotographers []Photographer `json:"assigned_photographers"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
