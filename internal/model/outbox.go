package model

import "time"

// OutboxEvent is a domain event stored alongside the write that produced it,
// waiting to be relayed to the message stream.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// CreateOutboxEventParams holds the fields for a new outbox row.
type CreateOutboxEventParams struct {
	AggregateID string
	EventType   string
	Payload     []byte
}

// EventTypePhotographersAssigned is emitted after an assignment run commits.
const EventTypePhotographersAssigned = "photographers_assigned"

// PhotographersAssignedEvent is the payload of EventTypePhotographersAssigned.
type PhotographersAssignedEvent struct {
	EventID         string    `json:"event_id"`
	EventDate       Date      `json:"event_date"`
	PhotographerIDs []string  `json:"photographer_ids"`
	AssignedAt      time.Time `json:"assigned_at"`
}
