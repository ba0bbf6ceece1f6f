package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

// BookedSet holds the ids of photographers that already cover an event on some date.
type BookedSet map[string]struct{}

// Has reports whether id is booked.
func (b BookedSet) Has(id string) bool {
	_, ok := b[id]
	return ok
}

// AvailabilityResolver answers which photographers are taken on a date.
// The lookup spans every event on that date, not a single event.
type AvailabilityResolver struct{}

// BookedOn reads through tx, so it sees the unit's own writes and every
// commit that finished before the unit took its date lock.
func (AvailabilityResolver) BookedOn(ctx context.Context, tx repository.AssignmentTx, date model.Date) (BookedSet, error) {
	ids, err := tx.BookedPhotographerIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("resolve bookings on %s: %w", date, err)
	}
	set := make(BookedSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
