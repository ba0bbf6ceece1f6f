package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository/memory"
)

var fixedNow = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

func today() model.Date { return model.DateOf(fixedNow) }

type fixture struct {
	t     *testing.T
	store *repository.Store
	svc   *AssignmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.WithClock(func() time.Time { return fixedNow }))
	svc := NewAssignmentService(store.Tx,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{t: t, store: store, svc: svc}
}

func (f *fixture) photographer(name string, active bool) *model.Photographer {
	f.t.Helper()
	p, err := f.store.Photographers.Create(context.Background(), model.CreatePhotographerRequest{
		Name: name, Email: name + "@example.com", Phone: "+100", IsActive: &active,
	})
	if err != nil {
		f.t.Fatalf("create photographer %s: %v", name, err)
	}
	return p
}

// event bypasses service validation so invalid rows can be stored.
func (f *fixture) event(name string, date model.Date, required int) *model.Event {
	f.t.Helper()
	e, err := f.store.Events.Create(context.Background(), model.CreateEventRequest{
		Name: name, Date: date, PhotographersRequired: required,
	})
	if err != nil {
		f.t.Fatalf("create event %s: %v", name, err)
	}
	return e
}

func (f *fixture) assignmentCount(eventID string) int {
	f.t.Helper()
	views, err := f.store.Assignments.ListByEvent(context.Background(), eventID)
	if err != nil {
		f.t.Fatalf("list assignments: %v", err)
	}
	return len(views)
}

func ids(ps []model.Photographer) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestAssignPhotographers_ExcludesInactive(t *testing.T) {
	f := newFixture(t)
	a := f.photographer("alice", true)
	b := f.photographer("bob", true)
	c := f.photographer("carol", false)
	ev := f.event("Wedding", today().AddDays(10), 2)

	res, err := f.svc.AssignPhotographers(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if res.Message != AssignedMessage {
		t.Errorf("message = %q", res.Message)
	}
	got := ids(res.AssignedPhotographers)
	if len(got) != 2 || slices.Contains(got, c.ID) {
		t.Fatalf("expected alice and bob, got %v", got)
	}
	if !slices.Contains(got, a.ID) || !slices.Contains(got, b.ID) {
		t.Fatalf("expected alice and bob, got %v", got)
	}
	if len(res.Event.AssignedPhotographers) != 2 || res.Event.ID != ev.ID {
		t.Fatalf("event projection not updated: %+v", res.Event)
	}
	if n := f.assignmentCount(ev.ID); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestAssignPhotographers_Insufficient(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	f.photographer("bob", true)
	f.photographer("carol", false)
	ev := f.event("Festival", today().AddDays(3), 5)

	_, err := f.svc.AssignPhotographers(context.Background(), ev.ID)

	var insufficient *InsufficientPhotographersError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientPhotographersError, got %v", err)
	}
	if insufficient.Required != 5 || insufficient.Available != 2 {
		t.Fatalf("required/available = %d/%d, want 5/2", insufficient.Required, insufficient.Available)
	}
	if !errors.Is(err, ErrInsufficientPhotographers) {
		t.Fatal("expected error to match ErrInsufficientPhotographers")
	}
	if n := f.assignmentCount(ev.ID); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestAssignPhotographers_SameDateEventsAreDisjoint(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	f.photographer("bob", true)
	date := today().AddDays(20)
	first := f.event("Morning", date, 1)
	second := f.event("Evening", date, 1)

	r1, err := f.svc.AssignPhotographers(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	r2, err := f.svc.AssignPhotographers(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if r1.AssignedPhotographers[0].ID == r2.AssignedPhotographers[0].ID {
		t.Fatalf("photographer %s double-booked on %s", r1.AssignedPhotographers[0].ID, date)
	}

	third := f.event("Night", date, 1)
	_, err = f.svc.AssignPhotographers(context.Background(), third.ID)
	var insufficient *InsufficientPhotographersError
	if !errors.As(err, &insufficient) || insufficient.Available != 0 {
		t.Fatalf("expected nobody left on %s, got %v", date, err)
	}
}

func TestAssignPhotographers_OtherDatesDoNotBlock(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	busy := f.event("Monday", today().AddDays(1), 1)
	free := f.event("Tuesday", today().AddDays(2), 1)

	if _, err := f.svc.AssignPhotographers(context.Background(), busy.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AssignPhotographers(context.Background(), free.ID); err != nil {
		t.Fatalf("booking on another date should not block: %v", err)
	}
}

func TestAssignPhotographers_AlreadyAssigned(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	f.photographer("bob", true)
	ev := f.event("Launch", today().AddDays(5), 1)

	if _, err := f.svc.AssignPhotographers(context.Background(), ev.ID); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.AssignPhotographers(context.Background(), ev.ID)

	var already *AlreadyAssignedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyAssignedError, got %v", err)
	}
	if already.AssignedCount != 1 {
		t.Fatalf("assigned_count = %d, want 1", already.AssignedCount)
	}
	if n := f.assignmentCount(ev.ID); n != 1 {
		t.Fatalf("rerun changed rows: %d", n)
	}
}

func TestAssignPhotographers_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		date     model.Date
		required int
		want     error
	}{
		{"zero required", today().AddDays(1), 0, ErrInvalidRequirement},
		{"negative required", today().AddDays(1), -2, ErrInvalidRequirement},
		{"yesterday", today().AddDays(-1), 1, ErrPastEvent},
		{"invalid requirement wins over past date", today().AddDays(-30), 0, ErrInvalidRequirement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.photographer("alice", true)
			ev := f.event(tt.name, tt.date, tt.required)

			_, err := f.svc.AssignPhotographers(context.Background(), ev.ID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if n := f.assignmentCount(ev.ID); n != 0 {
				t.Fatalf("expected no rows, got %d", n)
			}
		})
	}
}

func TestAssignPhotographers_TodayIsNotPast(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	ev := f.event("Today", today(), 1)

	if _, err := f.svc.AssignPhotographers(context.Background(), ev.ID); err != nil {
		t.Fatalf("event today should be assignable: %v", err)
	}
}

func TestAssignPhotographers_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{repository.NewID(), "garbage"} {
		_, err := f.svc.AssignPhotographers(context.Background(), id)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestAssignPhotographers_DeterministicSelection(t *testing.T) {
	f := newFixture(t)
	var active []string
	for _, name := range []string{"dave", "erin", "frank", "grace", "heidi"} {
		active = append(active, f.photographer(name, true).ID)
	}
	sort.Strings(active)
	ev := f.event("Gala", today().AddDays(7), 3)

	res, err := f.svc.AssignPhotographers(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.AssignedPhotographers); !slices.Equal(got, active[:3]) {
		t.Fatalf("expected lowest ids %v, got %v", active[:3], got)
	}
}

func TestAssignPhotographers_WritesOutboxEvent(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	ev := f.event("Party", today().AddDays(4), 1)

	res, err := f.svc.AssignPhotographers(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}

	pending, err := f.store.Outbox.GetUnpublishedEvents(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d (%v)", len(pending), err)
	}
	row := pending[0]
	if row.EventType != model.EventTypePhotographersAssigned || row.AggregateID != "event_"+ev.ID {
		t.Fatalf("unexpected outbox row: %+v", row)
	}
	var payload model.PhotographersAssignedEvent
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.EventID != ev.ID || !payload.EventDate.Equal(ev.Date) ||
		!slices.Equal(payload.PhotographerIDs, ids(res.AssignedPhotographers)) {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestAssignPhotographers_RejectionWritesNoOutboxEvent(t *testing.T) {
	f := newFixture(t)
	ev := f.event("Empty", today().AddDays(4), 1)

	if _, err := f.svc.AssignPhotographers(context.Background(), ev.ID); err == nil {
		t.Fatal("expected rejection")
	}
	if pending, _ := f.store.Outbox.GetUnpublishedEvents(context.Background(), 10); len(pending) != 0 {
		t.Fatalf("rejected run wrote %d outbox rows", len(pending))
	}
}

func TestAssignPhotographers_ConcurrentSameDate(t *testing.T) {
	f := newFixture(t)
	const photographers, events = 4, 10
	for i := range photographers {
		f.photographer(string(rune('a'+i))+"-shooter", true)
	}
	date := today().AddDays(30)
	var eventIDs []string
	for i := range events {
		eventIDs = append(eventIDs, f.event(string(rune('A'+i)), date, 1).ID)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*model.AssignmentResult
	)
	for _, id := range eventIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.AssignPhotographers(context.Background(), id)
			if err != nil {
				if !errors.Is(err, ErrInsufficientPhotographers) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(results) != photographers {
		t.Fatalf("expected %d successful runs, got %d", photographers, len(results))
	}
	seen := map[string]bool{}
	for _, r := range results {
		pid := r.AssignedPhotographers[0].ID
		if seen[pid] {
			t.Fatalf("photographer %s booked twice on %s", pid, date)
		}
		seen[pid] = true
	}
}

func TestAssignPhotographers_ConcurrentSameEvent(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		f.photographer(name, true)
	}
	ev := f.event("Contested", today().AddDays(9), 2)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AssignPhotographers(context.Background(), ev.ID)
			switch {
			case err == nil:
				mu.Lock()
				successes++
				mu.Unlock()
			case !errors.Is(err, ErrAlreadyAssigned):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
	if n := f.assignmentCount(ev.ID); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

// conflictingTx simulates a concurrent writer winning the insert race.
type conflictingTx struct {
	repository.AssignmentTx
}

func (conflictingTx) CreateAssignments(context.Context, string, []string) ([]model.Assignment, error) {
	return nil, repository.ErrConflict
}

type conflictingManager struct {
	inner repository.TransactionManager
}

func (m conflictingManager) WithTransaction(ctx context.Context, fn func(context.Context, repository.AssignmentTx) error) error {
	return m.inner.WithTransaction(ctx, func(ctx context.Context, tx repository.AssignmentTx) error {
		return fn(ctx, conflictingTx{tx})
	})
}

func TestAssignPhotographers_ConflictIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	ev := f.event("Race", today().AddDays(2), 1)

	svc := NewAssignmentService(conflictingManager{f.store.Tx},
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, err := svc.AssignPhotographers(context.Background(), ev.ID)
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
	var retryable interface{ Retryable() bool }
	if !errors.As(err, &retryable) || !retryable.Retryable() {
		t.Fatal("expected conflict to be retryable")
	}
	if n := f.assignmentCount(ev.ID); n != 0 {
		t.Fatalf("expected rollback, got %d rows", n)
	}
}

func TestAssignPhotographers_UsesClockLocation(t *testing.T) {
	f := newFixture(t)
	f.photographer("alice", true)
	ev := f.event("Dawn", model.NewDate(2026, time.October, 17), 1)

	// 2026-10-18 01:00 in UTC+3 is still 2026-10-17 in UTC; the engine must
	// use the clock's own calendar day.
	zone := time.FixedZone("UTC+3", 3*60*60)
	svc := NewAssignmentService(f.store.Tx,
		WithClock(func() time.Time { return time.Date(2026, time.October, 18, 1, 0, 0, 0, zone) }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if _, err := svc.AssignPhotographers(context.Background(), ev.ID); !errors.Is(err, ErrPastEvent) {
		t.Fatalf("expected ErrPastEvent, got %v", err)
	}
}

func TestSelectCandidates(t *testing.T) {
	active := []model.Photographer{
		{ID: "1", IsActive: true},
		{ID: "2", IsActive: true},
		{ID: "3", IsActive: false},
		{ID: "4", IsActive: true},
	}
	booked := BookedSet{"2": {}}

	got := ids(selectCandidates(active, booked, 2))
	if !slices.Equal(got, []string{"1", "4"}) {
		t.Fatalf("got %v", got)
	}
	if got := selectCandidates(active, booked, 10); len(got) != 2 {
		t.Fatalf("expected pool of 2, got %d", len(got))
	}
}
