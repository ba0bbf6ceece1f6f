package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/database"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

// testDBLock matches the repository tests so the two packages never share
// TEST_DATABASE_URL at the same time.
const testDBLock = 0x70687465

func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cfg.MaxConns = 24
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, testDBLock); err != nil {
		conn.Release()
		t.Fatalf("lock test database: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, testDBLock)
		conn.Release()
	})

	if err := database.MigrateUp(url); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`TRUNCATE assignments, events, photographers, outbox_events RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	store := repository.NewPostgresStore(pool)
	svc := NewAssignmentService(store.Tx,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{t: t, store: store, svc: svc}
}

func postgresDate(days int) model.Date {
	return model.DateOf(time.Now()).AddDays(days)
}

// runConcurrently assigns every id at once and returns the results by event id.
// Any failure other than an expected rejection fails the test.
func runConcurrently(t *testing.T, svc *AssignmentService, ids []string) map[string]*model.AssignmentResult {
	t.Helper()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		start   = make(chan struct{})
		results = map[string]*model.AssignmentResult{}
	)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.AssignPhotographers(context.Background(), id)
			switch {
			case err == nil:
				mu.Lock()
				results[fmt.Sprintf("%s#%d", id, i)] = res
				mu.Unlock()
			case errors.Is(err, ErrInsufficientPhotographers),
				errors.Is(err, ErrAlreadyAssigned),
				errors.Is(err, ErrConcurrencyConflict):
			default:
				t.Errorf("unexpected error for %s: %v", id, err)
			}
		}()
	}
	close(start)
	wg.Wait()
	return results
}

func TestPostgres_ConcurrentSameDateEventsAreDisjoint(t *testing.T) {
	f := newPostgresFixture(t)
	for i := range 5 {
		f.photographer(fmt.Sprintf("shooter%d", i), true)
	}
	date := postgresDate(40)
	var ids []string
	for i := range 6 {
		ids = append(ids, f.event(fmt.Sprintf("Party %d", i), date, 2).ID)
	}

	results := runConcurrently(t, f.svc, ids)

	// Five free photographers cover at most two events needing two each.
	if len(results) != 2 {
		t.Fatalf("expected 2 successful runs, got %d", len(results))
	}
	seen := map[string]string{}
	for _, res := range results {
		if len(res.AssignedPhotographers) != 2 {
			t.Fatalf("event %s got %d photographers", res.Event.ID, len(res.AssignedPhotographers))
		}
		if n := f.assignmentCount(res.Event.ID); n != 2 {
			t.Fatalf("event %s has %d rows, want 2", res.Event.ID, n)
		}
		for _, p := range res.AssignedPhotographers {
			if other, dup := seen[p.ID]; dup {
				t.Fatalf("photographer %s booked for %s and %s on %s", p.ID, other, res.Event.ID, date)
			}
			seen[p.ID] = res.Event.ID
		}
	}

	total := 0
	for _, id := range ids {
		total += f.assignmentCount(id)
	}
	if total != 4 {
		t.Fatalf("expected 4 rows across all events, got %d", total)
	}
}

func TestPostgres_ConcurrentSameEventAssignsOnce(t *testing.T) {
	f := newPostgresFixture(t)
	for i := range 4 {
		f.photographer(fmt.Sprintf("shooter%d", i), true)
	}
	ev := f.event("Contested", postgresDate(12), 2)

	ids := make([]string, 8)
	for i := range ids {
		ids[i] = ev.ID
	}
	results := runConcurrently(t, f.svc, ids)

	if len(results) != 1 {
		t.Fatalf("expected exactly one success, got %d", len(results))
	}
	if n := f.assignmentCount(ev.ID); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestPostgres_AssignPhotographersEndToEnd(t *testing.T) {
	f := newPostgresFixture(t)
	f.photographer("alice", true)
	f.photographer("bob", true)
	inactive := f.photographer("carol", false)
	ev := f.event("Wedding", postgresDate(10), 2)

	res, err := f.svc.AssignPhotographers(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, p := range res.AssignedPhotographers {
		if p.ID == inactive.ID {
			t.Fatal("inactive photographer assigned")
		}
	}

	_, err = f.svc.AssignPhotographers(context.Background(), ev.ID)
	var already *AlreadyAssignedError
	if !errors.As(err, &already) || already.AssignedCount != 2 {
		t.Fatalf("expected AlreadyAssigned with 2, got %v", err)
	}

	pending, err := f.store.Outbox.GetUnpublishedEvents(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d (%v)", len(pending), err)
	}
}
