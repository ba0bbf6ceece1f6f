package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
)

// dateLockNamespace is the first key of pg_advisory_xact_lock(int, int);
// the second key is the event date in days since the epoch.
const dateLockNamespace int32 = 0x70686f74

// TransactionManagerImpl runs assignment units on PostgreSQL.
//
// ─────────────────────────────────────────────────────────────────────────────
// RACE CONDITION EXPLAINED
// ─────────────────────────────────────────────────────────────────────────────
//
// The unique constraint is keyed on (event_id, photographer_id), so it only
// stops the same photographer landing twice on ONE event. Two events on the
// same day are a different story:
//
//	unit A (event X, 2026-06-01): booked-on-date → {}   picks P1
//	unit B (event Y, 2026-06-01): booked-on-date → {}   picks P1
//	unit A: INSERT (X, P1) COMMIT
//	unit B: INSERT (Y, P1) COMMIT
//	Result: P1 is double-booked on 2026-06-01 and no constraint fired.
//
// SOLUTION: three locks, always taken in the same order.
//
//  1. SELECT … FOR UPDATE on the event row. A second run for the same event
//     blocks here, then sees the first run's rows and reports AlreadyAssigned.
//  2. pg_advisory_xact_lock(namespace, day). Every unit touching that calendar
//     day queues here. Under READ COMMITTED each later statement takes a fresh
//     snapshot, so the booked-on-date read that follows the lock sees every
//     assignment committed by the previous holder.
//  3. SELECT … FOR SHARE on the active photographers. A concurrent
//     deactivation waits for the unit to end instead of committing between
//     the candidate read and the insert.
//
// All of them are released by COMMIT or ROLLBACK; nothing outlives the unit.
// Any unique/serialization/deadlock error that still slips through is mapped
// to ErrConflict and the whole unit is rolled back.
// ─────────────────────────────────────────────────────────────────────────────
type TransactionManagerImpl struct {
	pool *pgxpool.Pool
}

// NewTransactionManager creates a new TransactionManager implementation.
func NewTransactionManager(pool *pgxpool.Pool) *TransactionManagerImpl {
	return &TransactionManagerImpl{pool: pool}
}

// WithTransaction executes fn within a READ COMMITTED transaction.
func (tm *TransactionManagerImpl) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx AssignmentTx) error) (err error) {
	tx, err := tm.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning ErrTxClosed.
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(ctx, &pgAssignmentTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapPgError(err))
	}
	return nil
}

// pgAssignmentTx implements AssignmentTx over one pgx.Tx.
type pgAssignmentTx struct {
	tx pgx.Tx
}

func (t *pgAssignmentTx) LockEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if !validID(eventID) {
		return nil, ErrNotFound
	}
	e, err := scanEvent(t.tx.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	))
	if err != nil {
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return e, nil
}

func (t *pgAssignmentTx) LockDate(ctx context.Context, date model.Date) error {
	if _, err := t.tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock($1, $2)`,
		dateLockNamespace, int32(date.DaysSinceEpoch()),
	); err != nil {
		return fmt.Errorf("lock event date: %w", mapPgError(err))
	}
	return nil
}

func (t *pgAssignmentTx) CountAssignments(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE event_id = $1`, eventID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return n, nil
}

func (t *pgAssignmentTx) BookedPhotographerIDs(ctx context.Context, date model.Date) ([]string, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT DISTINCT a.photographer_id
		 FROM assignments a
		 JOIN events e ON e.id = a.event_id
		 WHERE e.event_date = $1`,
		date.Time(),
	)
	if err != nil {
		return nil, fmt.Errorf("booked photographers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan booked photographers: %w", err)
	}
	return ids, nil
}

func (t *pgAssignmentTx) ActivePhotographers(ctx context.Context) ([]model.Photographer, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+photographerColumns+`
		 FROM photographers
		 WHERE is_active
		 ORDER BY id
		 FOR SHARE`,
	)
	if err != nil {
		return nil, fmt.Errorf("active photographers: %w", err)
	}
	return collectPhotographers(rows)
}

// CreateAssignments inserts one row per photographer in a single batch.
func (t *pgAssignmentTx) CreateAssignments(ctx context.Context, eventID string, photographerIDs []string) ([]model.Assignment, error) {
	now := time.Now().UTC()
	out := make([]model.Assignment, 0, len(photographerIDs))
	batch := &pgx.Batch{}
	for _, pid := range photographerIDs {
		a := model.Assignment{ID: NewID(), EventID: eventID, PhotographerID: pid, CreatedAt: now}
		batch.Queue(
			`INSERT INTO assignments (id, event_id, photographer_id, created_at)
			 VALUES ($1, $2, $3, $4)`,
			a.ID, a.EventID, a.PhotographerID, a.CreatedAt,
		)
		out = append(out, a)
	}

	br := t.tx.SendBatch(ctx, batch)
	for range photographerIDs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert assignment: %w", mapPgError(err))
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert assignments: %w", mapPgError(err))
	}
	return out, nil
}

func (t *pgAssignmentTx) PhotographersForEvent(ctx context.Context, eventID string) ([]model.Photographer, error) {
	return photographersForEvent(ctx, t.tx, eventID)
}

func (t *pgAssignmentTx) CreateOutboxEvent(ctx context.Context, params *model.CreateOutboxEventParams) error {
	return createOutboxEvent(ctx, t.tx, params)
}
