// Package repository implements all database queries for the photographer
// assignment system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a photographer email is already taken.
var ErrDuplicateEmail = errors.New("photographer with this email already exists")

// ErrConflict is returned when a write lost a race against a concurrent
// transaction (unique violation, serialization failure, deadlock).
var ErrConflict = errors.New("conflicting concurrent write")

const emailConstraint = "photographers_email_key"

// NewID returns a time-ordered identity, so ascending ids follow creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// validID reports whether id can be a primary key. Anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	_ dbtx = (*pgxpool.Pool)(nil)
	_ dbtx = (pgx.Tx)(nil)
)

// mapPgError translates driver errors into package sentinels, keeping the cause.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		if pgErr.ConstraintName == emailConstraint {
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// NewPostgresStore wires every pgx-backed repository onto pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Events:        NewEventRepository(pool),
		Photographers: NewPhotographerRepository(pool),
		Assignments:   NewAssignmentRepository(pool),
		Outbox:        NewOutboxRepository(pool),
		Tx:            NewTransactionManager(pool),
	}
}

var (
	_ EventRepository        = (*EventRepositoryImpl)(nil)
	_ PhotographerRepository = (*PhotographerRepositoryImpl)(nil)
	_ AssignmentRepository   = (*AssignmentRepositoryImpl)(nil)
	_ OutboxRepository       = (*OutboxRepositoryImpl)(nil)
	_ TransactionManager     = (*TransactionManagerImpl)(nil)
	_ AssignmentTx           = (*pgAssignmentTx)(nil)
)
