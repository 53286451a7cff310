package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"videoinvites/internal/domain"
)

const (
	uniqueViolation = "23505"
	// invalidTextRepresentation is what Postgres answers when an id is not a valid UUID.
	invalidTextRepresentation = "22P02"
)

//go:embed schema.sql
var schema string

// Open connects to Postgres through lib/pq and checks the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// errCapacityReached aborts a transaction whose conditional insert matched no rows.
var errCapacityReached = errors.New("capacity reached")

// dbError maps a driver error to a DatabaseError. Unique violations keep the constraint name
// so callers can tell which key collided. A malformed id cannot match any row and is a NotFound.
func dbError(err error) *domain.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return domain.NewDatabaseError(err.Error())
	}
	switch pqErr.Code {
	case invalidTextRepresentation:
		return domain.NewNotFoundError("no record found with specified ID")
	case uniqueViolation:
		if pqErr.Constraint != "" {
			return domain.NewDatabaseError(fmt.Sprintf("%s (constraint %s)", pqErr.Message, pqErr.Constraint))
		}
		return domain.NewDatabaseError(pqErr.Message)
	}
	return domain.NewDatabaseError(err.Error())
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rollbackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lockEvent takes a row lock on the event so capacity checks in the same transaction
// see every committed sibling row.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID string) error {
	var id string
	return tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
}

// affected returns a NotFound failure when the statement touched no rows.
func affected(result sql.Result, id, notFound string) domain.Result[string] {
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	if rows == 0 {
		return domain.Fail[string](domain.NewNotFoundError(notFound))
	}
	return domain.Ok(id)
}
