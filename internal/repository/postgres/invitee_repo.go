package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"videoinvites/internal/domain"
)

type inviteeRepository struct {
	DB *sql.DB
}

func NewInviteeRepository(db *sql.DB) domain.InviteeRepository {
	return &inviteeRepository{DB: db}
}

// CreateMany inserts every name or none. The event row is locked first so the
// capacity check and the insert see the same invitee count.
func (r *inviteeRepository) CreateMany(ctx context.Context, eventID string, names []string) domain.Result[[]*domain.Invitee] {
	query := `
		INSERT INTO invitees (event_id, name)
		SELECT $1, n FROM unnest($2::text[]) AS n
		WHERE (SELECT count(*) FROM invitees WHERE event_id = $1) + cardinality($2::text[]) <= $3
		RETURNING id, name, created_at
	`
	invitees := make([]*domain.Invitee, 0, len(names))
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, query, eventID, pq.Array(names), domain.MaxInvitees)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			inv := &domain.Invitee{}
			if err := rows.Scan(&inv.ID, &inv.Name, &inv.CreatedAt); err != nil {
				return err
			}
			invitees = append(invitees, inv)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(invitees) != len(names) {
			return errCapacityReached
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.Fail[[]*domain.Invitee](domain.NewNotFoundError("no event found with specified ID"))
		case errors.Is(err, errCapacityReached):
			return domain.Fail[[]*domain.Invitee](domain.NewDatabaseError("error during insertion of the new invitees"))
		}
		return domain.Fail[[]*domain.Invitee](dbError(err))
	}
	return domain.Ok(invitees)
}

func (r *inviteeRepository) ListByEventID(ctx context.Context, eventID string) domain.Result[[]*domain.Invitee] {
	query := `
		SELECT id, name, created_at
		FROM invitees
		WHERE event_id = $1
		ORDER BY created_at, name
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return domain.Fail[[]*domain.Invitee](dbError(err))
	}
	defer rows.Close()
	var invitees []*domain.Invitee
	for rows.Next() {
		inv := &domain.Invitee{}
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.CreatedAt); err != nil {
			return domain.Fail[[]*domain.Invitee](dbError(err))
		}
		invitees = append(invitees, inv)
	}
	if err := rows.Err(); err != nil {
		return domain.Fail[[]*domain.Invitee](dbError(err))
	}
	if len(invitees) == 0 {
		return domain.Fail[[]*domain.Invitee](domain.NewNotFoundError("no invitees found for specified event"))
	}
	return domain.Ok(invitees)
}

func (r *inviteeRepository) Delete(ctx context.Context, eventID, inviteeID string) domain.Result[string] {
	query := `DELETE FROM invitees WHERE event_id = $1 AND id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, inviteeID)
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	return affected(result, inviteeID, "no invitee found with specified ID for the event")
}
