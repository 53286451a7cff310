package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"videoinvites/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, ownerID, name string, deadline time.Time) domain.Result[string] {
	query := `
		INSERT INTO events (owner_id, name, deadline)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id string
	if err := r.DB.QueryRowContext(ctx, query, ownerID, name, deadline).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[string](domain.NewDatabaseError("error during insertion of the new event"))
		}
		return domain.Fail[string](dbError(err))
	}
	return domain.Ok(id)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) domain.Result[*domain.Event] {
	query := `
		SELECT id, owner_id, name, deadline, created_at
		FROM events
		WHERE id = $1
		LIMIT 1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.OwnerID, &e.Name, &e.Deadline, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[*domain.Event](domain.NewNotFoundError("no event found with specified ID"))
		}
		return domain.Fail[*domain.Event](dbError(err))
	}
	return domain.Ok(e)
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) domain.Result[[]*domain.Event] {
	query := `
		SELECT id, owner_id, name, deadline, created_at
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return domain.Fail[[]*domain.Event](dbError(err))
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Deadline, &e.CreatedAt); err != nil {
			return domain.Fail[[]*domain.Event](dbError(err))
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Fail[[]*domain.Event](dbError(err))
	}
	if len(events) == 0 {
		return domain.Fail[[]*domain.Event](domain.NewNotFoundError("no events found for specified owner"))
	}
	return domain.Ok(events)
}

func (r *eventRepository) Delete(ctx context.Context, id string) domain.Result[string] {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	return affected(result, id, "no event found with specified ID")
}

func (r *eventRepository) GetEventInvitee(ctx context.Context, eventID, inviteeID string) domain.Result[*domain.EventInvitee] {
	query := `
		SELECT e.id, i.id, e.created_at, e.deadline
		FROM events e
		JOIN invitees i ON i.event_id = e.id
		WHERE e.id = $1 AND i.id = $2
		LIMIT 1
	`
	ei := &domain.EventInvitee{}
	err := r.DB.QueryRowContext(ctx, query, eventID, inviteeID).Scan(&ei.EventID, &ei.InviteeID, &ei.EventCreatedAt, &ei.EventDeadline)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[*domain.EventInvitee](domain.NewNotFoundError("event-invitee association with specified IDs not found"))
		}
		return domain.Fail[*domain.EventInvitee](dbError(err))
	}
	return domain.Ok(ei)
}
