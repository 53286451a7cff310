package postgres

import (
	"context"
	"database/sql"
	"errors"

	"videoinvites/internal/domain"
)

const persistenceFailed = "problem with event persistence operation"

type uploadRepository struct {
	DB *sql.DB
}

func NewUploadRepository(db *sql.DB) domain.UploadRepository {
	return &uploadRepository{DB: db}
}

// CreateInviteeUpload records the upload only while the event is below the upload cap
// and the invitee has not uploaded yet.
func (r *uploadRepository) CreateInviteeUpload(ctx context.Context, eventID, inviteeID, path string) domain.Result[string] {
	query := `
		INSERT INTO invitee_uploads (event_id, invitee_id, file_path)
		SELECT $1, $2, $3
		WHERE (SELECT count(*) FROM invitee_uploads WHERE event_id = $1) < $4
		  AND NOT EXISTS (SELECT 1 FROM invitee_uploads WHERE event_id = $1 AND invitee_id = $2)
		RETURNING id
	`
	var id string
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, query, eventID, inviteeID, path, domain.MaxUploads).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return errCapacityReached
		}
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.Fail[string](domain.NewNotFoundError("no event found with specified ID"))
		case errors.Is(err, errCapacityReached):
			return domain.Fail[string](domain.NewDatabaseError(persistenceFailed))
		}
		return domain.Fail[string](dbError(err))
	}
	return domain.Ok(id)
}

func (r *uploadRepository) ListByEventID(ctx context.Context, eventID string) domain.Result[[]*domain.EventUpload] {
	query := `
		SELECT i.id, u.id, i.name, i.created_at, u.file_path, u.created_at
		FROM invitee_uploads u
		JOIN invitees i ON i.id = u.invitee_id
		WHERE u.event_id = $1
		ORDER BY u.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return domain.Fail[[]*domain.EventUpload](dbError(err))
	}
	defer rows.Close()
	var uploads []*domain.EventUpload
	for rows.Next() {
		u := &domain.EventUpload{}
		if err := rows.Scan(&u.InviteeID, &u.UploadID, &u.InviteeName, &u.InviteSentAt, &u.UploadPath, &u.UploadedAt); err != nil {
			return domain.Fail[[]*domain.EventUpload](dbError(err))
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return domain.Fail[[]*domain.EventUpload](dbError(err))
	}
	if len(uploads) == 0 {
		return domain.Fail[[]*domain.EventUpload](domain.NewNotFoundError("uploads for specified event not found"))
	}
	return domain.Ok(uploads)
}

func (r *uploadRepository) Delete(ctx context.Context, eventID, uploadID string) domain.Result[string] {
	query := `DELETE FROM invitee_uploads WHERE event_id = $1 AND id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, uploadID)
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	return affected(result, uploadID, "No upload found with specified ID for the event")
}

// CreateCompiled relies on the unique index on compiled_uploads.event_id;
// a second insert for the same event matches no rows.
func (r *uploadRepository) CreateCompiled(ctx context.Context, eventID, path string) domain.Result[string] {
	query := `
		INSERT INTO compiled_uploads (event_id, file_path)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id
	`
	var id string
	if err := r.DB.QueryRowContext(ctx, query, eventID, path).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[string](domain.NewDatabaseError(persistenceFailed))
		}
		return domain.Fail[string](dbError(err))
	}
	return domain.Ok(id)
}

// GetCompiled returns an empty list when nothing has been compiled yet.
func (r *uploadRepository) GetCompiled(ctx context.Context, eventID string) domain.Result[[]*domain.CompiledUpload] {
	query := `
		SELECT id, file_path, created_at
		FROM compiled_uploads
		WHERE event_id = $1
		LIMIT 1
	`
	c := &domain.CompiledUpload{}
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&c.UploadID, &c.UploadPath, &c.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Ok([]*domain.CompiledUpload{})
		}
		return domain.Fail[[]*domain.CompiledUpload](dbError(err))
	}
	return domain.Ok([]*domain.CompiledUpload{c})
}

func (r *uploadRepository) DeleteCompiled(ctx context.Context, eventID, uploadID string) domain.Result[string] {
	query := `DELETE FROM compiled_uploads WHERE event_id = $1 AND id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, uploadID)
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	return affected(result, uploadID, "No upload found with specified ID for the event")
}
