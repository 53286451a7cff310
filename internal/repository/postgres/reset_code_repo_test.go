package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"videoinvites/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetCodeRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO forgot_password \(user_id, code\)`).
			WithArgs("user-1", "ABC234").
			WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("ABC234"))

		code, err := NewPasswordResetCodeRepository(db).Create(ctx, "user-1", "ABC234").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "ABC234", code)
	})

	t.Run("nothing returned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO forgot_password`).WillReturnError(sql.ErrNoRows)

		_, err = NewPasswordResetCodeRepository(db).Create(ctx, "user-1", "ABC234").Unwrap()
		require.ErrorIs(t, err, domain.ErrDatabase)
		assert.EqualError(t, err, "Failed to insert code")
	})
}

func TestPasswordResetCodeRepository_GetByCode(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	used := created.Add(5 * time.Minute)
	cols := []string{"id", "user_id", "code", "used_at", "created_at"}

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    *domain.PasswordResetCode
		wantErr error
	}{
		{
			name: "unused",
			rows: sqlmock.NewRows(cols).AddRow("fp-1", "user-1", "ABC234", nil, created),
			want: &domain.PasswordResetCode{ID: "fp-1", UserID: "user-1", Code: "ABC234", CreatedAt: created},
		},
		{
			name: "used",
			rows: sqlmock.NewRows(cols).AddRow("fp-1", "user-1", "ABC234", used, created),
			want: &domain.PasswordResetCode{ID: "fp-1", UserID: "user-1", Code: "ABC234", UsedAt: &used, CreatedAt: created},
		},
		{
			name:    "missing",
			err:     sql.ErrNoRows,
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			q := mock.ExpectQuery(`FROM forgot_password\s+WHERE code = \$1\s+ORDER BY created_at DESC`).WithArgs("ABC234")
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}

			got, err := NewPasswordResetCodeRepository(db).GetByCode(ctx, "ABC234").Unwrap()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.EqualError(t, err, "Code not found")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordResetCodeRepository_MarkUsed(t *testing.T) {
	ctx := context.Background()
	usedAt := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
		wantMsg string
	}{
		{
			name: "consumed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE forgot_password SET used_at = \$1 WHERE id = \$2 AND used_at IS NULL`).
					WithArgs(usedAt, "code-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already consumed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE forgot_password SET used_at = \$1 WHERE id = \$2 AND used_at IS NULL`).
					WithArgs(usedAt, "code-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrBadRequest,
			wantMsg: "Code has already been used",
		},
		{
			name: "driver error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE forgot_password`).
					WithArgs(usedAt, "code-1").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: domain.ErrDatabase,
			wantMsg: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			id, err := NewPasswordResetCodeRepository(db).MarkUsed(ctx, "code-1", usedAt).Unwrap()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.EqualError(t, err, tt.wantMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "code-1", id)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
