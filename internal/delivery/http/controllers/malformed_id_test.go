package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"videoinvites/internal/delivery/http/helpers"
	"videoinvites/internal/repository/postgres"
	"videoinvites/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLEventController runs the real event service over Postgres repositories backed by sqlmock.
func newSQLEventController(t *testing.T) (*EventController, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := services.NewEventService(
		postgres.NewEventRepository(db),
		postgres.NewInviteeRepository(db),
		postgres.NewUploadRepository(db),
		nil,
		services.UploadBuckets{Invitees: "invitees", Compiled: "compiled"},
		testLogger,
		time.Second,
		time.Minute,
	)
	return NewEventController(testLogger, svc), mock
}

func badUUID(id string) *pq.Error {
	return &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "` + id + `"`}
}

func TestEventController_MalformedIDs(t *testing.T) {
	t.Run("invitee upload answers 404", func(t *testing.T) {
		c, mock := newSQLEventController(t)
		mock.ExpectQuery(`FROM events`).WithArgs("nope").WillReturnError(badUUID("nope"))

		body, contentType := videoBody(t, "video/mp4")
		req := newRequest(http.MethodPost, "/events/nope/invitees/nope/upload", body, nil, "id", "nope", "inviteeId", "nope")
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		c.UploadInviteeVideo(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeNotFound, apiErr.Code)
		assert.NotContains(t, apiErr.Message, "uuid")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("compiled upload read answers 404", func(t *testing.T) {
		c, mock := newSQLEventController(t)
		mock.ExpectQuery(`FROM events`).WithArgs("nope").WillReturnError(badUUID("nope"))

		rr := httptest.NewRecorder()
		c.GetCompiledUpload(rr, newRequest(http.MethodGet, "/events/nope/compiled/upload", nil, nil, "id", "nope"))

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "no record found with specified ID", decodeEnvelope(t, rr, nil).Message)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner event lookup answers 404", func(t *testing.T) {
		c, mock := newSQLEventController(t)
		mock.ExpectQuery(`FROM events`).WithArgs("nope").WillReturnError(badUUID("nope"))

		rr := httptest.NewRecorder()
		c.GetEvent(rr, newRequest(http.MethodGet, "/events/nope", nil, alice, "id", "nope"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
