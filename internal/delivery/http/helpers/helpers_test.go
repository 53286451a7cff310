package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"videoinvites/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"bob", false},
		{"O'Brien & Sons", false},
		{"a < b", false},
		{"<b>bob</b>", true},
		{`<script>alert(1)</script>`, true},
		{`<img src=x onerror=alert(1)>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsMarkup(tt.in))
		})
	}
}

func TestLengthBetween(t *testing.T) {
	assert.True(t, LengthBetween("ab", 2, 64))
	assert.False(t, LengthBetween("a", 2, 64))
	assert.True(t, LengthBetween("éé", 2, 2))
}

func TestWriteAppError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err      *domain.AppError
		status   int
		wantCode string
	}{
		{domain.NewNotFoundError("no event found with specified ID"), http.StatusNotFound, ErrCodeNotFound},
		{domain.NewBusinessLogicError("The event has already been finished"), http.StatusForbidden, ErrCodeForbidden},
		{domain.NewConflictError("The username or email is already in use"), http.StatusConflict, ErrCodeConflict},
		{domain.NewDatabaseError("boom"), http.StatusInternalServerError, ErrCodeInternalError},
		{&domain.AppError{Kind: domain.KindBadRequest, Message: "no code"}, http.StatusBadRequest, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/events/1", nil)

			WriteAppError(rr, req, logger, tt.err)

			require.Equal(t, tt.status, rr.Code)
			var envelope APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Equal(t, tt.err.Message, envelope.Error.Message)
			assert.Nil(t, envelope.Data)
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}
	t.Run("unknown field", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		var b body
		assert.False(t, DecodeAndValidate(rr, req, &b))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
	t.Run("ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var b body
		require.True(t, DecodeAndValidate(rr, req, &b))
		assert.Equal(t, "x", b.Name)
	})
}

// multipartVideo builds a request with one file part; an empty contentType omits the header.
func multipartVideo(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/events/1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadVideo(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		filename    string
		contentType string
		wantOK      bool
		wantType    string
		wantMsg     string
	}{
		{name: "video content type", field: "video", filename: "clip.mov", contentType: "video/quicktime", wantOK: true, wantType: "video/quicktime"},
		{name: "mp4 without content type", field: "video", filename: "clip.MP4", wantOK: true, wantType: "video/mp4"},
		{name: "image", field: "video", filename: "cat.png", contentType: "image/png", wantMsg: "Only videos are allowed"},
		{name: "unknown extension without type", field: "video", filename: "clip.avi", wantMsg: "Only videos are allowed"},
		{name: "missing field", field: "file", filename: "clip.mp4", contentType: "video/mp4", wantMsg: "video is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartVideo(t, tt.field, tt.filename, tt.contentType, []byte("frames"))
			rr := httptest.NewRecorder()

			file, closeFn, ok := ReadVideo(rr, req)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				var envelope APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				assert.Equal(t, tt.wantMsg, envelope.Error.Message)
				return
			}
			defer closeFn()
			assert.Equal(t, tt.wantType, file.ContentType)
			assert.Equal(t, int64(6), file.Size)
			b, err := io.ReadAll(file.Body)
			require.NoError(t, err)
			assert.Equal(t, "frames", string(b))
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/events/1/upload", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		_, _, ok := ReadVideo(rr, req)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
