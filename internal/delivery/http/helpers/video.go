package helpers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"videoinvites/internal/domain"
)

const (
	// MaxVideoSize is the exclusive upper bound for an uploaded video.
	MaxVideoSize = 1000 * 1024 * 1024

	videoField     = "video"
	multipartSlack = 1 << 20
	memoryLimit    = 32 << 20
)

const (
	msgNotVideo     = "Only videos are allowed"
	msgVideoSize    = "The file size must be less than 1GB"
	msgNoVideo      = "video is required"
	msgNotMultipart = "multipart form expected"
)

// isVideo accepts a video/* content type, or an .mp4 name when the type is missing.
func isVideo(h *multipart.FileHeader) bool {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return strings.HasPrefix(ct, "video/")
	}
	return strings.ToLower(filepath.Ext(h.Filename)) == ".mp4"
}

// ReadVideo parses the multipart "video" field. On failure it writes a 400 and returns
// false. The caller must call the returned close func once the body is consumed.
func ReadVideo(w http.ResponseWriter, r *http.Request) (*domain.VideoFile, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxVideoSize+multipartSlack)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		msg := msgNotMultipart
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = msgVideoSize
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return nil, nil, false
	}
	file, header, err := r.FormFile(videoField)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msgNoVideo)
		return nil, nil, false
	}
	var msgs []string
	if !isVideo(header) {
		msgs = append(msgs, msgNotVideo)
	}
	if header.Size >= MaxVideoSize {
		msgs = append(msgs, msgVideoSize)
	}
	if len(msgs) > 0 {
		_ = file.Close()
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(msgs, "; "))
		return nil, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	closeFn := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return &domain.VideoFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, closeFn, true
}
