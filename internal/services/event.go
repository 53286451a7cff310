package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"videoinvites/internal/domain"
)

// UploadBuckets names the buckets invitee and compiled videos go to.
type UploadBuckets struct {
	Invitees string
	Compiled string
}

type eventService struct {
	eventRepo      domain.EventRepository
	inviteeRepo    domain.InviteeRepository
	uploadRepo     domain.UploadRepository
	storage        domain.ObjectStorage
	buckets        UploadBuckets
	logger         *slog.Logger
	contextTimeout time.Duration
	uploadTimeout  time.Duration
	now            func() time.Time
}

// NewEventService wires the event rules. timeout bounds each round of repository calls and
// uploadTimeout bounds the object storage put.
func NewEventService(eventRepo domain.EventRepository,
	inviteeRepo domain.InviteeRepository,
	uploadRepo domain.UploadRepository,
	storage domain.ObjectStorage,
	buckets UploadBuckets,
	logger *slog.Logger,
	timeout time.Duration,
	uploadTimeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		inviteeRepo:    inviteeRepo,
		uploadRepo:     uploadRepo,
		storage:        storage,
		buckets:        buckets,
		logger:         logger,
		contextTimeout: timeout,
		uploadTimeout:  uploadTimeout,
		now:            time.Now,
	}
}

// cleanupContext outlives the caller's cancellation so compensating deletes still run
// after a put timed out or the client went away.
func (s *eventService) cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
}

// emptyOnNotFound turns a NotFound or nil list into an empty one.
func emptyOnNotFound[T any](r domain.Result[[]T]) domain.Result[[]T] {
	if r.IsFailure() && !errors.Is(r.Err(), domain.ErrNotFound) {
		return r
	}
	if r.IsFailure() || r.Value() == nil {
		return domain.Ok([]T{})
	}
	return r
}

func (s *eventService) CreateEvent(ctx context.Context, ownerID, name string, deadlineMillis int64) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	created := s.eventRepo.Create(ctx, ownerID, trimAndLowerCase(name), time.UnixMilli(deadlineMillis).UTC())
	if created.IsSuccess() {
		s.logger.InfoContext(ctx, "event created", "event_id", created.Value(), "owner_id", ownerID)
	}
	return created
}

func (s *eventService) GetEventsByOwnerID(ctx context.Context, ownerID string) (res domain.Result[[]*domain.Event]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return emptyOnNotFound(s.eventRepo.ListByOwnerID(ctx, ownerID))
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (res domain.Result[*domain.Event]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.Delete(ctx, eventID)
}

// IsEventAccessible succeeds only for the owner of an event whose deadline has not passed.
func (s *eventService) IsEventAccessible(ctx context.Context, eventID, userID string) (res domain.Result[bool]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	found := s.eventRepo.GetByID(ctx, eventID)
	if found.IsFailure() {
		return domain.Propagate[bool](found)
	}
	event := found.Value()
	if event.OwnerID != userID {
		return domain.Fail[bool](domain.NewBusinessLogicError(
			fmt.Sprintf("User %q is not owner of the event %q", userID, eventID)))
	}
	if domain.EventStateAt(event, nil, s.now()) == domain.EventDeadlinePassed {
		return domain.Fail[bool](domain.NewBusinessLogicError("The deadline for this event has passed"))
	}
	return domain.Ok(true)
}

func (s *eventService) IsEventInviteeValid(ctx context.Context, eventID, inviteeID string) (res domain.Result[bool]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if found := s.eventRepo.GetByID(ctx, eventID); found.IsFailure() {
		return domain.Propagate[bool](found)
	}
	assoc := s.eventRepo.GetEventInvitee(ctx, eventID, inviteeID)
	if assoc.IsFailure() {
		return domain.Propagate[bool](assoc)
	}
	if assoc.Value().EventDeadline.Before(s.now()) {
		return domain.Fail[bool](domain.NewBusinessLogicError("The deadline for this event has passed"))
	}
	return domain.Ok(true)
}

// InsertInvitees adds names to the event. The owner name is compared case-insensitively,
// existing invitee names exactly after trimming. An empty ownerName skips the owner check.
func (s *eventService) InsertInvitees(ctx context.Context, eventID string, names []string, ownerName string) (res domain.Result[[]*domain.Invitee]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing := emptyOnNotFound(s.inviteeRepo.ListByEventID(ctx, eventID))
	if existing.IsFailure() {
		return existing
	}
	current := existing.Value()

	if len(current)+len(names) > domain.MaxInvitees {
		return domain.Fail[[]*domain.Invitee](domain.NewBusinessLogicError("The invitees list must contain 5 names at most"))
	}
	if ownerName != "" {
		owner := trimAndLowerCase(ownerName)
		for _, n := range names {
			if trimAndLowerCase(n) == owner {
				return domain.Fail[[]*domain.Invitee](domain.NewBusinessLogicError("The owner name cannot be duplicated in the invitees list"))
			}
		}
	}
	trimmed := make([]string, 0, len(names))
	for _, n := range names {
		trimmed = append(trimmed, strings.TrimSpace(n))
	}
	for _, inv := range current {
		for _, n := range trimmed {
			if strings.TrimSpace(inv.Name) == n {
				return domain.Fail[[]*domain.Invitee](domain.NewBusinessLogicError("The invitees cannot be duplicated"))
			}
		}
	}

	return s.inviteeRepo.CreateMany(ctx, eventID, trimmed)
}

func (s *eventService) GetInviteesByEventID(ctx context.Context, eventID string) (res domain.Result[[]*domain.Invitee]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return emptyOnNotFound(s.inviteeRepo.ListByEventID(ctx, eventID))
}

func (s *eventService) DeleteInvitee(ctx context.Context, eventID, inviteeID string) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.inviteeRepo.Delete(ctx, eventID, inviteeID)
}

// storeObject puts the video and reports any outcome other than 200 as an error.
func (s *eventService) storeObject(ctx context.Context, bucket, key string, file *domain.VideoFile) error {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	out, err := s.storage.PutObject(ctx, &domain.PutObjectInput{
		Bucket:      bucket,
		Key:         key,
		Body:        file.Body,
		Size:        file.Size,
		ContentType: file.ContentType,
	})
	if err != nil {
		return err
	}
	if out == nil || out.StatusCode != http.StatusOK {
		status := 0
		if out != nil {
			status = out.StatusCode
		}
		return fmt.Errorf("storage answered with status %d", status)
	}
	return nil
}

func (s *eventService) finished(ctx context.Context, eventID string) domain.Result[bool] {
	compiled := s.uploadRepo.GetCompiled(ctx, eventID)
	if compiled.IsFailure() {
		return domain.Propagate[bool](compiled)
	}
	return domain.Ok(len(compiled.Value()) != 0)
}

// UploadVideo records the invitee upload and then stores the object. When storing fails
// the row is removed again so the slot stays free.
func (s *eventService) UploadVideo(ctx context.Context, eventID, inviteeID string, file *domain.VideoFile) (res domain.Result[string]) {
	defer domain.Recover(&res)
	dbCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	done := s.finished(dbCtx, eventID)
	if done.IsFailure() {
		return domain.Propagate[string](done)
	}
	if done.Value() {
		return domain.Fail[string](domain.NewBusinessLogicError("The event has already been finished"))
	}

	uploads := emptyOnNotFound(s.uploadRepo.ListByEventID(dbCtx, eventID))
	if uploads.IsFailure() {
		return domain.Propagate[string](uploads)
	}
	if len(uploads.Value()) >= domain.MaxUploads {
		return domain.Fail[string](domain.NewBusinessLogicError("The event has reached the maximum number of uploads"))
	}
	for _, u := range uploads.Value() {
		if u.InviteeID == inviteeID {
			return domain.Fail[string](domain.NewBusinessLogicError("You have already uploaded a video"))
		}
	}

	key := fmt.Sprintf("%s-%d", inviteeID, s.now().UnixMilli())
	inserted := s.uploadRepo.CreateInviteeUpload(dbCtx, eventID, inviteeID, s.storage.ObjectURL(s.buckets.Invitees, key))
	if inserted.IsFailure() {
		return inserted
	}
	uploadID := inserted.Value()

	if err := s.storeObject(ctx, s.buckets.Invitees, key, file); err != nil {
		s.logger.ErrorContext(ctx, "video not stored", "event_id", eventID, "upload_id", uploadID, "error", err)
		cleanupCtx, cancelCleanup := s.cleanupContext(ctx)
		defer cancelCleanup()
		if removed := s.uploadRepo.Delete(cleanupCtx, eventID, uploadID); removed.IsFailure() {
			s.logger.ErrorContext(ctx, "upload row left behind", "upload_id", uploadID, "error", removed.Err())
		}
		return domain.Fail[string](domain.NewInternalServerError("Video was not saved: " + err.Error()))
	}
	return domain.Ok(fmt.Sprintf("Video %s successfully uploaded", uploadID))
}

// UploadOwnerVideo takes an invitee slot under the owner's name and uploads into it.
func (s *eventService) UploadOwnerVideo(ctx context.Context, eventID, ownerName string, file *domain.VideoFile) (res domain.Result[string]) {
	defer domain.Recover(&res)

	done := s.finished(ctx, eventID)
	if done.IsFailure() {
		return domain.Propagate[string](done)
	}
	if done.Value() {
		return domain.Fail[string](domain.NewBusinessLogicError("The event has already been finished"))
	}

	slot := s.InsertInvitees(ctx, eventID, []string{ownerName}, "")
	if slot.IsFailure() {
		return domain.Propagate[string](slot)
	}
	if len(slot.Value()) == 0 {
		return domain.Fail[string](domain.NewDatabaseError("error during insertion of the new invitees"))
	}
	inviteeID := slot.Value()[0].ID

	uploaded := s.UploadVideo(ctx, eventID, inviteeID, file)
	if uploaded.IsFailure() {
		if removed := s.DeleteInvitee(context.WithoutCancel(ctx), eventID, inviteeID); removed.IsFailure() {
			s.logger.ErrorContext(ctx, "owner slot left behind", "invitee_id", inviteeID, "error", removed.Err())
		}
	}
	return uploaded
}

func (s *eventService) UploadCompiledVideo(ctx context.Context, eventID string, file *domain.VideoFile) (res domain.Result[string]) {
	defer domain.Recover(&res)
	dbCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	done := s.finished(dbCtx, eventID)
	if done.IsFailure() {
		return domain.Propagate[string](done)
	}
	if done.Value() {
		return domain.Fail[string](domain.NewBusinessLogicError("The event has already a compiled video uploaded"))
	}

	key := fmt.Sprintf("%s-%d", eventID, s.now().UnixMilli())
	inserted := s.uploadRepo.CreateCompiled(dbCtx, eventID, s.storage.ObjectURL(s.buckets.Compiled, key))
	if inserted.IsFailure() {
		return inserted
	}
	uploadID := inserted.Value()

	if err := s.storeObject(ctx, s.buckets.Compiled, key, file); err != nil {
		s.logger.ErrorContext(ctx, "compiled video not stored", "event_id", eventID, "upload_id", uploadID, "error", err)
		cleanupCtx, cancelCleanup := s.cleanupContext(ctx)
		defer cancelCleanup()
		if removed := s.uploadRepo.DeleteCompiled(cleanupCtx, eventID, uploadID); removed.IsFailure() {
			s.logger.ErrorContext(ctx, "compiled row left behind", "upload_id", uploadID, "error", removed.Err())
		}
		return domain.Fail[string](domain.NewInternalServerError("Video was not saved: " + err.Error()))
	}
	s.logger.InfoContext(ctx, "event finished", "event_id", eventID, "upload_id", uploadID)
	return domain.Ok(fmt.Sprintf("Video %s successfully uploaded", uploadID))
}

func (s *eventService) GetEventUploads(ctx context.Context, eventID string) (res domain.Result[[]*domain.EventUpload]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return emptyOnNotFound(s.uploadRepo.ListByEventID(ctx, eventID))
}

func (s *eventService) GetCompiledUpload(ctx context.Context, eventID string) (res domain.Result[[]*domain.CompiledUpload]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return emptyOnNotFound(s.uploadRepo.GetCompiled(ctx, eventID))
}

func (s *eventService) DeleteUpload(ctx context.Context, eventID, uploadID string) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.uploadRepo.Delete(ctx, eventID, uploadID)
}

// DeleteOwnerUpload deletes the upload and, when it was made under the owner's name,
// frees the owner's invitee slot too.
func (s *eventService) DeleteOwnerUpload(ctx context.Context, eventID, uploadID, ownerName string) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	uploads := emptyOnNotFound(s.uploadRepo.ListByEventID(ctx, eventID))
	if uploads.IsFailure() {
		return domain.Propagate[string](uploads)
	}
	var ownerInviteeID string
	for _, u := range uploads.Value() {
		if u.UploadID == uploadID && u.InviteeName == ownerName {
			ownerInviteeID = u.InviteeID
			break
		}
	}

	deleted := s.uploadRepo.Delete(ctx, eventID, uploadID)
	if deleted.IsFailure() {
		return deleted
	}
	if ownerInviteeID != "" {
		if removed := s.inviteeRepo.Delete(ctx, eventID, ownerInviteeID); removed.IsFailure() {
			return removed
		}
	}
	return deleted
}
