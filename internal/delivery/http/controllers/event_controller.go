package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "videoinvites/internal/delivery/http/helpers"
	"videoinvites/internal/delivery/http/middleware"
	"videoinvites/internal/domain"
)

// Deadline window accepted at event creation.
const minDeadlineLead = 12 * time.Hour

// CreateEventRequest is the request body for POST /events. Deadline is in epoch milliseconds.
type CreateEventRequest struct {
	Name     string `json:"name"`
	Deadline int64  `json:"deadline"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	return c.validateAt(time.Now())
}

func (c CreateEventRequest) validateAt(now time.Time) []string {
	var errs []string
	name := strings.TrimSpace(c.Name)
	if !h.LengthBetween(name, 2, 64) {
		errs = append(errs, "Required length between 2 and 64")
	} else if h.ContainsMarkup(name) {
		errs = append(errs, "name must not contain markup")
	}
	if c.Deadline < now.Add(minDeadlineLead).UnixMilli() {
		errs = append(errs, "Deadline must be at least 12 hours from now")
	} else if c.Deadline > now.AddDate(0, 1, 0).UnixMilli() {
		errs = append(errs, "Deadline must be earlier than next month")
	}
	return errs
}

// CreateEventResponse is the data of POST /events.
type CreateEventResponse struct {
	EventID string `json:"event_id"`
}

// AddInviteesRequest is the request body for POST /events/{id}/invitees
type AddInviteesRequest struct {
	Names []string `json:"names"`
}

// Validate implements Validator.
func (a AddInviteesRequest) Validate() []string {
	if len(a.Names) == 0 {
		return []string{"The invitees list is required"}
	}
	var errs []string
	if len(a.Names) > domain.MaxInvitees-1 {
		errs = append(errs, "The invitees list must contain between 1 and 4 names")
	}
	seen := make(map[string]struct{}, len(a.Names))
	for _, raw := range a.Names {
		n := strings.TrimSpace(raw)
		if !h.LengthBetween(n, 2, 60) {
			errs = append(errs, fmt.Sprintf("invitee name %q must be between 2 and 60 characters", n))
		} else if h.ContainsMarkup(n) {
			errs = append(errs, "invitee names must not contain markup")
		}
		seen[n] = struct{}{}
	}
	if len(seen) != len(a.Names) {
		errs = append(errs, "All invitee names must be unique")
	}
	return errs
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// caller returns the authenticated claims or answers 401.
func (c *EventController) caller(w http.ResponseWriter, r *http.Request) (*domain.TokenClaims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
	}
	return claims, ok
}

// accessible answers with the failure unless the caller owns the event and its deadline is ahead.
func (c *EventController) accessible(w http.ResponseWriter, r *http.Request, eventID, userID string) bool {
	if res := c.Service.IsEventAccessible(r.Context(), eventID, userID); res.IsFailure() {
		h.WriteAppError(w, r, c.Logger, res.Err())
		return false
	}
	return true
}

func (c *EventController) eventExists(w http.ResponseWriter, r *http.Request, eventID string) (*domain.Event, bool) {
	res := c.Service.GetEventByID(r.Context(), eventID)
	if res.IsFailure() {
		h.WriteAppError(w, r, c.Logger, res.Err())
		return nil, false
	}
	return res.Value(), true
}

// CreateEvent handles POST /events. The caller becomes the owner.
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	created := c.Service.CreateEvent(r.Context(), claims.UserID, req.Name, req.Deadline)
	if created.IsFailure() {
		h.WriteAppError(w, r, c.Logger, created.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, CreateEventResponse{EventID: created.Value()})
}

func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	events := c.Service.GetEventsByOwnerID(r.Context(), claims.UserID)
	if events.IsFailure() {
		h.WriteAppError(w, r, c.Logger, events.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events.Value())
}

func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.caller(w, r); !ok {
		return
	}
	event, ok := c.eventExists(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	if !c.accessible(w, r, eventID, claims.UserID) {
		return
	}
	deleted := c.Service.DeleteEvent(r.Context(), eventID)
	if deleted.IsFailure() {
		h.WriteAppError(w, r, c.Logger, deleted.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: fmt.Sprintf("event %s was deleted", deleted.Value())})
}

// AddInvitees handles POST /events/{id}/invitees. The owner's own name is refused.
func (c *EventController) AddInvitees(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	var req AddInviteesRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	eventID := r.PathValue("id")
	if !c.accessible(w, r, eventID, claims.UserID) {
		return
	}
	inserted := c.Service.InsertInvitees(r.Context(), eventID, req.Names, claims.Username)
	if inserted.IsFailure() {
		h.WriteAppError(w, r, c.Logger, inserted.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, inserted.Value())
}

func (c *EventController) ListInvitees(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.caller(w, r); !ok {
		return
	}
	eventID := r.PathValue("id")
	if _, ok := c.eventExists(w, r, eventID); !ok {
		return
	}
	invitees := c.Service.GetInviteesByEventID(r.Context(), eventID)
	if invitees.IsFailure() {
		h.WriteAppError(w, r, c.Logger, invitees.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, invitees.Value())
}

func (c *EventController) DeleteInvitee(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	eventID, inviteeID := r.PathValue("id"), r.PathValue("inviteeId")
	if !c.accessible(w, r, eventID, claims.UserID) {
		return
	}
	if valid := c.Service.IsEventInviteeValid(r.Context(), eventID, inviteeID); valid.IsFailure() {
		h.WriteAppError(w, r, c.Logger, valid.Err())
		return
	}
	deleted := c.Service.DeleteInvitee(r.Context(), eventID, inviteeID)
	if deleted.IsFailure() {
		h.WriteAppError(w, r, c.Logger, deleted.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: fmt.Sprintf("invitee %s was deleted", deleted.Value())})
}

// inviteeUploads returns the event's uploads made by inviteeID.
func (c *EventController) inviteeUploads(w http.ResponseWriter, r *http.Request, eventID, inviteeID string) ([]*domain.EventUpload, bool) {
	uploads := c.Service.GetEventUploads(r.Context(), eventID)
	if uploads.IsFailure() {
		h.WriteAppError(w, r, c.Logger, uploads.Err())
		return nil, false
	}
	out := []*domain.EventUpload{}
	for _, u := range uploads.Value() {
		if u.InviteeID == inviteeID {
			out = append(out, u)
		}
	}
	return out, true
}

// UploadInviteeVideo handles POST /events/{id}/invitees/{inviteeId}/upload. It needs no token:
// knowing the invitee id is the invitation.
func (c *EventController) UploadInviteeVideo(w http.ResponseWriter, r *http.Request) {
	eventID, inviteeID := r.PathValue("id"), r.PathValue("inviteeId")
	if valid := c.Service.IsEventInviteeValid(r.Context(), eventID, inviteeID); valid.IsFailure() {
		h.WriteAppError(w, r, c.Logger, valid.Err())
		return
	}
	own, ok := c.inviteeUploads(w, r, eventID, inviteeID)
	if !ok {
		return
	}
	if len(own) != 0 {
		h.WriteAppError(w, r, c.Logger, domain.NewBusinessLogicError("You have already uploaded a video"))
		return
	}
	compiled := c.Service.GetCompiledUpload(r.Context(), eventID)
	if compiled.IsFailure() {
		h.WriteAppError(w, r, c.Logger, compiled.Err())
		return
	}
	if len(compiled.Value()) != 0 {
		h.WriteAppError(w, r, c.Logger, domain.NewBusinessLogicError("The event has already been finished"))
		return
	}

	file, closeFile, ok := h.ReadVideo(w, r)
	if !ok {
		return
	}
	defer closeFile()
	c.writeUpload(w, r, c.Service.UploadVideo(r.Context(), eventID, inviteeID, file))
}

// UploadOwnerVideo handles POST /events/{id}/upload. The owner takes an invitee slot.
func (c *EventController) UploadOwnerVideo(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	if !c.accessible(w, r, eventID, claims.UserID) {
		return
	}
	file, closeFile, ok := h.ReadVideo(w, r)
	if !ok {
		return
	}
	defer closeFile()
	c.writeUpload(w, r, c.Service.UploadOwnerVideo(r.Context(), eventID, claims.Username, file))
}

// UploadCompiledVideo handles POST /events/{id}/compiled/upload. It finishes the event and
// is allowed after the deadline.
func (c *EventController) UploadCompiledVideo(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	event, ok := c.eventExists(w, r, eventID)
	if !ok {
		return
	}
	if event.OwnerID != claims.UserID {
		h.WriteAppError(w, r, c.Logger, domain.NewBusinessLogicError(
			fmt.Sprintf("User %q is not owner of the event %q", claims.UserID, eventID)))
		return
	}
	file, closeFile, ok := h.ReadVideo(w, r)
	if !ok {
		return
	}
	defer closeFile()
	c.writeUpload(w, r, c.Service.UploadCompiledVideo(r.Context(), eventID, file))
}

func (c *EventController) writeUpload(w http.ResponseWriter, r *http.Request, res domain.Result[string]) {
	if res.IsFailure() {
		h.WriteAppError(w, r, c.Logger, res.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, h.MessageResponse{Message: res.Value()})
}

// GetCompiledUpload is public so invitees can watch the result.
func (c *EventController) GetCompiledUpload(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if _, ok := c.eventExists(w, r, eventID); !ok {
		return
	}
	compiled := c.Service.GetCompiledUpload(r.Context(), eventID)
	if compiled.IsFailure() {
		h.WriteAppError(w, r, c.Logger, compiled.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, compiled.Value())
}

func (c *EventController) ListUploads(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.caller(w, r); !ok {
		return
	}
	eventID := r.PathValue("id")
	if _, ok := c.eventExists(w, r, eventID); !ok {
		return
	}
	uploads := c.Service.GetEventUploads(r.Context(), eventID)
	if uploads.IsFailure() {
		h.WriteAppError(w, r, c.Logger, uploads.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, uploads.Value())
}

// ListInviteeUploads is public; an invitee without uploads gets an empty list.
func (c *EventController) ListInviteeUploads(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if _, ok := c.eventExists(w, r, eventID); !ok {
		return
	}
	own, ok := c.inviteeUploads(w, r, eventID, r.PathValue("inviteeId"))
	if !ok {
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, own)
}

// DeleteUpload handles DELETE /events/{id}/uploads/{uploadId}. Deleting the owner's own
// upload also frees the owner's invitee slot.
func (c *EventController) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.caller(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	if !c.accessible(w, r, eventID, claims.UserID) {
		return
	}
	deleted := c.Service.DeleteOwnerUpload(r.Context(), eventID, r.PathValue("uploadId"), claims.Username)
	if deleted.IsFailure() {
		h.WriteAppError(w, r, c.Logger, deleted.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: fmt.Sprintf("upload %s was deleted", deleted.Value())})
}
