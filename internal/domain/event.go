package domain

import (
	"context"
	"time"
)

// Capacity limits for a single event.
const (
	MaxInvitees = 5
	MaxUploads  = 5
)

// Event is owned by the user who created it. Name is stored trimmed and lower-cased.
// Deadline does not change after creation.
type Event struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Deadline  time.Time `json:"deadline"`
	CreatedAt time.Time `json:"created_at"`
}

// DeadlinePassed reports whether the deadline is strictly before now.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.Deadline.Before(now)
}

// EventInvitee is the event side of an event-invitee association.
type EventInvitee struct {
	EventID        string    `json:"event_id"`
	InviteeID      string    `json:"invitee_id"`
	EventCreatedAt time.Time `json:"event_created_at"`
	EventDeadline  time.Time `json:"event_deadline"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, ownerID, name string, deadline time.Time) Result[string]
	GetByID(ctx context.Context, id string) Result[*Event]
	ListByOwnerID(ctx context.Context, ownerID string) Result[[]*Event]
	Delete(ctx context.Context, id string) Result[string]
	GetEventInvitee(ctx context.Context, eventID, inviteeID string) Result[*EventInvitee]
}

// EventService holds the event, invitee and upload admission rules.
type EventService interface {
	CreateEvent(ctx context.Context, ownerID, name string, deadlineMillis int64) Result[string]
	GetEventsByOwnerID(ctx context.Context, ownerID string) Result[[]*Event]
	GetEventByID(ctx context.Context, eventID string) Result[*Event]
	DeleteEvent(ctx context.Context, eventID string) Result[string]
	IsEventAccessible(ctx context.Context, eventID, userID string) Result[bool]
	IsEventInviteeValid(ctx context.Context, eventID, inviteeID string) Result[bool]

	InsertInvitees(ctx context.Context, eventID string, names []string, ownerName string) Result[[]*Invitee]
	GetInviteesByEventID(ctx context.Context, eventID string) Result[[]*Invitee]
	DeleteInvitee(ctx context.Context, eventID, inviteeID string) Result[string]

	UploadVideo(ctx context.Context, eventID, inviteeID string, file *VideoFile) Result[string]
	UploadOwnerVideo(ctx context.Context, eventID, ownerName string, file *VideoFile) Result[string]
	UploadCompiledVideo(ctx context.Context, eventID string, file *VideoFile) Result[string]
	GetEventUploads(ctx context.Context, eventID string) Result[[]*EventUpload]
	GetCompiledUpload(ctx context.Context, eventID string) Result[[]*CompiledUpload]
	DeleteUpload(ctx context.Context, eventID, uploadID string) Result[string]
	DeleteOwnerUpload(ctx context.Context, eventID, uploadID, ownerName string) Result[string]
}
