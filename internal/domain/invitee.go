package domain

import (
	"context"
	"time"
)

// Invitee is a named participant of an event, allowed one upload before the deadline.
type Invitee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteeRepository defines the interface for invitee storage.
// CreateMany inserts all names or none; it refuses to exceed MaxInvitees for the event.
type InviteeRepository interface {
	CreateMany(ctx context.Context, eventID string, names []string) Result[[]*Invitee]
	ListByEventID(ctx context.Context, eventID string) Result[[]*Invitee]
	Delete(ctx context.Context, eventID, inviteeID string) Result[string]
}
