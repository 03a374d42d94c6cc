// Package sse streams book collection snapshots to connected clients as
// Server-Sent Events.
package sse

import (
	"time"

	"github.com/listenupapp/bookshelf/internal/bookstore"
	"github.com/listenupapp/bookshelf/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event every client receives.
	EventConnected EventType = "connected"
	// EventSnapshot carries the full collection and its load state.
	EventSnapshot EventType = "books.snapshot"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// SnapshotData is the payload of a books.snapshot event.
type SnapshotData struct {
	Books     []domain.Book `json:"books"`
	IsLoading bool          `json:"isLoading"`
	IsError   bool          `json:"isError"`
	Error     string        `json:"error,omitempty"`
	Version   uint64        `json:"version"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

// ConnectedData is the payload of the connected event.
type ConnectedData struct {
	ClientID string `json:"clientId"`
}

// NewSnapshotEvent converts a store snapshot into an event. A collection that
// was never loaded is sent as an empty list.
func NewSnapshotEvent(snap bookstore.Snapshot) Event {
	data := SnapshotData{
		Books:     snap.Books,
		IsLoading: snap.IsLoading,
		IsError:   snap.IsError,
		Version:   snap.Version,
	}
	if data.Books == nil {
		data.Books = []domain.Book{}
	}
	if snap.Err != nil {
		data.Error = snap.Err.Error()
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		data.UpdatedAt = &updated
	}
	return Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewConnectedEvent greets a newly registered client.
func NewConnectedEvent(clientID string) Event {
	return Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data:      ConnectedData{ClientID: clientID},
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data:      struct{}{},
	}
}
