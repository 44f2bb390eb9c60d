package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"rol"`
}

// ActorFrom converts an identity to event actor metadata.
func ActorFrom(id domain.Identity) Actor {
	return Actor{UserID: id.UserID, Role: id.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"titulo"`
	Priority domain.TicketPriority `json:"prioridad"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *int64              `json:"old_asignado_a,omitempty"`
	AssigneeID    int64               `json:"asignado_a"`
	OldStatus     domain.TicketStatus `json:"old_estado"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_estado"`
	NewStatus domain.TicketStatus `json:"new_estado"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title string `json:"titulo"`
}
