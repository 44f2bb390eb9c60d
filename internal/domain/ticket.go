package domain

import "time"

// MaxTicketTitleLength is the column limit for titulo.
const MaxTicketTitleLength = 200

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Abierto"
	TicketStatusInProgress TicketStatus = "En Proceso"
	TicketStatusClosed     TicketStatus = "Cerrado"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketStatuses lists every status in lifecycle order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Baja"
	TicketPriorityMedium TicketPriority = "Media"
	TicketPriorityHigh   TicketPriority = "Alta"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketPriorities lists every priority from lowest to highest.
func TicketPriorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	CreatedBy   int64
	AssigneeID  *int64
	CreatedAt   time.Time

	// Display names resolved on read; never written.
	CreatorName  string
	AssigneeName *string
}

// IsAssignedTo reports whether the ticket's assignee is userID.
func (t *Ticket) IsAssignedTo(userID int64) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == userID
}
