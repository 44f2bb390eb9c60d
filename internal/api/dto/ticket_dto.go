package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload. Prioridad is optional and defaults to Media.
type CreateTicketRequest struct {
	Title       string                `json:"titulo" validate:"required,max=200"`
	Description string                `json:"descripcion" validate:"required"`
	Priority    domain.TicketPriority `json:"prioridad"`
}

// AssignTicketRequest payload for PUT /tickets/:id/asignar.
type AssignTicketRequest struct {
	AssigneeID int64 `json:"asignado_a" validate:"required,gt=0"`
}

// ChangeStatusRequest payload for PUT /tickets/:id/estado.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"estado" validate:"required"`
}

// TicketResponse is the ticket representation with resolved display names.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	Title        string                `json:"titulo"`
	Description  string                `json:"descripcion"`
	Priority     domain.TicketPriority `json:"prioridad"`
	Status       domain.TicketStatus   `json:"estado"`
	CreatedBy    int64                 `json:"creado_por"`
	AssigneeID   *int64                `json:"asignado_a"`
	CreatedAt    time.Time             `json:"fecha_creacion"`
	CreatorName  string                `json:"creado_por_nombre"`
	AssigneeName *string               `json:"asignado_a_nombre"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Status:       t.Status,
		CreatedBy:    t.CreatedBy,
		AssigneeID:   t.AssigneeID,
		CreatedAt:    t.CreatedAt,
		CreatorName:  t.CreatorName,
		AssigneeName: t.AssigneeName,
	}
}

// NewTicketListResponse maps a ticket slice; never nil.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}
