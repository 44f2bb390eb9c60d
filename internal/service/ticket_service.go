package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket opens a ticket on behalf of actor. Priority defaults to Media.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if !auth.Authorize(actor, auth.ActionCreateTicket, auth.Resource{}) {
		return nil, apperrors.NewForbidden("Soporte accounts cannot create tickets")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	missing := map[string]any{}
	if title == "" {
		missing["titulo"] = "required"
	}
	if description == "" {
		missing["descripcion"] = "required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("titulo and descripcion are required", missing)
	}
	tooLong := map[string]any{}
	checkLength(tooLong, "titulo", title, domain.MaxTicketTitleLength)
	if len(tooLong) > 0 {
		return nil, apperrors.NewValidationError("titulo is too long", tooLong)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid prioridad", map[string]any{
			"prioridad": string(priority),
			"allowed":   domain.TicketPriorities(),
		})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   actor.UserID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if apperrors.IsForeignKeyViolation(err) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// ListTickets returns the tickets visible to actor, newest first. Scope is
// derived from the caller's identity, never from request input.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Identity) ([]domain.Ticket, error) {
	scope, ok := auth.TicketScopeFor(actor)
	if !ok {
		return nil, apperrors.NewForbidden("role may not list tickets")
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		CreatorID:  scope.CreatorID,
		AssigneeID: scope.AssigneeID,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket returns a single ticket when it is inside actor's scope.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Identity, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(actor, auth.ActionViewTicket, auth.Resource{Ticket: ticket}) {
		return nil, apperrors.NewForbidden("ticket is outside your scope")
	}
	return ticket, nil
}

// AssignTicket sets the assignee and moves the ticket to En Proceso.
// Reassignment is allowed in any status.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Identity, ticketID, assigneeID int64) (*domain.Ticket, error) {
	if assigneeID <= 0 {
		return nil, apperrors.NewValidationError("asignado_a is required", map[string]any{"asignado_a": "required"})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(actor, auth.ActionAssignTicket, auth.Resource{Ticket: ticket}) {
		return nil, apperrors.NewForbidden("only Admin can assign tickets")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if assignee == nil || !assignee.IsAssignable() {
		return nil, invalidAssignee(assigneeID)
	}

	if err := s.tickets.Assign(ctx, ticket.ID, assignee.ID); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		case apperrors.IsForeignKeyViolation(err):
			return nil, invalidAssignee(assigneeID)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketAssignedPayload{
			OldAssigneeID: ticket.AssigneeID,
			AssigneeID:    assignee.ID,
			OldStatus:     ticket.Status,
		},
	})
	return s.loadTicket(ctx, ticket.ID)
}

// ChangeStatus moves a ticket to any valid status. Soporte may only touch
// tickets assigned to them.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Identity, ticketID int64, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid estado", map[string]any{
			"estado":  string(status),
			"allowed": domain.TicketStatuses(),
		})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(actor, auth.ActionChangeTicketStatus, auth.Resource{Ticket: ticket}) {
		if actor.Role == domain.RoleSoporte {
			return nil, apperrors.NewForbidden("ticket is not assigned to you")
		}
		return nil, apperrors.NewForbidden("role may not change ticket status")
	}

	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.Status = status
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// DeleteTicket permanently removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Identity, ticketID int64) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !auth.Authorize(actor, auth.ActionDeleteTicket, auth.Resource{Ticket: ticket}) {
		return apperrors.NewForbidden("only Admin can delete tickets")
	}

	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func invalidAssignee(id int64) error {
	return apperrors.NewValidationError("asignado_a must reference an active Soporte user", map[string]any{"asignado_a": id})
}
