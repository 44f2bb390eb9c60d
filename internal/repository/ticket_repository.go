package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter narrows a ticket listing. Nil fields do not filter.
type TicketFilter struct {
	CreatorID  *int64
	AssigneeID *int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Assign sets the assignee and moves the ticket to En Proceso in one statement.
	Assign(ctx context.Context, id, assigneeID int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketSelect = `
        SELECT t.id, t.titulo, t.descripcion, t.prioridad, t.estado, t.creado_por, t.asignado_a,
               t.fecha_creacion, c.nombre, a.nombre
        FROM tickets t
        JOIN usuarios c ON c.id = t.creado_por
        LEFT JOIN usuarios a ON a.id = t.asignado_a`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (titulo, descripcion, prioridad, estado, creado_por)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, fecha_creacion`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return scanTicket(r.db.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("t.creado_por=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.asignado_a=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.fecha_creacion DESC, t.id DESC`,
		ticketSelect, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Assign(ctx context.Context, id, assigneeID int64) error {
	const query = `UPDATE tickets SET asignado_a=$1, estado=$2 WHERE id=$3`
	return r.execOne(ctx, query, assigneeID, domain.TicketStatusInProgress, id)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	return r.execOne(ctx, `UPDATE tickets SET estado=$1 WHERE id=$2`, status, id)
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.CreatorName,
		&ticket.AssigneeName,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
