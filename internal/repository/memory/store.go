// Package memory provides in-process implementations of the repository
// interfaces for tests. Constraint failures are reported with the same
// *pgconn.PgError codes and pgx.ErrNoRows the Postgres repositories return.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Store holds users and tickets behind a single lock so that cross-table
// constraints can be enforced.
type Store struct {
	mu           sync.RWMutex
	users        map[int64]domain.User
	tickets      map[int64]domain.Ticket
	nextUserID   int64
	nextTicketID int64
	now          func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[int64]domain.User),
		tickets: make(map[int64]domain.Ticket),
		now:     time.Now,
	}
}

// Users returns a UserRepository backed by the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Tickets returns a TicketRepository backed by the store.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s: s} }

// CountUsersByEmail reports how many accounts use email.
func (s *Store) CountUsersByEmail(email string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.Email == email {
			n++
		}
	}
	return n
}

// TicketCount reports the number of stored tickets.
func (s *Store) TicketCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "violates foreign key constraint"}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, 0) {
		return uniqueViolation("usuarios_correo_key")
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.emailTaken(user.Email, user.ID) {
		return uniqueViolation("usuarios_correo_key")
	}
	updated := *user
	updated.CreatedAt = existing.CreatedAt
	r.s.users[user.ID] = updated
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, t := range r.s.tickets {
		if t.CreatedBy == id {
			return foreignKeyViolation("tickets_creado_por_fkey")
		}
	}
	for tid, t := range r.s.tickets {
		if t.IsAssignedTo(id) {
			t.AssigneeID = nil
			r.s.tickets[tid] = t
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *userRepo) ListActiveSupportAgents(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.User{}
	for _, u := range r.s.users {
		if u.Role == domain.RoleSoporte && u.Status == domain.UserStatusActive {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// emailTaken must be called with the lock held.
func (r *userRepo) emailTaken(email string, exceptID int64) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[ticket.CreatedBy]; !ok {
		return foreignKeyViolation("tickets_creado_por_fkey")
	}
	r.s.nextTicketID++
	ticket.ID = r.s.nextTicketID
	ticket.CreatedAt = r.s.now()
	stored := *ticket
	stored.CreatorName, stored.AssigneeName = "", nil
	r.s.tickets[ticket.ID] = stored
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	resolved := r.resolve(t)
	return &resolved, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if filter.CreatorID != nil && t.CreatedBy != *filter.CreatorID {
			continue
		}
		if filter.AssigneeID != nil && !t.IsAssignedTo(*filter.AssigneeID) {
			continue
		}
		result = append(result, r.resolve(t))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *ticketRepo) Assign(_ context.Context, id, assigneeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if _, ok := r.s.users[assigneeID]; !ok {
		return foreignKeyViolation("tickets_asignado_a_fkey")
	}
	t.AssigneeID = &assigneeID
	t.Status = domain.TicketStatusInProgress
	r.s.tickets[id] = t
	return nil
}

func (r *ticketRepo) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = status
	r.s.tickets[id] = t
	return nil
}

func (r *ticketRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	return nil
}

// resolve fills display names; must be called with the lock held.
func (r *ticketRepo) resolve(t domain.Ticket) domain.Ticket {
	if creator, ok := r.s.users[t.CreatedBy]; ok {
		t.CreatorName = creator.Name
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
		if assignee, ok := r.s.users[id]; ok {
			name := assignee.Name
			t.AssigneeName = &name
		}
	}
	return t
}
