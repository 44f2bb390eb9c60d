package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

var (
	admin   = domain.Identity{UserID: 1, Role: domain.RoleAdmin}
	agent   = domain.Identity{UserID: 3, Role: domain.RoleSoporte}
	other   = domain.Identity{UserID: 9, Role: domain.RoleSoporte}
	usuario = domain.Identity{UserID: 5, Role: domain.RoleUsuario}
	unknown = domain.Identity{UserID: 7, Role: domain.Role("Root")}
)

func int64Ptr(v int64) *int64 { return &v }

func TestAuthorize_RoleTable(t *testing.T) {
	tests := []struct {
		action Action
		allow  map[domain.Role]bool
	}{
		{ActionCreateTicket, map[domain.Role]bool{domain.RoleAdmin: true, domain.RoleUsuario: true}},
		{ActionListTickets, map[domain.Role]bool{domain.RoleAdmin: true, domain.RoleSoporte: true, domain.RoleUsuario: true}},
		{ActionAssignTicket, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionDeleteTicket, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionListUsers, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionViewUser, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionCreateUser, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionUpdateUser, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionDeleteUser, map[domain.Role]bool{domain.RoleAdmin: true}},
		{ActionListSupportAgents, map[domain.Role]bool{domain.RoleAdmin: true}},
	}

	for _, tt := range tests {
		for _, id := range []domain.Identity{admin, agent, usuario, unknown} {
			got := Authorize(id, tt.action, Resource{})
			assert.Equal(t, tt.allow[id.Role], got, "%s as %s", tt.action, id.Role)
		}
	}
}

func TestAuthorize_UnknownAction(t *testing.T) {
	assert.False(t, Authorize(admin, Action("ticket:explode"), Resource{}))
}

func TestAuthorize_ChangeStatus(t *testing.T) {
	assigned := &domain.Ticket{ID: 7, CreatedBy: 5, AssigneeID: int64Ptr(3)}
	unassigned := &domain.Ticket{ID: 8, CreatedBy: 5}

	tests := []struct {
		name   string
		id     domain.Identity
		ticket *domain.Ticket
		want   bool
	}{
		{"admin on any ticket", admin, unassigned, true},
		{"assigned agent", agent, assigned, true},
		{"other agent", other, assigned, false},
		{"agent on unassigned", agent, unassigned, false},
		{"creator is not allowed", usuario, assigned, false},
		{"missing ticket context", admin, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.id, ActionChangeTicketStatus, Resource{Ticket: tt.ticket})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize_ViewTicket(t *testing.T) {
	ticket := &domain.Ticket{ID: 7, CreatedBy: 5, AssigneeID: int64Ptr(3)}

	assert.True(t, Authorize(admin, ActionViewTicket, Resource{Ticket: ticket}))
	assert.True(t, Authorize(agent, ActionViewTicket, Resource{Ticket: ticket}))
	assert.True(t, Authorize(usuario, ActionViewTicket, Resource{Ticket: ticket}))
	assert.False(t, Authorize(other, ActionViewTicket, Resource{Ticket: ticket}))
	assert.False(t, Authorize(domain.Identity{UserID: 6, Role: domain.RoleUsuario}, ActionViewTicket, Resource{Ticket: ticket}))
}

func TestTicketScopeFor(t *testing.T) {
	scope, ok := TicketScopeFor(admin)
	require.True(t, ok)
	assert.Nil(t, scope.CreatorID)
	assert.Nil(t, scope.AssigneeID)

	scope, ok = TicketScopeFor(agent)
	require.True(t, ok)
	require.NotNil(t, scope.AssigneeID)
	assert.Equal(t, int64(3), *scope.AssigneeID)
	assert.Nil(t, scope.CreatorID)

	scope, ok = TicketScopeFor(usuario)
	require.True(t, ok)
	require.NotNil(t, scope.CreatorID)
	assert.Equal(t, int64(5), *scope.CreatorID)
	assert.Nil(t, scope.AssigneeID)

	_, ok = TicketScopeFor(unknown)
	assert.False(t, ok)
}
