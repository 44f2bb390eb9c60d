package auth

import "github.com/spec-kit/support-desk/internal/domain"

// Action names an operation subject to authorization.
type Action string

const (
	ActionCreateTicket       Action = "ticket:create"
	ActionListTickets        Action = "ticket:list"
	ActionViewTicket         Action = "ticket:view"
	ActionAssignTicket       Action = "ticket:assign"
	ActionChangeTicketStatus Action = "ticket:change_status"
	ActionDeleteTicket       Action = "ticket:delete"

	ActionListUsers         Action = "user:list"
	ActionViewUser          Action = "user:view"
	ActionCreateUser        Action = "user:create"
	ActionUpdateUser        Action = "user:update"
	ActionDeleteUser        Action = "user:delete"
	ActionListSupportAgents Action = "user:list_support_agents"
)

// Resource carries the state of the target an action applies to.
type Resource struct {
	Ticket *domain.Ticket
}

type rule struct {
	roles map[domain.Role]struct{}
	// cond, when set, must also hold. It only runs for roles in the set.
	cond func(id domain.Identity, res Resource) bool
}

func roles(rs ...domain.Role) map[domain.Role]struct{} {
	set := make(map[domain.Role]struct{}, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

var policy = map[Action]rule{
	ActionCreateTicket: {roles: roles(domain.RoleAdmin, domain.RoleUsuario)},
	ActionListTickets:  {roles: roles(domain.RoleAdmin, domain.RoleSoporte, domain.RoleUsuario)},
	ActionViewTicket: {
		roles: roles(domain.RoleAdmin, domain.RoleSoporte, domain.RoleUsuario),
		cond:  ticketInScope,
	},
	ActionAssignTicket: {roles: roles(domain.RoleAdmin)},
	ActionChangeTicketStatus: {
		roles: roles(domain.RoleAdmin, domain.RoleSoporte),
		cond:  ticketInScope,
	},
	ActionDeleteTicket: {roles: roles(domain.RoleAdmin)},

	ActionListUsers:         {roles: roles(domain.RoleAdmin)},
	ActionViewUser:          {roles: roles(domain.RoleAdmin)},
	ActionCreateUser:        {roles: roles(domain.RoleAdmin)},
	ActionUpdateUser:        {roles: roles(domain.RoleAdmin)},
	ActionDeleteUser:        {roles: roles(domain.RoleAdmin)},
	ActionListSupportAgents: {roles: roles(domain.RoleAdmin)},
}

// Authorize decides whether id may perform action on res. It performs no I/O.
func Authorize(id domain.Identity, action Action, res Resource) bool {
	r, ok := policy[action]
	if !ok {
		return false
	}
	if _, ok := r.roles[id.Role]; !ok {
		return false
	}
	if r.cond != nil {
		return r.cond(id, res)
	}
	return true
}

// ticketInScope holds when the ticket is visible to the caller: every ticket
// for Admin, assigned tickets for Soporte, own tickets for Usuario.
func ticketInScope(id domain.Identity, res Resource) bool {
	if res.Ticket == nil {
		return false
	}
	switch id.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSoporte:
		return res.Ticket.IsAssignedTo(id.UserID)
	case domain.RoleUsuario:
		return res.Ticket.CreatedBy == id.UserID
	}
	return false
}

// TicketScope restricts a ticket listing to what the caller may see.
type TicketScope struct {
	CreatorID  *int64
	AssigneeID *int64
}

// TicketScopeFor returns the listing scope for id. ok is false for roles that
// may not list tickets at all.
func TicketScopeFor(id domain.Identity) (scope TicketScope, ok bool) {
	if !Authorize(id, ActionListTickets, Resource{}) {
		return TicketScope{}, false
	}
	userID := id.UserID
	switch id.Role {
	case domain.RoleSoporte:
		scope.AssigneeID = &userID
	case domain.RoleUsuario:
		scope.CreatorID = &userID
	}
	return scope, true
}
