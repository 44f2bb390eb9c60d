package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository/memory"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "service-test-secret-that-is-long-enough",
			AccessTokenTTLMinutes: 480,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

type fixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	published  []events.Event
	auth       *AuthService
	tickets    *TicketService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	for _, et := range HandledEvents() {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}

	cfg := testConfig()
	authSvc, err := NewAuthService(cfg, AuthDependencies{UserRepo: f.store.Users()})
	require.NoError(t, err)
	f.auth = authSvc
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo: f.store.Tickets(),
		UserRepo:   f.store.Users(),
		Dispatcher: f.dispatcher,
	})
	f.users = NewUserService(cfg, UserDependencies{UserRepo: f.store.Users()})
	return f
}

// seedUser stores an account directly, bypassing the services.
func (f *fixture) seedUser(t *testing.T, name, email string, role domain.Role, status domain.UserStatus) domain.Identity {
	t.Helper()
	hash, err := auth.HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, Status: status}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return domain.Identity{UserID: u.ID, Role: role}
}

func (f *fixture) seedTicket(t *testing.T, creator domain.Identity, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), creator, TicketCreateInput{
		Title:       title,
		Description: title + " details",
	})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		types = append(types, e.Type)
	}
	return types
}

func strPtr(v string) *string { return &v }
