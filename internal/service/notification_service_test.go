package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

func TestNotificationService_AssignedEmailsAssignee(t *testing.T) {
	f := newFixture(t)
	agent := f.seedUser(t, "Sofia", "sofia@example.com", domain.RoleSoporte, domain.UserStatusActive)

	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(f.store.Users(), zap.New(core), config.NotificationConfig{
		EmailFrom:  "desk@example.com",
		WebhookURL: "https://hooks.example.com/desk",
	})

	require.NoError(t, svc.Handle(context.Background(), events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: 9,
		Payload:  events.TicketAssignedPayload{AssigneeID: agent.UserID},
	}))

	emails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "sofia@example.com", emails[0].ContextMap()["to"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationService_StubsDisabledWithoutConfig(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(f.store.Users(), zap.New(core), config.NotificationConfig{})

	for _, et := range HandledEvents() {
		require.NoError(t, svc.Handle(context.Background(), events.Event{Type: et, TicketID: 1}))
	}

	assert.Equal(t, 0, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 0, logs.FilterMessage("sendWebhookNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("TicketDeleted").Len())
}

func TestNotificationService_UnknownRecipientIsLogged(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(f.store.Users(), zap.New(core), config.NotificationConfig{EmailFrom: "desk@example.com"})

	require.NoError(t, svc.Handle(context.Background(), events.Event{
		Type:    events.EventTicketAssigned,
		Payload: events.TicketAssignedPayload{AssigneeID: 404},
	}))
	assert.Equal(t, 1, logs.FilterMessage("notification recipient lookup failed").Len())
}
