package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	"github.com/spec-kit/support-desk/internal/service"
)

func TestNotificationWorker_DeliversQueuedEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	store := memory.NewStore()
	agent := &domain.User{Name: "Sofia", Email: "sofia@example.com", Role: domain.RoleSoporte, Status: domain.UserStatusActive}
	require.NoError(t, store.Users().Create(context.Background(), agent))

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(store.Users(), logger, config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "http://hooks.local/tickets",
	})
	w := StartNotificationWorker(dispatcher, notifications, logger, 8)
	require.NotNil(t, w)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: 1}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: 1,
		Payload:  events.TicketAssignedPayload{AssigneeID: agent.ID},
	}))

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))

	assert.Equal(t, 1, logs.FilterMessage("TicketCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("TicketAssigned").Len())
	assert.Equal(t, 2, logs.FilterMessage("sendWebhookNotificationStub").Len())

	emails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "sofia@example.com", emails[0].ContextMap()["to"])
}

func TestNotificationWorker_StopIsIdempotent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(nil, nil, config.NotificationConfig{})
	w := StartNotificationWorker(dispatcher, notifications, nil, 0)

	require.NoError(t, w.Stop(context.Background()))
	require.NoError(t, w.Stop(context.Background()))

	// Publishing after shutdown is a no-op rather than a panic.
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketDeleted}))
}

func TestStartNotificationWorker_NilInputs(t *testing.T) {
	assert.Nil(t, StartNotificationWorker(nil, nil, nil, 1))
	var w *NotificationWorker
	assert.NoError(t, w.Stop(context.Background()))
}
