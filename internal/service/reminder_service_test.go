package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/config"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
)

type reminderFixture struct {
	service    *ReminderService
	tickets    *fakeTicketRepo
	users      *fakeUserRepo
	marker     *fakeMarker
	dispatcher *recordingDispatcher
}

func newReminderFixture() *reminderFixture {
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo()
	marker := newFakeMarker()
	dispatcher := &recordingDispatcher{}

	users.add(domain.User{ID: "a1", Name: "Alex Agent", Email: "alex@example.com", Role: domain.RoleAgent})
	users.add(domain.User{ID: "a2", Name: "Bobby Agent", Email: "bobby@example.com", Role: domain.RoleAgent})

	cfg := config.Config{
		App:      config.AppConfig{BaseURL: "https://helpdesk.example.com"},
		Reminder: config.ReminderConfig{StaleAfterHours: 24},
	}
	svc := NewReminderService(cfg, ReminderDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Marker:     marker,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return &reminderFixture{service: svc, tickets: tickets, users: users, marker: marker, dispatcher: dispatcher}
}

func (f *reminderFixture) seedTicket(id string, status domain.TicketStatus, age time.Duration, assignedTo *string) {
	f.tickets.tickets[id] = domain.Ticket{
		ID:             id,
		Title:          "printer keeps jamming",
		CreatedBy:      "c1",
		CreatedByName:  "Jamie Client",
		CreatedByEmail: "jamie@example.com",
		Status:         status,
		Priority:       domain.TicketPriorityMedium,
		AssignedTo:     assignedTo,
		CreatedAt:      time.Now().Add(-age),
	}
}

func TestSweepRemindsOnlyStaleOpenTickets(t *testing.T) {
	f := newReminderFixture()
	f.seedTicket("t-stale", domain.TicketStatusOpen, 25*time.Hour, nil)
	f.seedTicket("t-fresh", domain.TicketStatusOpen, 1*time.Hour, nil)
	f.seedTicket("t-progress", domain.TicketStatusInProgress, 48*time.Hour, nil)
	f.seedTicket("t-closed", domain.TicketStatusClosed, 48*time.Hour, nil)

	result, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TicketsFound)
	assert.Equal(t, 1, result.RemindersSent)

	reminders := f.dispatcher.byType(events.EventReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, "t-stale", reminders[0].TicketID)

	payload, ok := reminders[0].Payload.(events.ReminderPayload)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"alex@example.com", "bobby@example.com"}, payload.Recipients)
	assert.Equal(t, "https://helpdesk.example.com/agent/tickets/t-stale", payload.Link)
}

func TestSweepAssignedTicketTargetsAssignee(t *testing.T) {
	f := newReminderFixture()
	assignee := "a2"
	f.seedTicket("t-assigned", domain.TicketStatusOpen, 30*time.Hour, &assignee)

	result, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemindersSent)

	reminders := f.dispatcher.byType(events.EventReminder)
	require.Len(t, reminders, 1)
	payload := reminders[0].Payload.(events.ReminderPayload)
	assert.Equal(t, []string{"bobby@example.com"}, payload.Recipients)
}

func TestSweepUnknownAssigneeFallsBackToAllAgents(t *testing.T) {
	f := newReminderFixture()
	gone := "a-gone"
	f.seedTicket("t-orphan", domain.TicketStatusOpen, 30*time.Hour, &gone)

	result, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemindersSent)

	payload := f.dispatcher.byType(events.EventReminder)[0].Payload.(events.ReminderPayload)
	assert.ElementsMatch(t, []string{"alex@example.com", "bobby@example.com"}, payload.Recipients)
}

func TestSweepMarkerSuppressesRepeats(t *testing.T) {
	f := newReminderFixture()
	f.seedTicket("t-stale", domain.TicketStatusOpen, 25*time.Hour, nil)

	first, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.RemindersSent)

	second, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.TicketsFound)
	assert.Equal(t, 0, second.RemindersSent)

	assert.Len(t, f.dispatcher.byType(events.EventReminder), 1)
}

func TestSweepMarkerFailureDoesNotBlock(t *testing.T) {
	f := newReminderFixture()
	f.seedTicket("t-stale", domain.TicketStatusOpen, 25*time.Hour, nil)
	f.marker.err = errors.New("redis down")

	result, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemindersSent)
}

func TestSweepNothingStale(t *testing.T) {
	f := newReminderFixture()
	f.seedTicket("t-fresh", domain.TicketStatusOpen, time.Hour, nil)

	result, err := f.service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.TicketsFound)
	assert.Equal(t, 0, result.RemindersSent)
	assert.Empty(t, f.dispatcher.published())
}
