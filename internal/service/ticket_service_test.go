package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/query"
)

type ticketServiceFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	users      *fakeUserRepo
	dispatcher *recordingDispatcher
	client     *domain.User
	otherUser  *domain.User
	agent      *domain.User
}

func newTicketServiceFixture(t *testing.T) *ticketServiceFixture {
	t.Helper()

	tickets := newFakeTicketRepo()
	comments := newFakeCommentRepo()
	users := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}

	client := users.add(domain.User{
		ID: "c1", Name: "Jamie Client", Email: "jamie@example.com",
		NationalID: "NID-11111", Role: domain.RoleClient,
	})
	other := users.add(domain.User{
		ID: "c2", Name: "Robin Client", Email: "robin@example.com",
		NationalID: "NID-22222", Role: domain.RoleClient,
	})
	agent := users.add(domain.User{
		ID: "a1", Name: "Alex Agent", Email: "alex@example.com",
		NationalID: "NID-33333", Role: domain.RoleAgent,
	})

	return &ticketServiceFixture{
		service: NewTicketService(TicketDependencies{
			TicketRepo:  tickets,
			CommentRepo: comments,
			UserRepo:    users,
			Dispatcher:  dispatcher,
		}),
		tickets:    tickets,
		comments:   comments,
		users:      users,
		dispatcher: dispatcher,
		client:     &client,
		otherUser:  &other,
		agent:      &agent,
	}
}

func (f *ticketServiceFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.CreateTicket(context.Background(), f.client, domain.TicketDraft{
		Title:       "printer keeps jamming",
		Description: "the office printer jams on every large job",
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicket(t *testing.T) {
	f := newTicketServiceFixture(t)

	ticket := f.createTicket(t)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "jamie@example.com", ticket.CreatedByEmail)

	published := f.dispatcher.byType(events.EventTicketCreated)
	require.Len(t, published, 1)
	assert.Equal(t, ticket.ID, published[0].TicketID)
	assert.NotEmpty(t, published[0].ID)
	assert.False(t, published[0].Timestamp.IsZero())
}

func TestCreateTicketAgentForbidden(t *testing.T) {
	f := newTicketServiceFixture(t)

	_, err := f.service.CreateTicket(context.Background(), f.agent, domain.TicketDraft{
		Title:       "agent created ticket",
		Description: "agents should not be able to do this",
	})
	require.Error(t, err)
	assertCode(t, err, "FORBIDDEN")
}

func TestCreateTicketUnauthenticated(t *testing.T) {
	f := newTicketServiceFixture(t)

	_, err := f.service.CreateTicket(context.Background(), nil, domain.TicketDraft{
		Title:       "anonymous ticket",
		Description: "should never be accepted here",
	})
	require.Error(t, err)
	assertCode(t, err, "UNAUTHENTICATED")
}

func TestGetTicketVisibility(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	got, err := f.service.GetTicket(context.Background(), f.client, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = f.service.GetTicket(context.Background(), f.agent, ticket.ID)
	assert.NoError(t, err)

	// Another client gets an explicit denial, not a not-found.
	_, err = f.service.GetTicket(context.Background(), f.otherUser, ticket.ID)
	assertCode(t, err, "FORBIDDEN")
}

func TestGetTicketNotFound(t *testing.T) {
	f := newTicketServiceFixture(t)

	_, err := f.service.GetTicket(context.Background(), f.agent, "missing")
	assertCode(t, err, "NOT_FOUND")
}

func TestListTicketsClampsClient(t *testing.T) {
	f := newTicketServiceFixture(t)
	f.createTicket(t)

	otherTicket, err := f.service.CreateTicket(context.Background(), f.otherUser, domain.TicketDraft{
		Title:       "cannot log in to vpn",
		Description: "the vpn client rejects my credentials since monday",
	})
	require.NoError(t, err)

	mine, err := f.service.ListTickets(context.Background(), f.client, query.TicketQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.NotEqual(t, otherTicket.ID, mine[0].ID)

	all, err := f.service.ListTickets(context.Background(), f.agent, query.TicketQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateTicketAgentAssignsAndResolves(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	resolved := domain.TicketStatusResolved
	outcome, err := f.service.UpdateTicket(context.Background(), f.agent, ticket.ID, &domain.TicketPatch{
		Status:     &resolved,
		AssignedTo: &domain.AssigneePatch{ID: &f.agent.ID},
	})
	require.NoError(t, err)
	assert.False(t, outcome.NoChange)
	assert.Equal(t, domain.TicketStatusResolved, outcome.Ticket.Status)
	require.NotNil(t, outcome.Ticket.AssignedTo)
	assert.Equal(t, f.agent.ID, *outcome.Ticket.AssignedTo)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)

	statusEvents := f.dispatcher.byType(events.EventTicketStatusChanged)
	require.Len(t, statusEvents, 1)
}

func TestUpdateTicketClientDenials(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	resolved := domain.TicketStatusResolved
	_, err := f.service.UpdateTicket(context.Background(), f.client, ticket.ID, &domain.TicketPatch{Status: &resolved})
	assertCode(t, err, "FORBIDDEN")

	_, err = f.service.UpdateTicket(context.Background(), f.client, ticket.ID, &domain.TicketPatch{
		AssignedTo: &domain.AssigneePatch{ID: &f.agent.ID},
	})
	assertCode(t, err, "FORBIDDEN")

	title := "printer jams on every single job"
	_, err = f.service.UpdateTicket(context.Background(), f.otherUser, ticket.ID, &domain.TicketPatch{Title: &title})
	assertCode(t, err, "FORBIDDEN")
}

func TestUpdateTicketClientMixedPatchAppliesNothing(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	// One forbidden field fails the whole patch; the allowed priority
	// change must not land either.
	resolved := domain.TicketStatusResolved
	low := domain.TicketPriorityLow
	_, err := f.service.UpdateTicket(context.Background(), f.client, ticket.ID, &domain.TicketPatch{
		Status:   &resolved,
		Priority: &low,
	})
	assertCode(t, err, "FORBIDDEN")

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Equal(t, domain.TicketPriorityHigh, stored.Priority)
}

func TestUpdateTicketNoChange(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	outcome, err := f.service.UpdateTicket(context.Background(), f.agent, ticket.ID, &domain.TicketPatch{})
	require.NoError(t, err)
	assert.True(t, outcome.NoChange)

	sameTitle := ticket.Title
	outcome, err = f.service.UpdateTicket(context.Background(), f.agent, ticket.ID, &domain.TicketPatch{Title: &sameTitle})
	require.NoError(t, err)
	assert.True(t, outcome.NoChange)
	assert.Empty(t, f.dispatcher.byType(events.EventTicketStatusChanged))
}

func TestUpdateTicketAssigneeMustBeAgent(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.UpdateTicket(context.Background(), f.agent, ticket.ID, &domain.TicketPatch{
		AssignedTo: &domain.AssigneePatch{ID: &f.otherUser.ID},
	})
	require.Error(t, err)
	assertCode(t, err, "VALIDATION_FAILED")

	missing := "user-404"
	_, err = f.service.UpdateTicket(context.Background(), f.agent, ticket.ID, &domain.TicketPatch{
		AssignedTo: &domain.AssigneePatch{ID: &missing},
	})
	assertCode(t, err, "VALIDATION_FAILED")
}

func TestDeleteTicketCascadesComments(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.AddComment(context.Background(), f.client, ticket.ID, "still broken today")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteTicket(context.Background(), f.agent, ticket.ID))

	_, err = f.tickets.GetByID(context.Background(), ticket.ID)
	assert.Error(t, err)
	remaining, err := f.comments.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteTicketClientForbidden(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	err := f.service.DeleteTicket(context.Background(), f.client, ticket.ID)
	assertCode(t, err, "FORBIDDEN")
}

func TestAddCommentAgentAdvancesTicket(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	outcome, err := f.service.AddComment(context.Background(), f.agent, ticket.ID, "taking a look now")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, outcome.Ticket.Status)
	assert.Equal(t, domain.RoleAgent, outcome.Comment.AuthorRole)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)

	assert.Len(t, f.dispatcher.byType(events.EventTicketStatusChanged), 1)
	assert.Len(t, f.dispatcher.byType(events.EventCommentAdded), 1)
}

func TestAddCommentClientLeavesStatus(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	outcome, err := f.service.AddComment(context.Background(), f.client, ticket.ID, "any news on this?")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, outcome.Ticket.Status)
	assert.Empty(t, f.dispatcher.byType(events.EventCommentAdded))
}

func TestAddCommentClosedTicket(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	closed := domain.TicketStatusClosed
	_, err := f.service.UpdateTicket(context.Background(), f.agent, ticket.ID, &domain.TicketPatch{Status: &closed})
	require.NoError(t, err)

	_, err = f.service.AddComment(context.Background(), f.agent, ticket.ID, "one more thing")
	assertCode(t, err, "FORBIDDEN")
	_, err = f.service.AddComment(context.Background(), f.client, ticket.ID, "reopening please")
	assertCode(t, err, "FORBIDDEN")
}

func TestAddCommentStrangerForbidden(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.AddComment(context.Background(), f.otherUser, ticket.ID, "me too")
	assertCode(t, err, "FORBIDDEN")
}

func TestListCommentsVisibility(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.AddComment(context.Background(), f.client, ticket.ID, "adding more details here")
	require.NoError(t, err)

	comments, err := f.service.ListComments(context.Background(), f.client, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	_, err = f.service.ListComments(context.Background(), f.otherUser, ticket.ID)
	assertCode(t, err, "FORBIDDEN")
}
