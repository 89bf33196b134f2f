package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/config"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
	"github.com/helpdeskpro/helpdesk-service/pkg/apperrors"
)

// ReminderService runs the stale-ticket sweep. It is externally triggered,
// shares no in-process state with request handling, and only reads ticket
// and agent records.
type ReminderService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	marker     repository.ReminderMarker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	baseURL    string
	staleAfter time.Duration
}

// ReminderDependencies bundles collaborators for the sweep.
type ReminderDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Marker     repository.ReminderMarker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewReminderService constructs the service.
func NewReminderService(cfg config.Config, deps ReminderDependencies) *ReminderService {
	return &ReminderService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		marker:     deps.Marker,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		baseURL:    cfg.App.BaseURL,
		staleAfter: cfg.Reminder.StaleAfter(),
	}
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	TicketsFound  int
	RemindersSent int
}

// Sweep finds every ticket still open past the threshold and emits one
// reminder event per ticket, addressed to the assigned agent or, when
// unassigned, to every agent. A redis marker with the threshold as TTL
// suppresses repeat reminders for the same ticket between runs.
func (s *ReminderService) Sweep(ctx context.Context) (*SweepResult, error) {
	cutoff := time.Now().Add(-s.staleAfter)

	stale, err := s.tickets.ListStaleOpen(ctx, cutoff)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	result := &SweepResult{TicketsFound: len(stale)}
	if len(stale) == 0 {
		return result, nil
	}

	agents, err := s.users.ListAgents(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	agentEmails := make([]string, 0, len(agents))
	for _, agent := range agents {
		agentEmails = append(agentEmails, agent.Email)
	}

	for i := range stale {
		ticket := &stale[i]

		if s.marker != nil {
			fresh, err := s.marker.TryMark(ctx, ticket.ID, s.staleAfter)
			if err != nil {
				// Marker store being down must not stop reminders;
				// worst case agents get a duplicate email.
				s.logger.Warn("reminder marker unavailable",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
			} else if !fresh {
				continue
			}
		}

		recipients := s.recipientsFor(ctx, ticket, agentEmails)
		if len(recipients) == 0 {
			s.logger.Warn("stale ticket has no reminder recipients",
				zap.String("ticket_id", ticket.ID))
			continue
		}

		s.publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReminder,
			TicketID:  ticket.ID,
			Timestamp: time.Now(),
			Payload: events.ReminderPayload{
				Recipients:  recipients,
				Title:       ticket.Title,
				CreatorName: ticket.CreatedByName,
				CreatedAt:   ticket.CreatedAt,
				Link:        fmt.Sprintf("%s/agent/tickets/%s", s.baseURL, ticket.ID),
			},
		})
		result.RemindersSent++
	}

	return result, nil
}

// recipientsFor resolves the assigned agent's email, falling back to every
// agent when the ticket is unassigned or the assignee cannot be loaded.
func (s *ReminderService) recipientsFor(ctx context.Context, ticket *domain.Ticket, agentEmails []string) []string {
	if ticket.AssignedTo == nil {
		return agentEmails
	}
	assignee, err := s.users.GetByID(ctx, *ticket.AssignedTo)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("failed to load assignee for reminder",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
		return agentEmails
	}
	return []string{assignee.Email}
}

func (s *ReminderService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
