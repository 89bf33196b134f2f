package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdeskpro/helpdesk-service/internal/authz"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/lifecycle"
	"github.com/helpdeskpro/helpdesk-service/internal/query"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
	"github.com/helpdeskpro/helpdesk-service/pkg/apperrors"
)

// TicketService coordinates ticket workflows: the authorization engine
// gates each intent, the lifecycle engine computes the new state and the
// events, and repositories persist the result. Events are dispatched only
// after the mutation committed.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// UpdateOutcome distinguishes a successful mutation from a no-op request.
type UpdateOutcome struct {
	Ticket   *domain.Ticket
	NoChange bool
}

// CommentOutcome carries the persisted comment and the possibly
// auto-advanced ticket.
type CommentOutcome struct {
	Ticket  *domain.Ticket
	Comment *domain.Comment
}

// CreateTicket creates a ticket for a client.
func (s *TicketService) CreateTicket(ctx context.Context, identity *domain.User, draft domain.TicketDraft) (*domain.Ticket, error) {
	decision := authz.Authorize(identity, nil, authz.OpCreateTicket, nil)
	if !decision.Allowed {
		return nil, forbid(identity, decision)
	}

	ticket, err := lifecycle.NewTicket(identity, draft)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.publishEvents(ctx, lifecycle.CreationEvents(ticket, identity))
	return ticket, nil
}

// GetTicket fetches a ticket, enforcing visibility. A client asking for
// another client's ticket gets an explicit Forbidden, not a silent miss.
func (s *TicketService) GetTicket(ctx context.Context, identity *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	decision := authz.Authorize(identity, ticket, authz.OpReadTicket, nil)
	if !decision.Allowed {
		return nil, forbid(identity, decision)
	}
	return ticket, nil
}

// ListTickets returns tickets visible to the identity, newest first.
func (s *TicketService) ListTickets(ctx context.Context, identity *domain.User, q query.TicketQuery) ([]domain.Ticket, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	tickets, err := s.tickets.List(ctx, query.BuildTicketFilter(identity, q))
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return tickets, nil
}

// UpdateTicket applies a patch. A request whose effective change set is
// empty yields a no-op outcome rather than an error.
func (s *TicketService) UpdateTicket(ctx context.Context, identity *domain.User, ticketID string, patch *domain.TicketPatch) (*UpdateOutcome, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	decision := authz.Authorize(identity, ticket, authz.OpUpdateTicket, patch)
	if !decision.Allowed {
		return nil, forbid(identity, decision)
	}

	if err := s.checkAssignee(ctx, patch); err != nil {
		return nil, err
	}

	result, err := lifecycle.ApplyUpdate(ticket, identity, patch)
	if err != nil {
		return nil, err
	}
	if result.NoChange {
		return &UpdateOutcome{Ticket: result.Ticket, NoChange: true}, nil
	}

	if err := s.tickets.Update(ctx, result.Ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.publishEvents(ctx, result.Events)
	return &UpdateOutcome{Ticket: result.Ticket}, nil
}

// DeleteTicket removes a ticket and cascades its comments.
func (s *TicketService) DeleteTicket(ctx context.Context, identity *domain.User, ticketID string) error {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	decision := authz.Authorize(identity, ticket, authz.OpDeleteTicket, nil)
	if !decision.Allowed {
		return forbid(identity, decision)
	}

	if err := s.comments.DeleteByTicket(ctx, ticket.ID); err != nil {
		return apperrors.ToDomainError(err)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.ToDomainError(err)
	}
	return nil
}

// ListComments returns a ticket's thread in creation order.
func (s *TicketService) ListComments(ctx context.Context, identity *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	decision := authz.Authorize(identity, ticket, authz.OpReadTicket, nil)
	if !decision.Allowed {
		return nil, forbid(identity, decision)
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return comments, nil
}

// AddComment appends a comment. An agent reply on an open ticket advances
// the status to in_progress as part of the same operation; the comment and
// the derived status update must be visible together.
func (s *TicketService) AddComment(ctx context.Context, identity *domain.User, ticketID, message string) (*CommentOutcome, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	decision := authz.Authorize(identity, ticket, authz.OpCreateComment, nil)
	if !decision.Allowed {
		return nil, forbid(identity, decision)
	}

	result, err := lifecycle.ApplyComment(ticket, identity, message)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, result.Comment); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if result.TicketChanged {
		if err := s.tickets.Update(ctx, result.Ticket); err != nil {
			return nil, apperrors.ToDomainError(err)
		}
	}

	s.publishEvents(ctx, result.Events)
	return &CommentOutcome{Ticket: result.Ticket, Comment: result.Comment}, nil
}

func (s *TicketService) fetchTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.ToDomainError(err)
	}
	return ticket, nil
}

// checkAssignee verifies that a requested assignee references an agent.
func (s *TicketService) checkAssignee(ctx context.Context, patch *domain.TicketPatch) error {
	if patch == nil || patch.AssignedTo == nil || patch.AssignedTo.ID == nil {
		return nil
	}
	assignee, err := s.users.GetByID(ctx, *patch.AssignedTo.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			errs := domain.FieldErrors{}
			errs.Add(string(domain.FieldAssignedTo), "agent not found")
			return apperrors.NewValidationFailed("invalid ticket data", errs)
		}
		return apperrors.ToDomainError(err)
	}
	if !assignee.IsAgent() {
		errs := domain.FieldErrors{}
		errs.Add(string(domain.FieldAssignedTo), "assignee must be an agent")
		return apperrors.NewValidationFailed("invalid ticket data", errs)
	}
	return nil
}

func (s *TicketService) publishEvents(ctx context.Context, evts []events.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, event := range evts {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
}
