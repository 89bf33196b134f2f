// Package lifecycle validates and applies ticket transitions and derives
// the events each mutation must emit. It never talks to storage; callers
// persist the returned entities and hand the events to the dispatcher.
package lifecycle

import (
	"strings"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/pkg/apperrors"
)

// UpdateResult is the outcome of applying a patch. NoChange marks a request
// whose effective change set is empty; that is a distinguishable no-op, not
// an error.
type UpdateResult struct {
	Ticket   *domain.Ticket
	Events   []events.Event
	NoChange bool
}

// CommentResult is the outcome of appending a comment. TicketChanged is set
// when an automatic status advance piggybacked on the comment; both writes
// must land together.
type CommentResult struct {
	Ticket        *domain.Ticket
	Comment       *domain.Comment
	TicketChanged bool
	Events        []events.Event
}

// NewTicket builds a ticket from a client draft. The identity supplies
// ownership and the creator snapshot; status is always open.
func NewTicket(identity *domain.User, draft domain.TicketDraft) (*domain.Ticket, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)

	if errs := domain.ValidateTicketDraft(draft); !errs.Empty() {
		return nil, apperrors.NewValidationFailed("invalid ticket data", errs)
	}

	priority := draft.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	return &domain.Ticket{
		Title:               draft.Title,
		Description:         draft.Description,
		CreatedBy:           identity.ID,
		CreatedByName:       strings.TrimSpace(identity.Name),
		CreatedByEmail:      strings.ToLower(strings.TrimSpace(identity.Email)),
		CreatedByNationalID: strings.TrimSpace(identity.NationalID),
		Status:              domain.TicketStatusOpen,
		Priority:            priority,
	}, nil
}

// CreationEvents derives the events for a persisted new ticket.
func CreationEvents(ticket *domain.Ticket, identity *domain.User) []events.Event {
	return []events.Event{{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor(identity),
		Payload: events.TicketCreatedPayload{
			Title:        ticket.Title,
			Priority:     ticket.Priority,
			CreatorName:  ticket.CreatedByName,
			CreatorEmail: ticket.CreatedByEmail,
		},
	}}
}

// ApplyUpdate validates the patch and applies it to a copy of the ticket.
// The status graph has no forbidden edges here; client-side restrictions
// are the authorization engine's concern and have already been enforced.
func ApplyUpdate(ticket *domain.Ticket, identity *domain.User, patch *domain.TicketPatch) (*UpdateResult, error) {
	if patch.Empty() {
		copied := *ticket
		return &UpdateResult{Ticket: &copied, NoChange: true}, nil
	}

	if errs := domain.ValidateTicketPatch(patch); !errs.Empty() {
		return nil, apperrors.NewValidationFailed("invalid ticket data", errs)
	}

	updated := *ticket
	changed := false

	if patch.Title != nil {
		if title := strings.TrimSpace(*patch.Title); title != updated.Title {
			updated.Title = title
			changed = true
		}
	}
	if patch.Description != nil {
		if desc := strings.TrimSpace(*patch.Description); desc != updated.Description {
			updated.Description = desc
			changed = true
		}
	}
	if patch.Priority != nil && *patch.Priority != updated.Priority {
		updated.Priority = *patch.Priority
		changed = true
	}
	if patch.AssignedTo != nil && !sameAssignee(updated.AssignedTo, patch.AssignedTo.ID) {
		updated.AssignedTo = patch.AssignedTo.ID
		changed = true
	}

	var evts []events.Event
	if patch.Status != nil && *patch.Status != updated.Status {
		old := updated.Status
		updated.Status = *patch.Status
		changed = true
		evts = append(evts, statusChangedEvent(&updated, identity, old))
	}

	if !changed {
		return &UpdateResult{Ticket: &updated, NoChange: true}, nil
	}
	return &UpdateResult{Ticket: &updated, Events: evts}, nil
}

// ApplyComment builds the comment and derives the automatic transition: an
// agent's reply on an open ticket advances it to in_progress in the same
// result, whether or not the agent asked for a status change.
func ApplyComment(ticket *domain.Ticket, identity *domain.User, message string) (*CommentResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		errs := domain.FieldErrors{}
		errs.Add("message", "message is required")
		return nil, apperrors.NewValidationFailed("invalid comment data", errs)
	}

	updated := *ticket
	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   identity.ID,
		AuthorName: identity.Name,
		AuthorRole: identity.Role,
		Message:    message,
	}

	result := &CommentResult{Ticket: &updated, Comment: comment}

	if identity.IsAgent() && updated.Status == domain.TicketStatusOpen {
		old := updated.Status
		updated.Status = domain.TicketStatusInProgress
		result.TicketChanged = true
		result.Events = append(result.Events, statusChangedEvent(&updated, identity, old))
	}

	if identity.IsAgent() {
		result.Events = append(result.Events, events.Event{
			Type:     events.EventCommentAdded,
			TicketID: ticket.ID,
			Actor:    actor(identity),
			Payload: events.CommentAddedPayload{
				Message:      message,
				AuthorName:   identity.Name,
				Title:        updated.Title,
				CreatorName:  updated.CreatedByName,
				CreatorEmail: updated.CreatedByEmail,
			},
		})
	}

	return result, nil
}

func statusChangedEvent(ticket *domain.Ticket, identity *domain.User, old domain.TicketStatus) events.Event {
	return events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor(identity),
		Payload: events.TicketStatusChangedPayload{
			OldStatus:    old,
			NewStatus:    ticket.Status,
			Title:        ticket.Title,
			CreatorName:  ticket.CreatedByName,
			CreatorEmail: ticket.CreatedByEmail,
		},
	}
}

func actor(identity *domain.User) events.Actor {
	if identity == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: identity.ID, Role: identity.Role}
}

func sameAssignee(current, next *string) bool {
	if current == nil || next == nil {
		return current == next
	}
	return *current == *next
}
