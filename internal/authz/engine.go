// Package authz holds the pure authorization rules for the ticket workflow.
// The engine only decides; applying effects is the lifecycle engine's job.
package authz

import (
	"fmt"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// Operation enumerates the intents the engine can gate.
type Operation string

const (
	OpCreateTicket  Operation = "create_ticket"
	OpReadTicket    Operation = "read_ticket"
	OpUpdateTicket  Operation = "update_ticket"
	OpDeleteTicket  Operation = "delete_ticket"
	OpCreateComment Operation = "create_comment"
	OpListAgents    Operation = "list_agents"
)

// Decision is the outcome of an authorization check. AllowedFields is the
// explicit per-role allow-list applied before any write reaches storage;
// unknown fields are never silently dropped.
type Decision struct {
	Allowed       bool
	AllowedFields []domain.TicketField
	Reason        string
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

func allow(fields ...domain.TicketField) Decision {
	return Decision{Allowed: true, AllowedFields: fields}
}

var (
	clientCreateFields = []domain.TicketField{
		domain.FieldTitle, domain.FieldDescription, domain.FieldPriority,
	}
	clientUpdateFields = []domain.TicketField{
		domain.FieldTitle, domain.FieldDescription, domain.FieldPriority, domain.FieldStatus,
	}
	agentUpdateFields = []domain.TicketField{
		domain.FieldTitle, domain.FieldDescription, domain.FieldPriority,
		domain.FieldStatus, domain.FieldAssignedTo,
	}
)

// Authorize gates an intent for the given identity and ticket. The ticket
// may be nil for operations that do not target one (create, list agents).
// For updates the patch is inspected so that a client request touching a
// forbidden field or value fails as a whole rather than being trimmed.
func Authorize(identity *domain.User, ticket *domain.Ticket, op Operation, patch *domain.TicketPatch) Decision {
	if identity == nil {
		return deny("authentication required")
	}

	switch op {
	case OpCreateTicket:
		if !identity.IsClient() {
			return deny("only clients can create tickets")
		}
		return allow(clientCreateFields...)

	case OpReadTicket:
		if ticket == nil {
			return deny("no ticket to read")
		}
		if identity.IsAgent() {
			return allow()
		}
		if ticket.CreatedBy != identity.ID {
			return deny("you do not have permission to view this ticket")
		}
		return allow()

	case OpUpdateTicket:
		if ticket == nil {
			return deny("no ticket to update")
		}
		if identity.IsAgent() {
			return allow(agentUpdateFields...)
		}
		if ticket.CreatedBy != identity.ID {
			return deny("you do not have permission to modify this ticket")
		}
		return clientUpdateDecision(patch)

	case OpDeleteTicket:
		if !identity.IsAgent() {
			return deny("only agents can delete tickets")
		}
		return allow()

	case OpCreateComment:
		if ticket == nil {
			return deny("no ticket to comment on")
		}
		if ticket.Status == domain.TicketStatusClosed {
			return deny("closed tickets are read-only")
		}
		if identity.IsAgent() {
			return allow()
		}
		if ticket.CreatedBy != identity.ID {
			return deny("you do not have permission to comment on this ticket")
		}
		return allow()

	case OpListAgents:
		if !identity.IsAgent() {
			return deny("only agents can list agents")
		}
		return allow()
	}

	return deny(fmt.Sprintf("unknown operation %q", op))
}

// clientUpdateDecision fails the whole request when the patch touches the
// assignment or tries to move the ticket to resolved/closed. Clients never
// get a trimmed write.
func clientUpdateDecision(patch *domain.TicketPatch) Decision {
	if patch != nil {
		if patch.AssignedTo != nil {
			return deny("you do not have permission to assign tickets")
		}
		if patch.Status != nil &&
			(*patch.Status == domain.TicketStatusResolved || *patch.Status == domain.TicketStatusClosed) {
			return deny("you do not have permission to set this status")
		}
	}
	return allow(clientUpdateFields...)
}
