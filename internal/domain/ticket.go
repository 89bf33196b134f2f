package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether the status is one of the four lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether the priority is one of the enumerated values.
func (p TicketPriority) Valid() bool {
	return p == TicketPriorityLow || p == TicketPriorityMedium || p == TicketPriorityHigh
}

// Ticket is the workflow unit. The creator snapshot fields are captured at
// creation time and never recomputed, so later profile edits do not change
// historical tickets.
type Ticket struct {
	ID                  string
	Title               string
	Description         string
	CreatedBy           string
	CreatedByName       string
	CreatedByEmail      string
	CreatedByNationalID string
	AssignedTo          *string
	Status              TicketStatus
	Priority            TicketPriority
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TicketDraft carries the client-supplied fields for ticket creation.
// Ownership, the creator snapshot and the initial status are derived from
// the identity, never taken from the request.
type TicketDraft struct {
	Title       string
	Description string
	Priority    TicketPriority
}

// AssigneePatch distinguishes "unassign" (nil ID) from "assign to ID".
type AssigneePatch struct {
	ID *string
}

// TicketPatch is a partial ticket update. Nil pointers mean untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
	AssignedTo  *AssigneePatch
}

// TicketField names a mutable ticket field for authorization decisions.
type TicketField string

const (
	FieldTitle       TicketField = "title"
	FieldDescription TicketField = "description"
	FieldStatus      TicketField = "status"
	FieldPriority    TicketField = "priority"
	FieldAssignedTo  TicketField = "assigned_to"
)

// Fields lists the fields the patch touches.
func (p *TicketPatch) Fields() []TicketField {
	if p == nil {
		return nil
	}
	var fields []TicketField
	if p.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if p.Description != nil {
		fields = append(fields, FieldDescription)
	}
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.Priority != nil {
		fields = append(fields, FieldPriority)
	}
	if p.AssignedTo != nil {
		fields = append(fields, FieldAssignedTo)
	}
	return fields
}

// Empty reports whether the patch touches no fields at all.
func (p *TicketPatch) Empty() bool {
	return len(p.Fields()) == 0
}
