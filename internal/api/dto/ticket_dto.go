package dto

import (
	"encoding/json"
	"time"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Status, ownership and the creator snapshot
// are never accepted from the request.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// OptionalID distinguishes an absent JSON field from an explicit null, so
// "assigned_to": null can mean "unassign".
type OptionalID struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field as present and captures null vs value.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateTicketRequest payload; nil pointers mean untouched.
type UpdateTicketRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssignedTo  OptionalID `json:"assigned_to"`
}

// Patch converts the request into a domain patch.
func (r *UpdateTicketRequest) Patch() *domain.TicketPatch {
	patch := &domain.TicketPatch{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		status := domain.TicketStatus(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := domain.TicketPriority(*r.Priority)
		patch.Priority = &priority
	}
	if r.AssignedTo.Set {
		patch.AssignedTo = &domain.AssigneePatch{ID: r.AssignedTo.Value}
	}
	return patch
}

// TicketResponse response.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	CreatedBy      string                `json:"created_by"`
	CreatedByName  string                `json:"created_by_name"`
	CreatedByEmail string                `json:"created_by_email"`
	AssignedTo     *string               `json:"assigned_to"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket. The national id snapshot stays
// internal.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		CreatedBy:      ticket.CreatedBy,
		CreatedByName:  ticket.CreatedByName,
		CreatedByEmail: ticket.CreatedByEmail,
		AssignedTo:     ticket.AssignedTo,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}
