package events

import (
	"time"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventCommentAdded        EventType = "comment_added"
	EventReminder            EventType = "reminder"
)

// Actor encapsulates actor metadata for an event. Reminder events are
// emitted by the sweep itself and carry no actor.
type Actor struct {
	UserID string          `json:"user_id,omitempty"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a lifecycle event emitted by the core and consumed only
// by the notification boundary.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatorName  string                `json:"creator_name"`
	CreatorEmail string                `json:"creator_email"`
}

// TicketStatusChangedPayload payload. Every effective status change emits
// one of these tagged with the new status; only resolved and closed have
// notification templates, the rest are observability-only.
type TicketStatusChangedPayload struct {
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	Title        string              `json:"title"`
	CreatorName  string              `json:"creator_name"`
	CreatorEmail string              `json:"creator_email"`
}

// CommentAddedPayload payload, emitted only for agent comments.
type CommentAddedPayload struct {
	Message      string `json:"message"`
	AuthorName   string `json:"author_name"`
	Title        string `json:"title"`
	CreatorName  string `json:"creator_name"`
	CreatorEmail string `json:"creator_email"`
}

// ReminderPayload payload for stale-ticket reminders.
type ReminderPayload struct {
	Recipients  []string  `json:"recipients"`
	Title       string    `json:"title"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
	Link        string    `json:"link"`
}
