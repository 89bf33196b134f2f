package domain

import "time"

// Comment is an append-only message on a ticket thread. Comments are never
// edited or deleted individually; they only go away when their ticket is
// deleted. The author snapshot lets threads render without a join.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	AuthorName string
	AuthorRole UserRole
	Message    string
	CreatedAt  time.Time
}
