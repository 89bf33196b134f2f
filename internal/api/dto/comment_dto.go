package dto

import (
	"time"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message string `json:"message"`
}

// CommentResponse response.
type CommentResponse struct {
	ID         string          `json:"id"`
	TicketID   string          `json:"ticket_id"`
	AuthorID   string          `json:"author_id"`
	AuthorName string          `json:"author_name"`
	AuthorRole domain.UserRole `json:"author_role"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		AuthorRole: comment.AuthorRole,
		Message:    comment.Message,
		CreatedAt:  comment.CreatedAt,
	}
}
