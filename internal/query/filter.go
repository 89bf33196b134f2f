// Package query derives storage-layer filters from an identity and caller
// supplied list parameters, enforcing row-level visibility even if the
// authorization layer were bypassed.
package query

import (
	"strings"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
)

// FilterAll is the sentinel meaning "do not filter on this dimension".
const FilterAll = "all"

// TicketQuery carries the caller-supplied list parameters.
type TicketQuery struct {
	Status   string
	Priority string
	Search   string
}

// BuildTicketFilter turns the query into a repository filter. A client
// identity is unconditionally clamped to its own tickets regardless of what
// the caller supplied; agents see everything. Result ordering is always
// newest-first and lives in the repository.
func BuildTicketFilter(identity *domain.User, q TicketQuery) repository.TicketFilter {
	filter := repository.TicketFilter{}

	if identity.IsClient() {
		createdBy := identity.ID
		filter.CreatedBy = &createdBy
	}

	if status := strings.TrimSpace(q.Status); status != "" && status != FilterAll {
		s := domain.TicketStatus(status)
		filter.Status = &s
	}
	if priority := strings.TrimSpace(q.Priority); priority != "" && priority != FilterAll {
		p := domain.TicketPriority(priority)
		filter.Priority = &p
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		filter.Search = &search
	}

	return filter
}
