package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskpro/helpdesk-service/internal/api/dto"
	"github.com/helpdeskpro/helpdesk-service/internal/auth"
	"github.com/helpdeskpro/helpdesk-service/internal/service"
	"github.com/helpdeskpro/helpdesk-service/pkg/apperrors"
)

// AgentsHandler exposes the agent directory to agents.
type AgentsHandler struct {
	auth *service.AuthService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(authService *service.AuthService) *AgentsHandler {
	return &AgentsHandler{auth: authService}
}

// ListAgents GET /api/agents.
func (h *AgentsHandler) ListAgents(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	agents, err := h.auth.ListAgents(c.Context(), identity)
	if err != nil {
		return err
	}

	items := make([]dto.AgentResponse, 0, len(agents))
	for _, agent := range agents {
		items = append(items, dto.AgentResponse{
			ID:    agent.ID,
			Name:  agent.Name,
			Email: agent.Email,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
