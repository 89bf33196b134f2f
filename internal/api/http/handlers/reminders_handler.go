package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskpro/helpdesk-service/internal/service"
	"github.com/helpdeskpro/helpdesk-service/pkg/apperrors"
)

// RemindersHandler exposes the stale-ticket sweep to an external scheduler.
// Access is a shared secret, not a user session.
type RemindersHandler struct {
	service *service.ReminderService
	secret  string
}

// NewRemindersHandler constructs handler.
func NewRemindersHandler(reminderService *service.ReminderService, secret string) *RemindersHandler {
	return &RemindersHandler{service: reminderService, secret: secret}
}

// Sweep GET /cron/reminders. The secret is accepted either as a bearer
// token or as a ?key= query parameter for schedulers that cannot set
// headers.
func (h *RemindersHandler) Sweep(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return apperrors.NewUnauthenticated("invalid cron secret")
	}

	result, err := h.service.Sweep(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"tickets_found":  result.TicketsFound,
		"reminders_sent": result.RemindersSent,
	})
}

func (h *RemindersHandler) authorized(c *fiber.Ctx) bool {
	if h.secret == "" {
		return false
	}
	header := c.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1 {
			return true
		}
	}
	key := c.Query("key")
	return key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(h.secret)) == 1
}
