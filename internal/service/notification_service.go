package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/mail"
	"github.com/helpdeskpro/helpdesk-service/internal/observability"
)

const sendTimeout = 15 * time.Second

// NotificationService turns lifecycle events into emails. Delivery is
// fire-and-forget: it happens on a goroutine after the triggering mutation
// committed, and a failed send is logged and swallowed, never surfaced to
// the operation that caused it.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mail.Sender
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mail.Sender, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventReminder, n.handleReminder)
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	n.observe(event)
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.deliver(mail.TemplateTicketCreated,
		[]string{payload.CreatorEmail},
		"[HelpDeskPro] Ticket received: "+payload.Title,
		mail.TicketMailData{
			TicketID:    event.TicketID,
			Title:       payload.Title,
			Priority:    string(payload.Priority),
			CreatorName: payload.CreatorName,
		})
	return nil
}

// handleStatusChanged mails the creator for resolved and closed; every
// other transition has no registered template and is only logged.
func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	n.observe(event)
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}

	var template, subject string
	switch payload.NewStatus {
	case domain.TicketStatusResolved:
		template = mail.TemplateTicketResolved
		subject = "[HelpDeskPro] Ticket resolved: " + payload.Title
	case domain.TicketStatusClosed:
		template = mail.TemplateTicketClosed
		subject = "[HelpDeskPro] Ticket closed: " + payload.Title
	default:
		return nil
	}

	n.deliver(template,
		[]string{payload.CreatorEmail},
		subject,
		mail.TicketMailData{
			TicketID:    event.TicketID,
			Title:       payload.Title,
			CreatorName: payload.CreatorName,
		})
	return nil
}

func (n *NotificationService) handleCommentAdded(_ context.Context, event events.Event) error {
	n.observe(event)
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return nil
	}
	n.deliver(mail.TemplateAgentReply,
		[]string{payload.CreatorEmail},
		"[HelpDeskPro] New reply on ticket: "+payload.Title,
		mail.ReplyMailData{
			TicketID:    event.TicketID,
			Title:       payload.Title,
			CreatorName: payload.CreatorName,
			AgentName:   payload.AuthorName,
			Message:     payload.Message,
		})
	return nil
}

func (n *NotificationService) handleReminder(_ context.Context, event events.Event) error {
	n.observe(event)
	payload, ok := event.Payload.(events.ReminderPayload)
	if !ok {
		return nil
	}
	n.deliver(mail.TemplateStaleReminder,
		payload.Recipients,
		"[HelpDeskPro] Reminder: unattended ticket "+payload.Title,
		mail.ReminderMailData{
			TicketID:    event.TicketID,
			Title:       payload.Title,
			CreatorName: payload.CreatorName,
			CreatedAt:   payload.CreatedAt,
			Link:        payload.Link,
		})
	return nil
}

func (n *NotificationService) observe(event events.Event) {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("lifecycle event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID))
}

// deliver renders and sends on a goroutine detached from the request
// context so the triggering operation never waits on email transport.
func (n *NotificationService) deliver(template string, to []string, subject string, data any) {
	if n.sender == nil || len(to) == 0 {
		return
	}

	body, err := mail.Render(template, data)
	if err != nil {
		n.logger.Error("failed to render notification", zap.String("template", template), zap.Error(err))
		n.metrics.RecordEmail(template, false)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.sender.Send(ctx, to, subject, body); err != nil {
			n.logger.Error("failed to send notification",
				zap.String("template", template), zap.Error(err))
			n.metrics.RecordEmail(template, false)
			return
		}
		n.metrics.RecordEmail(template, true)
	}()
}
