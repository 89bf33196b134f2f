package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Template names, used for metrics labels and template lookup.
const (
	TemplateTicketCreated  = "ticket_created"
	TemplateAgentReply     = "agent_reply"
	TemplateTicketResolved = "ticket_resolved"
	TemplateTicketClosed   = "ticket_closed"
	TemplateStaleReminder  = "stale_reminder"
)

// TicketMailData feeds the creator-facing templates.
type TicketMailData struct {
	TicketID    string
	Title       string
	Priority    string
	CreatorName string
}

// ReplyMailData feeds the agent-reply template.
type ReplyMailData struct {
	TicketID    string
	Title       string
	CreatorName string
	AgentName   string
	Message     string
}

// ReminderMailData feeds the stale-reminder template.
type ReminderMailData struct {
	TicketID    string
	Title       string
	CreatorName string
	CreatedAt   time.Time
	Link        string
}

var templates = template.Must(template.New("mail").Parse(`
{{define "ticket_created"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Ticket Received</h2>
  <p>Hello <strong>{{.CreatorName}}</strong>,</p>
  <p>We have received your support request.</p>
  <ul>
    <li><strong>Ticket:</strong> #{{.TicketID}}</li>
    <li><strong>Subject:</strong> {{.Title}}</li>
    <li><strong>Priority:</strong> {{.Priority}}</li>
  </ul>
  <p>An agent will review your case soon.</p>
</div>
{{end}}

{{define "agent_reply"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New Reply</h2>
  <p>Hello <strong>{{.CreatorName}}</strong>,</p>
  <p>Agent <strong>{{.AgentName}}</strong> replied to your ticket <strong>{{.Title}}</strong>:</p>
  <blockquote>{{.Message}}</blockquote>
  <p>You can answer from your user panel.</p>
</div>
{{end}}

{{define "ticket_resolved"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Ticket Resolved</h2>
  <p>Hello <strong>{{.CreatorName}}</strong>,</p>
  <p>Your ticket <strong>"{{.Title}}"</strong> has been marked as resolved.</p>
  <p>If the problem persists you can reply on the ticket to reopen the conversation.</p>
</div>
{{end}}

{{define "ticket_closed"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Ticket Closed</h2>
  <p>Hello <strong>{{.CreatorName}}</strong>,</p>
  <p>Your ticket <strong>"{{.Title}}"</strong> has been closed.</p>
  <p>We hope your issue was resolved satisfactorily.</p>
</div>
{{end}}

{{define "stale_reminder"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Unattended Ticket Reminder</h2>
  <p>The following ticket has been <strong>open for more than the reminder threshold</strong> and needs attention.</p>
  <ul>
    <li><strong>Subject:</strong> {{.Title}}</li>
    <li><strong>Client:</strong> {{.CreatorName}}</li>
    <li><strong>Created:</strong> {{.CreatedAt.Format "2006-01-02 15:04"}}</li>
  </ul>
  <p><a href="{{.Link}}">Go to ticket</a></p>
</div>
{{end}}
`))

// Render executes the named template against data.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
