package email

import "context"

// Email is one outgoing HTML message.
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
}

// TemplateData is passed to the html templates.
type TemplateData map[string]interface{}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
