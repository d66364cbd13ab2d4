// Package notifx sends transactional email to the game master. It wraps a
// pluggable provider (SES in production, console in development) behind a
// client that validates messages and renders named HTML templates.
package notifx

import "context"

// EmailSender is the provider contract.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Client validates and dispatches email through the configured provider.
type Client struct {
	provider  EmailSender
	templates *TemplateRegistry
}

// NewClient creates a notification client on top of a provider.
func NewClient(provider EmailSender) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail sends one email. Messages without a recipient or subject are
// rejected before reaching the provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	return c.provider.SendEmail(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later sends.
func (c *Client) RegisterTemplate(name, tmpl string) error {
	return c.templates.Register(name, tmpl)
}

// SendTemplatedEmail renders the named template with data into the HTML
// body and sends the message.
func (c *Client) SendTemplatedEmail(ctx context.Context, template string, data interface{}, msg EmailMessage) error {
	body, err := c.templates.Render(template, data)
	if err != nil {
		return err
	}

	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
