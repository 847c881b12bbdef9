// Package mailer sends transactional email (newsletter confirmations, broadcasts).
package mailer

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/logger"
)

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	To      []Address
	Subject string
	Text    string
	HTML    string
}

// Result is what the transport reports back about a send.
type Result struct {
	StatusCode int
	MessageID  string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// LogMailer writes messages to the log instead of sending them. Used when no
// provider is configured.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log.With("client", "LogMailer")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) (*Result, error) {
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.Email)
	}
	m.log.Info("📧 Email not sent (no provider configured)", "to", to, "subject", msg.Subject, "text", msg.Text)
	return &Result{StatusCode: 202}, nil
}
