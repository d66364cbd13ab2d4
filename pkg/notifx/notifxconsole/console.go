// Package notifxconsole is the development EmailSender: messages are
// written to the log instead of leaving the machine.
package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/notifx"
)

// ConsoleProvider writes email through logx.
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

// SendEmail logs the envelope at info and the bodies at debug, so normal
// runs show that an alert fired without dumping HTML into the log.
func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	log := logx.WithFields(logx.Fields{
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	})
	if msg.From != "" {
		log = log.WithField("from", msg.From)
	}
	log.Info("email delivered to the console")

	if msg.TextBody != "" {
		logx.Debugf("email text body:\n%s", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		logx.Debugf("email html body:\n%s", msg.HTMLBody)
	}
	return nil
}
