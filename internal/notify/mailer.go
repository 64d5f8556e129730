// Package notify implements the best-effort notification fan-out that runs
// after a post is published: one batched mail to the publisher's
// subscribers plus one social post. Both collaborators sit behind
// interfaces and are injected at construction time; there are no package
// globals and no hidden singletons.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// MailSender delivers a message to a list of recipients. Implementations
// must never panic into the caller; errors are returned for logging only
// and a failed send is lost by design.
type MailSender interface {
	Send(ctx context.Context, subject, body string, to []string) error
}

// SMTPSender sends mail through a plain SMTP relay. All fields are set
// from configuration at startup.
type SMTPSender struct {
	Addr string // host:port of the relay
	From string // envelope sender address
}

// Send delivers one message with the whole recipient list on a single
// envelope. net/smtp has no context support, so cancellation only guards
// the time before the dial starts; the dispatcher bounds the rest with its
// own timeout budget.
func (s *SMTPSender) Send(ctx context.Context, subject, body string, to []string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, strings.Join(to, ", "), subject, body)
	return smtp.SendMail(s.Addr, nil, s.From, to, []byte(msg))
}

// LogSender is the development fallback used when no SMTP relay is
// configured: it records the send instead of delivering it.
type LogSender struct{}

func (LogSender) Send(_ context.Context, subject, _ string, to []string) error {
	log.Printf("mail: [simulated] subject=%q recipients=%d", subject, len(to))
	return nil
}
