// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

// ErrDisabled is returned by the sender built when no SMTP host is configured.
var ErrDisabled = errors.New("mailer: smtp delivery is not configured")

// Message is a single HTML email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP settings. An empty Host disables delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New returns an SMTP sender, or a sender that always fails with ErrDisabled
// when cfg.Host is empty.
func New(cfg Config) Sender {
	if cfg.Host == "" {
		return disabledSender{}
	}
	return &smtpSender{cfg: cfg}
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, Message) error { return ErrDisabled }

type smtpSender struct {
	cfg Config
}

func (s *smtpSender) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTMLBody)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// ResetPasswordSubject is the subject line of the reset email.
const ResetPasswordSubject = "ExpenseNova Password Reset"

var resetTemplate = template.Must(template.New("reset").Parse(`<h1>Password Reset</h1>
<p>Click this link to reset your password:</p>
<a href="{{.}}" clicktracking=off>{{.}}</a>
`))

// ResetPasswordMessage renders the password reset email for to.
func ResetPasswordMessage(to, link string) (Message, error) {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, link); err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	return Message{To: to, Subject: ResetPasswordSubject, HTMLBody: body.String()}, nil
}
