package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("mail: delivery disabled")

// Message is a single plain-text email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
	HTML      string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender posts messages to the SendGrid v3 API.
type SendGridSender struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
}

// Option customises a SendGridSender.
type Option func(*SendGridSender)

// WithHost points the sender at an alternative API host.
func WithHost(host string) Option {
	return func(s *SendGridSender) {
		if host != "" {
			s.host = host
		}
	}
}

func NewSendGridSender(key, fromName, fromEmail string, opts ...Option) *SendGridSender {
	s := &SendGridSender{
		key:        key,
		host:       defaultHost,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers msg. Responses with status >= 400 are errors so the caller may retry.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.key == "" {
		return ErrDisabled
	}
	if msg.ToAddress == "" {
		return fmt.Errorf("mail: recipient address required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, endpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail: sendgrid responded %d", res.StatusCode)
	}
	return nil
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}
