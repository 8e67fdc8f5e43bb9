package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	"github.com/noah-isme/residence-portal-api/pkg/jobs"
	"github.com/noah-isme/residence-portal-api/pkg/mail"
)

const notificationEmailJob = "notification_email"

type recipientLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

var notificationEmailTemplate = template.Must(template.New("notification").Parse(
	`<p>Hi {{.Name}},</p><p>{{.Message}}</p><p>Log in to the residence portal for details.</p>`))

// NotificationMailer emails notifications to their recipients through a background queue.
type NotificationMailer struct {
	users  recipientLookup
	sender mail.Sender
	queue  jobQueue
	logger *zap.Logger
}

// NewNotificationMailer builds the mailer. Attach a queue with SetQueue before dispatching.
func NewNotificationMailer(users recipientLookup, sender mail.Sender, logger *zap.Logger) *NotificationMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationMailer{users: users, sender: sender, logger: logger}
}

// SetQueue attaches the queue whose workers call Handle.
func (m *NotificationMailer) SetQueue(q jobQueue) {
	m.queue = q
}

// Dispatch enqueues n for email delivery without blocking.
func (m *NotificationMailer) Dispatch(n models.Notification) error {
	if m.queue == nil {
		return errors.New("notification mailer has no queue")
	}
	return m.queue.Enqueue(jobs.Job{ID: n.ID, Type: notificationEmailJob, Payload: n, Enqueued: time.Now()})
}

// Handle is the queue handler. Recipients without an email address are skipped.
func (m *NotificationMailer) Handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	user, err := m.users.Get(ctx, n.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			m.logger.Info("notification recipient missing, skipping email", zap.String("user_id", n.UserID))
			return nil
		}
		return err
	}
	if strings.TrimSpace(user.Email) == "" {
		return nil
	}

	var html strings.Builder
	data := struct{ Name, Message string }{Name: user.Name, Message: n.Message}
	if data.Name == "" {
		data.Name = "resident"
	}
	if err := notificationEmailTemplate.Execute(&html, data); err != nil {
		return fmt.Errorf("render notification email: %w", err)
	}

	err = m.sender.Send(ctx, mail.Message{
		ToName:    user.FullName(),
		ToAddress: user.Email,
		Subject:   n.Title,
		Text:      n.Message,
		HTML:      html.String(),
	})
	if errors.Is(err, mail.ErrDisabled) {
		return nil
	}
	return err
}

// GiveUp logs a notification email that exhausted its retries.
func (m *NotificationMailer) GiveUp(job jobs.Job, err error) {
	m.logger.Error("notification email dropped",
		zap.String("job_id", job.ID),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	)
}
