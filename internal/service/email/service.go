// internal/service/email/service.go
package email

import (
	"context"
	"crypto/tls"
	"fmt"

	"adscreen-service/internal/metrics"
	"adscreen-service/internal/queue"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailSender handles outgoing emails via SMTP.
type EmailSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewEmailSender creates a new SMTP email sender. secure selects implicit
// TLS (port 465); otherwise STARTTLS is used when the server offers it.
func NewEmailSender(host string, port int, user, pass, from, fromName string, secure bool) *EmailSender {
	d := gomail.NewDialer(host, port, user, pass)
	d.SSL = secure
	d.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	if from == "" {
		from = user
	}
	return &EmailSender{dialer: d, from: from, fromName: fromName}
}

// Send sends an email with a subject and an HTML body.
func (e *EmailSender) Send(to, subject, bodyHTML string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.from, e.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", bodyHTML)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail failed: %w", err)
	}
	return nil
}

// SendJob renders a queued job and sends it. It satisfies queue.EmailHandler.
func (e *EmailSender) SendJob(_ context.Context, job queue.EmailJob) error {
	subject, body, err := Render(job)
	if err != nil {
		return err
	}
	if err := e.Send(job.To, subject, body); err != nil {
		metrics.EmailJobs.WithLabelValues("smtp", "error").Inc()
		return err
	}
	metrics.EmailJobs.WithLabelValues("smtp", "sent").Inc()
	return nil
}

// Sender is what AsyncSender needs; EmailSender implements it.
type Sender interface {
	SendJob(ctx context.Context, job queue.EmailJob) error
}

// AsyncSender sends jobs directly in a goroutine. It is used in place of the
// queue publisher when RabbitMQ is not configured.
type AsyncSender struct {
	sender Sender
	logger *zap.Logger
}

func NewAsyncSender(sender Sender, logger *zap.Logger) *AsyncSender {
	return &AsyncSender{sender: sender, logger: logger}
}

func (a *AsyncSender) PublishEmail(ctx context.Context, job queue.EmailJob) error {
	go func() {
		if err := a.sender.SendJob(context.WithoutCancel(ctx), job); err != nil {
			a.logger.Error("failed to send email",
				zap.Int64("user_id", job.UserID),
				zap.String("type", job.Type),
				zap.Error(err))
		}
	}()
	return nil
}
