// Package queue carries email jobs between the API and the mailer over RabbitMQ.
package queue

import "time"

// EmailQueueName is the durable queue consumed by cmd/mailer.
const EmailQueueName = "email.jobs"

// EmailJob is one email to send. Bodies are rendered by the mailer so the
// API only ships the bilingual text.
type EmailJob struct {
	To          string    `json:"to"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	SubjectAr   string    `json:"subject_ar"`
	SubjectEn   string    `json:"subject_en"`
	MessageAr   string    `json:"message_ar"`
	MessageEn   string    `json:"message_en"`
	RequestedAt time.Time `json:"requested_at"`
}
