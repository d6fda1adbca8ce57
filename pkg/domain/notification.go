package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationStatus tracks a notification through delivery.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSuccess NotificationStatus = "SUCCESS"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification is a best-effort message delivered off the funds path.
type Notification struct {
	ID        uuid.UUID
	Recipient string
	Channel   string
	Message   string
	Status    NotificationStatus
	Retries   int
	Error     string
	CreatedAt time.Time
	SentAt    *time.Time
}

// NewNotification returns a PENDING notification. Channel and message are
// required.
func NewNotification(recipient, channel, message string, now time.Time) (*Notification, error) {
	if strings.TrimSpace(channel) == "" || strings.TrimSpace(message) == "" {
		return nil, ErrNotificationInvalid
	}
	return &Notification{
		ID:        uuid.New(),
		Recipient: recipient,
		Channel:   strings.ToUpper(channel),
		Message:   message,
		Status:    NotificationPending,
		CreatedAt: now,
	}, nil
}

// MarkSent moves the notification to SUCCESS.
func (n *Notification) MarkSent(at time.Time) {
	n.Status = NotificationSuccess
	n.SentAt = &at
	n.Error = ""
}

// MarkFailed moves the notification to FAILED with reason.
func (n *Notification) MarkFailed(reason string) {
	n.Status = NotificationFailed
	n.Error = clip(reason, MaxReasonLength)
}
