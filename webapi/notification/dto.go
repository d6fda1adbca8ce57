package notification

//revive:disable

// SendRequest represents the request body for queuing a notification.
// Recipient falls back to UserID when empty.
type SendRequest struct {
	UserID    string `json:"userId" validate:"omitempty,max=128"`
	Recipient string `json:"recipient" validate:"omitempty,max=255"`
	Channel   string `json:"channel" validate:"required,oneof=EMAIL SMS PUSH email sms push"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// QueuedResponse is returned once a notification is accepted for delivery.
type QueuedResponse struct {
	Status         string `json:"status"`
	NotificationID string `json:"notificationId"`
}
