package domain

import "time"

// NotificationLevel is the severity of a toast notification.
type NotificationLevel string

const (
	NoticeInfo    NotificationLevel = "info"
	NoticeSuccess NotificationLevel = "success"
	NoticeError   NotificationLevel = "error"
)

// NotificationTTL is how long a notification stays visible before it expires.
const NotificationTTL = 5 * time.Second

// Notification is an ephemeral, process-local message for the user. It is
// never persisted and never replicated.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// Expired reports whether the notification has outlived its display window.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= NotificationTTL
}
