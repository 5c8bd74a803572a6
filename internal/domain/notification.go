package domain

import "time"

// NotificationType enumerates the lifecycle events that produce notifications.
type NotificationType string

const (
	NotificationMatchFound           NotificationType = "MATCH_FOUND"
	NotificationMatchConfirmed       NotificationType = "MATCH_CONFIRMED"
	NotificationMatchCancelled       NotificationType = "MATCH_CANCELLED"
	NotificationConfirmationReminder NotificationType = "CONFIRMATION_REMINDER"
	NotificationRequestExpired       NotificationType = "REQUEST_EXPIRED"
	NotificationRideStarted          NotificationType = "RIDE_STARTED"
	NotificationRideCompleted        NotificationType = "RIDE_COMPLETED"
)

// NotificationPriority controls delivery urgency at the push transport.
type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
)

// Notification is created exclusively as a side effect of a lifecycle
// transition. Only the IsRead flag mutates after creation.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Priority  NotificationPriority
	Title     string
	Body      string
	Data      map[string]string // correlated ids: match_id, request_id, ...
	IsRead    bool
	CreatedAt time.Time
}
