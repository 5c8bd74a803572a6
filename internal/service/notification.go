package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campool/internal/domain"
)

// Pusher delivers a push message to a set of users. Delivery is best-effort;
// the transport (FCM/APNS registration, tokens) lives outside the engine.
type Pusher interface {
	Send(ctx context.Context, userIDs []string, title, body string, data map[string]string, priority domain.NotificationPriority) error
}

// LogPusher is a Pusher that only logs. Used in development and as the
// default when no push transport is configured.
type LogPusher struct{}

// Send logs the would-be push.
func (LogPusher) Send(_ context.Context, userIDs []string, title, body string, _ map[string]string, priority domain.NotificationPriority) error {
	log.Printf("[PUSH] recipients=%d priority=%s title=%q body=%q", len(userIDs), priority, title, body)
	return nil
}

// NotificationDispatcher translates lifecycle events into notification
// records and triggers best-effort delivery. Records are persisted by the
// caller inside the lifecycle transaction; Deliver runs after commit and
// never propagates failure back into the transition.
type NotificationDispatcher struct {
	pusher Pusher
}

// NewNotificationDispatcher creates a new NotificationDispatcher.
func NewNotificationDispatcher(pusher Pusher) *NotificationDispatcher {
	if pusher == nil {
		pusher = LogPusher{}
	}
	return &NotificationDispatcher{pusher: pusher}
}

// MatchFound builds one notification per participant for a newly formed match.
func (d *NotificationDispatcher) MatchFound(match *domain.RideMatch) []*domain.Notification {
	title := "Ride match found!"
	body := fmt.Sprintf("You've been matched with %d other rider(s). Estimated cost: %.0f per person. Confirm to lock your seat.",
		len(match.Participants)-1, match.CostPerPerson)
	return d.fanOut(match.ParticipantUserIDs(), domain.NotificationMatchFound, domain.PriorityHigh, title, body,
		map[string]string{"match_id": match.ID})
}

// MatchConfirmed builds one notification per participant once everyone confirmed.
func (d *NotificationDispatcher) MatchConfirmed(match *domain.RideMatch) []*domain.Notification {
	title := "Ride confirmed"
	body := fmt.Sprintf("All riders confirmed. Meet at %s before %s.",
		meetingLabel(match), match.DepartureTime.Format("15:04"))
	return d.fanOut(match.ParticipantUserIDs(), domain.NotificationMatchConfirmed, domain.PriorityHigh, title, body,
		map[string]string{"match_id": match.ID, "chat_room_id": match.ChatRoomID})
}

// MatchCancelled builds one notification per participant for a cancellation.
// The reason is surfaced verbatim, so sweep reasons like the confirmed/total
// ratio reach the rider.
func (d *NotificationDispatcher) MatchCancelled(match *domain.RideMatch, reason string) []*domain.Notification {
	title := "Ride cancelled"
	body := fmt.Sprintf("Your ride match was cancelled: %s. Your request is searching again.", reason)
	return d.fanOut(match.ParticipantUserIDs(), domain.NotificationMatchCancelled, domain.PriorityHigh, title, body,
		map[string]string{"match_id": match.ID, "reason": reason})
}

// ConfirmationReminder builds reminders for the participants who have not
// confirmed yet.
func (d *NotificationDispatcher) ConfirmationReminder(match *domain.RideMatch, userIDs []string) []*domain.Notification {
	title := "Confirm your ride"
	body := fmt.Sprintf("%d of %d riders have confirmed. Confirm now so the ride isn't cancelled.",
		len(match.Confirmations), len(match.Participants))
	return d.fanOut(userIDs, domain.NotificationConfirmationReminder, domain.PriorityNormal, title, body,
		map[string]string{"match_id": match.ID})
}

// RequestExpired builds the owner's notification for an expired request.
func (d *NotificationDispatcher) RequestExpired(req *domain.RideRequest) []*domain.Notification {
	title := "Ride request expired"
	body := "No match was found before your departure window closed. Post a new request to keep looking."
	return d.fanOut([]string{req.UserID}, domain.NotificationRequestExpired, domain.PriorityNormal, title, body,
		map[string]string{"request_id": req.ID})
}

// RideStarted builds one notification per participant when the ride begins.
func (d *NotificationDispatcher) RideStarted(match *domain.RideMatch) []*domain.Notification {
	return d.fanOut(match.ParticipantUserIDs(), domain.NotificationRideStarted, domain.PriorityNormal,
		"Ride started", "Your shared ride is underway.",
		map[string]string{"match_id": match.ID})
}

// RideCompleted builds one notification per participant when the ride ends.
func (d *NotificationDispatcher) RideCompleted(match *domain.RideMatch) []*domain.Notification {
	body := fmt.Sprintf("Ride complete. Your share: %.0f.", match.CostPerPerson)
	return d.fanOut(match.ParticipantUserIDs(), domain.NotificationRideCompleted, domain.PriorityNormal,
		"Ride completed", body,
		map[string]string{"match_id": match.ID})
}

// Deliver pushes the given notifications. Failures are logged and swallowed:
// the lifecycle transition that produced them has already committed.
func (d *NotificationDispatcher) Deliver(ctx context.Context, notifications []*domain.Notification) {
	for _, n := range notifications {
		if err := d.pusher.Send(ctx, []string{n.UserID}, n.Title, n.Body, n.Data, n.Priority); err != nil {
			log.Printf("[NOTIFICATION] delivery failed user=%s type=%s: %v", n.UserID, n.Type, err)
		}
	}
}

func (d *NotificationDispatcher) fanOut(
	userIDs []string,
	typ domain.NotificationType,
	priority domain.NotificationPriority,
	title, body string,
	data map[string]string,
) []*domain.Notification {
	now := time.Now()
	notifications := make([]*domain.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, &domain.Notification{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      typ,
			Priority:  priority,
			Title:     title,
			Body:      body,
			Data:      data,
			CreatedAt: now,
		})
	}
	return notifications
}

func meetingLabel(match *domain.RideMatch) string {
	if match.MeetingPoint.Address != "" {
		return match.MeetingPoint.Address
	}
	return fmt.Sprintf("(%.5f, %.5f)", match.MeetingPoint.Lat, match.MeetingPoint.Lng)
}
