package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"campool/internal/domain"
	"campool/internal/service"
)

func sampleMatch() *domain.RideMatch {
	return &domain.RideMatch{
		ID:         "m1",
		RequestIDs: []string{"r1", "r2"},
		Participants: []domain.Participant{
			{UserID: "u1", RequestID: "r1", Name: "Asha"},
			{UserID: "u2", RequestID: "r2", Name: "Badal"},
		},
		DepartureTime: time.Now().Add(time.Hour),
		CostPerPerson: 160,
		Status:        domain.MatchStatusPending,
		Confirmations: []string{"u1"},
		ChatRoomID:    "chat-1",
		CreatedAt:     time.Now(),
	}
}

func TestDispatcher_MatchFoundFansOutToAllParticipants(t *testing.T) {
	dispatcher := service.NewNotificationDispatcher(NewMockPusher())

	notifications := dispatcher.MatchFound(sampleMatch())
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	seen := map[string]bool{}
	for _, n := range notifications {
		seen[n.UserID] = true
		if n.Type != domain.NotificationMatchFound {
			t.Errorf("expected MATCH_FOUND, got %s", n.Type)
		}
		if n.Priority != domain.PriorityHigh {
			t.Errorf("expected HIGH priority, got %s", n.Priority)
		}
		if n.Data["match_id"] != "m1" {
			t.Errorf("expected the match id correlated, got %v", n.Data)
		}
	}
	if !seen["u1"] || !seen["u2"] {
		t.Errorf("expected both participants covered, got %v", seen)
	}
}

func TestDispatcher_ReminderTargetsOnlyGivenUsers(t *testing.T) {
	dispatcher := service.NewNotificationDispatcher(NewMockPusher())
	match := sampleMatch()

	notifications := dispatcher.ConfirmationReminder(match, match.UnconfirmedUserIDs())
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].UserID != "u2" {
		t.Errorf("expected the unconfirmed rider u2, got %s", notifications[0].UserID)
	}
	if notifications[0].Priority != domain.PriorityNormal {
		t.Errorf("expected NORMAL priority for reminders, got %s", notifications[0].Priority)
	}
}

func TestDispatcher_DeliverSwallowsPushFailures(t *testing.T) {
	pusher := NewMockPusher()
	pusher.SendError = errors.New("fcm unreachable")
	dispatcher := service.NewNotificationDispatcher(pusher)

	notifications := dispatcher.MatchFound(sampleMatch())

	// Deliver is best-effort: a dead push transport must not surface.
	dispatcher.Deliver(context.Background(), notifications)

	if len(pusher.Sends()) == 0 {
		t.Error("expected the push attempted")
	}
}
