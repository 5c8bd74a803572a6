package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"campool/internal/domain"
	"campool/internal/service"
)

// newSweepFixture wires a SweepService over the same mocks as the
// lifecycle fixture.
func newSweepFixture() (*engineFixture, *service.SweepService) {
	f := newEngineFixture()
	dispatcher := service.NewNotificationDispatcher(f.pusher)
	sweeps := service.NewSweepService(
		f.txm, f.matchRepo, f.requestRepo, f.taskRepo, f.lifecycle, dispatcher,
		f.originIndex, service.DefaultSweepConfig())
	return f, sweeps
}

func TestTimeoutSweep_CancelsStalePendingMatches(t *testing.T) {
	ctx := context.Background()
	f, sweeps := newSweepFixture()
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	if _, err := f.lifecycle.Confirm(ctx, match.ID, "u1"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Age the match past the 30 minute confirmation deadline.
	stale := f.matchRepo.GetMatch(match.ID)
	stale.CreatedAt = time.Now().Add(-31 * time.Minute)
	f.matchRepo.AddMatch(stale)

	count, err := sweeps.RunTimeoutSweep(ctx)
	if err != nil {
		t.Fatalf("timeout sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 match cancelled, got %d", count)
	}

	cancelled := f.matchRepo.GetMatch(match.ID)
	if cancelled.Status != domain.MatchStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if !strings.Contains(cancelled.CancelReason, "1 of 2 confirmed") {
		t.Errorf("expected the confirmation ratio in the reason, got %q", cancelled.CancelReason)
	}

	// Both riders return to the pool and learn why.
	for _, id := range []string{"r1", "r2"} {
		if req := f.requestRepo.GetRequest(id); req.Status != domain.RequestStatusSearching {
			t.Errorf("expected %s SEARCHING, got %s", id, req.Status)
		}
	}
	if got := f.notifRepo.ByType(domain.NotificationMatchCancelled); len(got) != 2 {
		t.Errorf("expected 2 MATCH_CANCELLED notifications, got %d", len(got))
	}
}

func TestTimeoutSweep_LeavesFreshMatchesAlone(t *testing.T) {
	ctx := context.Background()
	f, sweeps := newSweepFixture()
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}

	count, err := sweeps.RunTimeoutSweep(ctx)
	if err != nil {
		t.Fatalf("timeout sweep failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected nothing swept, got %d", count)
	}
	if stored := f.matchRepo.GetMatch(match.ID); stored.Status != domain.MatchStatusPending {
		t.Errorf("expected match untouched, got %s", stored.Status)
	}
}

func TestExpirySweep_CancelsDepartedPendingMatches(t *testing.T) {
	ctx := context.Background()
	f, sweeps := newSweepFixture()
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}

	// Push the group's departure into the past.
	departed := f.matchRepo.GetMatch(match.ID)
	departed.DepartureTime = time.Now().Add(-10 * time.Minute)
	f.matchRepo.AddMatch(departed)

	count, err := sweeps.RunExpirySweep(ctx)
	if err != nil {
		t.Fatalf("expiry sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 match cancelled, got %d", count)
	}
	cancelled := f.matchRepo.GetMatch(match.ID)
	if cancelled.Status != domain.MatchStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if !strings.Contains(cancelled.CancelReason, "departure time passed") {
		t.Errorf("unexpected reason %q", cancelled.CancelReason)
	}
}

func TestRequestCleanup_CancelsExpiredSearchingRequests(t *testing.T) {
	ctx := context.Background()
	f, sweeps := newSweepFixture()

	// r1 expired twenty minutes ago; r2 is still live.
	f.seedRider("u1", "r1", time.Now().Add(-time.Hour))
	f.seedRider("u2", "r2", time.Now().Add(2*time.Hour))

	count, err := sweeps.RunRequestCleanup(ctx)
	if err != nil {
		t.Fatalf("request cleanup failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 request cancelled, got %d", count)
	}

	expired := f.requestRepo.GetRequest("r1")
	if expired.Status != domain.RequestStatusCancelled {
		t.Errorf("expected r1 CANCELLED, got %s", expired.Status)
	}
	if f.originIndex.Has("r1") {
		t.Error("expected r1 removed from the origin index")
	}
	if live := f.requestRepo.GetRequest("r2"); live.Status != domain.RequestStatusSearching {
		t.Errorf("expected r2 untouched, got %s", live.Status)
	}
	if got := f.notifRepo.ByType(domain.NotificationRequestExpired); len(got) != 1 {
		t.Errorf("expected 1 REQUEST_EXPIRED notification, got %d", len(got))
	}
}

func TestReminderSweep_NotifiesUnconfirmedRiders(t *testing.T) {
	ctx := context.Background()
	f, sweeps := newSweepFixture()
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	if _, err := f.lifecycle.Confirm(ctx, match.ID, "u1"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Make the reminder due.
	tasks := f.taskRepo.TasksForMatch(match.ID)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	tasks[0].FireAt = time.Now().Add(-time.Minute)
	f.taskRepo.AddTask(tasks[0])

	count, err := sweeps.RunReminderSweep(ctx)
	if err != nil {
		t.Fatalf("reminder sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reminder fired, got %d", count)
	}

	// Only the rider who has not confirmed is nudged.
	reminders := f.notifRepo.ByType(domain.NotificationConfirmationReminder)
	if len(reminders) != 1 {
		t.Fatalf("expected 1 reminder notification, got %d", len(reminders))
	}
	if reminders[0].UserID != "u2" {
		t.Errorf("expected the reminder for u2, got %s", reminders[0].UserID)
	}
	for _, task := range f.taskRepo.TasksForMatch(match.ID) {
		if !task.Done {
			t.Errorf("expected task %s marked done", task.ID)
		}
	}
}

func TestReminderSweep_RetiresTasksForDeadMatches(t *testing.T) {
	ctx := context.Background()
	f, sweeps := newSweepFixture()
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	if err := f.lifecycle.CancelMatch(ctx, match.ID, "plans changed", false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// The cancellation already retired the task; re-arm it to simulate a
	// reminder persisted before a crash.
	orphan := &domain.ScheduledTask{
		ID:        "task-orphan",
		MatchID:   match.ID,
		Kind:      domain.TaskConfirmationReminder,
		FireAt:    time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-10 * time.Minute),
	}
	f.taskRepo.AddTask(orphan)

	count, err := sweeps.RunReminderSweep(ctx)
	if err != nil {
		t.Fatalf("reminder sweep failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no reminder fired for a cancelled match, got %d", count)
	}
	if got := f.notifRepo.ByType(domain.NotificationConfirmationReminder); len(got) != 0 {
		t.Errorf("expected no reminder notifications, got %d", len(got))
	}

	// The task is retired silently, never re-examined.
	found := false
	for _, task := range f.taskRepo.TasksForMatch(match.ID) {
		if task.ID == "task-orphan" {
			found = true
			if !task.Done {
				t.Error("expected the orphan task retired")
			}
		}
	}
	if !found {
		t.Fatal("expected the orphan task present")
	}
}
