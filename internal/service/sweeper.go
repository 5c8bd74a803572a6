package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campool/internal/domain"
	internalRedis "campool/internal/redis"
	"campool/internal/repository"
)

// SweepConfig holds the deadlines and cadences for maintenance sweeps.
type SweepConfig struct {
	ConfirmDeadline  time.Duration // pending matches older than this are timed out
	ExpiryInterval   time.Duration
	TimeoutInterval  time.Duration
	CleanupInterval  time.Duration
	ReminderInterval time.Duration
	BatchSize        int
}

// DefaultSweepConfig returns the production sweep parameters.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		ConfirmDeadline:  30 * time.Minute,
		ExpiryInterval:   time.Minute,
		TimeoutInterval:  time.Minute,
		CleanupInterval:  5 * time.Minute,
		ReminderInterval: 30 * time.Second,
		BatchSize:        100,
	}
}

// SweepService runs the periodic maintenance passes. Every sweep routes its
// transitions through the lifecycle service or a conditional update, so it
// is idempotent and safe to run concurrently with user actions: a record
// that already moved on simply no longer qualifies.
type SweepService struct {
	txm         repository.TxManager
	matchRepo   repository.MatchRepository
	requestRepo repository.RequestRepository
	taskRepo    repository.TaskRepository
	lifecycle   *LifecycleService
	dispatcher  *NotificationDispatcher
	originIndex internalRedis.OriginIndexInterface // optional
	cfg         SweepConfig
}

// NewSweepService creates a new SweepService.
func NewSweepService(
	txm repository.TxManager,
	matchRepo repository.MatchRepository,
	requestRepo repository.RequestRepository,
	taskRepo repository.TaskRepository,
	lifecycle *LifecycleService,
	dispatcher *NotificationDispatcher,
	originIndex internalRedis.OriginIndexInterface,
	cfg SweepConfig,
) *SweepService {
	return &SweepService{
		txm:         txm,
		matchRepo:   matchRepo,
		requestRepo: requestRepo,
		taskRepo:    taskRepo,
		lifecycle:   lifecycle,
		dispatcher:  dispatcher,
		originIndex: originIndex,
		cfg:         cfg,
	}
}

// RunExpirySweep cancels pending matches whose departure time has passed.
// Returns the number of matches cancelled.
func (s *SweepService) RunExpirySweep(ctx context.Context) (int, error) {
	matches, err := s.matchRepo.ListPendingDepartedBefore(ctx, time.Now(), s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, match := range matches {
		if err := s.lifecycle.CancelMatch(ctx, match.ID, "departure time passed", true); err != nil {
			// A racing confirm/cancel already moved the match on.
			if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrConflict) {
				continue
			}
			log.Printf("[SWEEP] expiry: cancel of match %s failed: %v", match.ID, err)
			continue
		}
		count++
	}
	return count, nil
}

// RunTimeoutSweep cancels pending matches whose confirmation deadline has
// passed without full confirmation. The cancellation reason carries the
// confirmed/total ratio so riders see what went wrong.
func (s *SweepService) RunTimeoutSweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cfg.ConfirmDeadline)
	matches, err := s.matchRepo.ListPendingCreatedBefore(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, match := range matches {
		reason := fmt.Sprintf("confirmation timeout (%d of %d confirmed)",
			len(match.Confirmations), len(match.Participants))
		if err := s.lifecycle.CancelMatch(ctx, match.ID, reason, true); err != nil {
			if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrConflict) {
				continue
			}
			log.Printf("[SWEEP] timeout: cancel of match %s failed: %v", match.ID, err)
			continue
		}
		count++
	}
	return count, nil
}

// RunRequestCleanup cancels searching requests past their expiry. There is
// no match to unwind; the request transitions directly to CANCELLED.
func (s *SweepService) RunRequestCleanup(ctx context.Context) (int, error) {
	requests, err := s.requestRepo.ListSearchingExpiredBefore(ctx, time.Now(), s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, req := range requests {
		notifications := s.dispatcher.RequestExpired(req)

		err := s.txm.WithinTx(ctx, func(uow *repository.UnitOfWork) error {
			cancelled, err := uow.Requests.Cancel(ctx, req.ID, domain.RequestStatusSearching, "request expired", time.Now())
			if err != nil {
				return err
			}
			if !cancelled {
				// Claimed by a match between the list and this write.
				return ErrRequestNotSearching
			}
			for _, n := range notifications {
				if err := uow.Notifications.Create(ctx, n); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			log.Printf("[SWEEP] cleanup: request %s failed: %v", req.ID, err)
			continue
		}

		if s.originIndex != nil {
			_ = s.originIndex.Remove(ctx, req.ID)
		}
		s.dispatcher.Deliver(ctx, notifications)
		count++
	}
	return count, nil
}

// RunReminderSweep fires due confirmation reminders. Match state is
// re-checked at fire time, never trusted from schedule time, so a reminder
// for a match that confirmed or cancelled in the meantime is retired silently.
func (s *SweepService) RunReminderSweep(ctx context.Context) (int, error) {
	tasks, err := s.taskRepo.ListDue(ctx, time.Now(), s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, task := range tasks {
		match, err := s.matchRepo.GetByID(ctx, task.MatchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				_ = s.taskRepo.MarkDone(ctx, task.ID)
				continue
			}
			log.Printf("[SWEEP] reminder: load of match %s failed: %v", task.MatchID, err)
			continue
		}

		if match.Status != domain.MatchStatusPending || match.AllConfirmed() {
			_ = s.taskRepo.MarkDone(ctx, task.ID)
			continue
		}

		pending := match.UnconfirmedUserIDs()
		notifications := s.dispatcher.ConfirmationReminder(match, pending)

		err = s.txm.WithinTx(ctx, func(uow *repository.UnitOfWork) error {
			for _, n := range notifications {
				if err := uow.Notifications.Create(ctx, n); err != nil {
					return err
				}
			}
			return uow.Tasks.MarkDone(ctx, task.ID)
		})
		if err != nil {
			log.Printf("[SWEEP] reminder: task %s failed: %v", task.ID, err)
			continue
		}

		s.dispatcher.Deliver(ctx, notifications)
		count++
	}
	return count, nil
}

// Start launches the sweep loops. They stop when ctx is cancelled. Each
// sweep runs on its own timer so a slow pass in one never delays the others.
func (s *SweepService) Start(ctx context.Context) {
	go s.loop(ctx, "expiry", s.cfg.ExpiryInterval, s.RunExpirySweep)
	go s.loop(ctx, "timeout", s.cfg.TimeoutInterval, s.RunTimeoutSweep)
	go s.loop(ctx, "cleanup", s.cfg.CleanupInterval, s.RunRequestCleanup)
	go s.loop(ctx, "reminder", s.cfg.ReminderInterval, s.RunReminderSweep)
}

func (s *SweepService) loop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, interval)
			count, err := sweep(runCtx)
			cancel()
			if err != nil {
				log.Printf("[SWEEP] %s failed: %v", name, err)
			} else if count > 0 {
				log.Printf("[SWEEP] %s affected %d record(s)", name, count)
			}
		}
	}
}
