package worker

import (
	"context"
	"log/slog"
	"os"
	"time"

	"tutoring-backend/internal/repository"
	"tutoring-backend/internal/service"
)

// Scheduler drives the time-based parts of the session lifecycle: recurring
// schedule expansion, status sweeps and slot expiry.
type Scheduler struct {
	sessionService service.SessionService
	slotRepo       repository.SlotRepository
	interval       time.Duration
	lookAhead      time.Duration
}

func NewScheduler(sessionService service.SessionService, slotRepo repository.SlotRepository) *Scheduler {
	interval := time.Minute
	if raw := os.Getenv("WORKER_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	lookAhead := 28 * 24 * time.Hour
	if raw := os.Getenv("SCHEDULE_LOOKAHEAD"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			lookAhead = parsed
		}
	}

	return &Scheduler{
		sessionService: sessionService,
		slotRepo:       slotRepo,
		interval:       interval,
		lookAhead:      lookAhead,
	}
}

// Run ticks until the context is cancelled. Each tick is independent; a
// failed pass logs and waits for the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Scheduler started", "interval", s.interval.String(), "look_ahead", s.lookAhead.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()

	if err := s.sessionService.SweepStatuses(ctx, now); err != nil {
		slog.Error("Session status sweep failed", "error", err.Error())
	}

	created, err := s.sessionService.ExpandSchedules(ctx, now, s.lookAhead)
	if err != nil {
		slog.Error("Schedule expansion failed", "error", err.Error())
	} else if created > 0 {
		slog.Info("Materialized recurring sessions", "count", created)
	}

	expired, err := s.slotRepo.ExpirePast(ctx, now)
	if err != nil {
		slog.Error("Slot expiry failed", "error", err.Error())
	} else if expired > 0 {
		slog.Info("Expired past time slots", "count", expired)
	}
}
