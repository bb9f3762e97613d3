package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
)

// Scheduler runs the daemon's cron jobs: auto-play ticks and periodic saves of the live game.
// Jobs go through the mediator like any client request, so they share the tick guard.
type Scheduler struct {
	Cron     *cron.Cron
	mediator common.Mediator
	logger   common.Logger
	ctx      context.Context
	months   int
}

// NewScheduler creates a new Scheduler
func NewScheduler(ctx context.Context, mediator common.Mediator, logger common.Logger) *Scheduler {
	if logger == nil {
		logger = common.LoggerFromContext(ctx)
	}
	return &Scheduler{
		Cron:     cron.New(),
		mediator: mediator,
		logger:   logger,
		ctx:      common.WithLogger(ctx, logger),
		months:   1,
	}
}

// RegisterAll registers the jobs of cfg. Empty expressions leave a job disabled.
func (s *Scheduler) RegisterAll(cfg config.ScheduleConfig) error {
	if cfg.AutoPlayMonths > 0 {
		s.months = cfg.AutoPlayMonths
	}
	if cfg.AutoPlay != "" {
		if _, err := s.Cron.AddFunc(cfg.AutoPlay, s.autoPlay); err != nil {
			return fmt.Errorf("register auto-play task: %w", err)
		}
	}
	if cfg.Autosave != "" {
		if _, err := s.Cron.AddFunc(cfg.Autosave, s.periodicSave); err != nil {
			return fmt.Errorf("register save task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Log("INFO", "Scheduler started", map[string]interface{}{"jobs": len(s.Cron.Entries())})
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Log("INFO", "Scheduler stopped", nil)
}

// RunAutoPlayNow runs the auto-play job immediately
func (s *Scheduler) RunAutoPlayNow() {
	s.autoPlay()
}

// RunSaveNow runs the save job immediately
func (s *Scheduler) RunSaveNow() {
	s.periodicSave()
}

func (s *Scheduler) autoPlay() {
	resp, err := s.mediator.Send(s.ctx, &gameCommands.AdvanceMonthsCommand{Months: s.months})
	if s.skipped("auto-play", err) {
		return
	}
	if err != nil {
		s.logger.Log("ERROR", "Auto-play failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if adv, ok := resp.(*gameCommands.AdvanceMonthsResponse); ok {
		s.logger.Log("INFO", "Auto-play advanced", map[string]interface{}{
			"months": adv.Report.Months,
			"month":  adv.Report.EndMonth.String(),
		})
	}
}

func (s *Scheduler) periodicSave() {
	resp, err := s.mediator.Send(s.ctx, &gameCommands.SaveGameCommand{})
	if s.skipped("save", err) {
		return
	}
	if err != nil {
		s.logger.Log("ERROR", "Scheduled save failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if saved, ok := resp.(*gameCommands.SaveGameResponse); ok {
		s.logger.Log("INFO", "Scheduled save written", map[string]interface{}{"name": saved.Name})
	}
}

// skipped reports runs that found nothing to do: no game yet, or a tick already running
func (s *Scheduler) skipped(job string, err error) bool {
	if errors.Is(err, game.ErrNoGame) || errors.Is(err, game.ErrTickInProgress) {
		s.logger.Log("DEBUG", "Scheduled job skipped", map[string]interface{}{"job": job, "reason": err.Error()})
		return true
	}
	return false
}
