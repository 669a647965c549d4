package jobs

import (
	"context"
	"log"
	"time"

	"todo-tracker-api/internal/auth"
	"todo-tracker-api/internal/config"
	"todo-tracker-api/internal/notify"
	"todo-tracker-api/internal/resolver"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Runner owns the background schedule: the daily due-date digest at local
// midnight and the hourly purge of expired sessions and stale login
// attempts.
type Runner struct {
	scheduler *gocron.Scheduler
	db        *gorm.DB
	resolver  *resolver.Resolver
	notifier  notify.Dispatcher
	cfg       config.Config
}

func NewRunner(db *gorm.DB, r *resolver.Resolver, n notify.Dispatcher, cfg config.Config) *Runner {
	s := gocron.NewScheduler(cfg.Timezone)
	s.SingletonModeAll()
	return &Runner{scheduler: s, db: db, resolver: r, notifier: n, cfg: cfg}
}

// Start registers the jobs and launches the scheduler in the background.
func (r *Runner) Start() error {
	if _, err := r.scheduler.Every(1).Day().At("00:00").Do(r.dueDigest); err != nil {
		return err
	}
	if _, err := r.scheduler.Every(1).Hour().Do(r.purge); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	log.Println("Background jobs started")
	return nil
}

func (r *Runner) Stop() {
	r.scheduler.Stop()
}

// dueDigest announces every non-completed task due today.
func (r *Runner) dueDigest() {
	now := time.Now().In(r.cfg.Timezone)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.cfg.Timezone)
	end := start.AddDate(0, 0, 1)

	tasks, err := r.resolver.DueBetween(start, end)
	if err != nil {
		log.Println("due digest query failed:", err)
		return
	}
	if len(tasks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r.notifier.DueToday(ctx, tasks)
}

func (r *Runner) purge() {
	if err := auth.PurgeExpired(r.db, r.cfg.AttemptRetention); err != nil {
		log.Println("session purge failed:", err)
	}
}
