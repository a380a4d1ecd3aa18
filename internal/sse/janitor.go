package sse

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes hubs that no client is watching
type Janitor struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewJanitor schedules CleanupEmptyHubs on the given cron spec, e.g. "@every 5m"
func NewJanitor(manager *HubManager, schedule string, logger *slog.Logger) (*Janitor, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, manager.CleanupEmptyHubs); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return &Janitor{
		cron:   c,
		logger: logger.With(slog.String("component", "sse-janitor")),
	}, nil
}

// Start begins running the schedule in the background
func (j *Janitor) Start() {
	j.cron.Start()
	j.logger.Info("sse janitor started")
}

// Stop halts the schedule and waits for a running cleanup to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("sse janitor stopped")
}
