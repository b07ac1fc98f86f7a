package services

import (
	"time"

	"pdf-rag-chatbot/internal/logger"

	"github.com/go-co-op/gocron"
)

// Sweeper is implemented by session stores that expire idle entries themselves.
type Sweeper interface {
	Sweep() int
}

// CronService runs periodic housekeeping jobs.
type CronService struct {
	scheduler *gocron.Scheduler
}

func NewCronService() *CronService {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &CronService{scheduler: s}
}

// ScheduleSessionSweep evicts idle sessions from store every interval.
func (c *CronService) ScheduleSessionSweep(store Sweeper, interval time.Duration) error {
	_, err := c.scheduler.Every(interval).Tag("session-sweep").Do(func() {
		if removed := store.Sweep(); removed > 0 {
			logger.Info("Expired idle sessions", "removed", removed)
		}
	})
	return err
}

func (c *CronService) Start() {
	logger.Info("Starting session cron service", "jobs", len(c.scheduler.Jobs()))
	c.scheduler.StartAsync()
}

func (c *CronService) Stop() {
	c.scheduler.Stop()
	logger.Info("Stopped session cron service")
}
