package cron

import (
	"context"

	"github.com/Aldiyar2201/Visitor_Manager/internal/jobs"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartEscalationCronJobs schedules the recurring background work: the
// escalation sweep and expired-notification cleanup.
func StartEscalationCronJobs(worker *jobs.EscalationWorker, notificationService *services.NotificationService) *cron.Cron {
	c := cron.New()

	// Escalation sweep
	c.AddFunc("@every 1m", func() {
		if err := worker.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Escalation sweep failed")
		}
	})

	// Expired notification cleanup
	c.AddFunc("0 3 * * *", func() {
		if err := notificationService.CleanupExpired(context.Background()); err != nil {
			logrus.WithError(err).Error("Notification cleanup failed")
		}
	})

	c.Start()
	return c
}
