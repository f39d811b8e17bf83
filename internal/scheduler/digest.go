package scheduler

import (
	"context"
	"time"

	"github.com/familyguardian/guardian/internal/guardian"
	"github.com/familyguardian/guardian/internal/logging"
)

// Task IDs registered by the guardian daemon
const (
	DigestTaskID     = "daily-digest"
	OpenAlertsTaskID = "open-alerts"
)

const digestTaskName = "Daily alert digest"

// StatsSource computes dashboard counters
type StatsSource interface {
	Stats(ctx context.Context) (*guardian.Stats, error)
}

// GaugePublisher receives the current open alert counts
type GaugePublisher interface {
	SetOpenAlerts(pending, emergency int)
}

// DigestPublisher receives digest results, typically metric gauges
type DigestPublisher interface {
	GaugePublisher
	DigestCompleted(at time.Time)
}

// DigestTask builds the task that summarizes open alerts on the given cron schedule.
// pub may be nil when metrics are disabled.
func DigestTask(spec string, src StatsSource, pub DigestPublisher) *Task {
	return &Task{
		ID:      DigestTaskID,
		Name:    digestTaskName,
		Spec:    spec,
		Timeout: time.Minute,
		Handler: digestHandler(src, pub),
	}
}

// DailyDigestTask is DigestTask at a fixed "HH:MM" time of day
func DailyDigestTask(at string, src StatsSource, pub DigestPublisher) (*Task, error) {
	task, err := DailyTask(DigestTaskID, digestTaskName, at, digestHandler(src, pub))
	if err != nil {
		return nil, err
	}
	task.Timeout = time.Minute
	return task, nil
}

func digestHandler(src StatsSource, pub DigestPublisher) TaskHandler {
	return func(ctx context.Context) error {
		stats, err := src.Stats(ctx)
		if err != nil {
			return err
		}

		logging.WithFields(map[string]interface{}{
			"pending":       stats.PendingAlerts,
			"emergency":     stats.EmergencyAlerts,
			"safe_contacts": stats.SafeContactsCount,
		}).Info("daily digest")

		if pub != nil {
			pub.SetOpenAlerts(stats.PendingAlerts, stats.EmergencyAlerts)
			pub.DigestCompleted(time.Now())
		}
		return nil
	}
}

// OpenAlertsTask refreshes the open alert gauges at a fixed interval.
// pub may be nil when metrics are disabled.
func OpenAlertsTask(every time.Duration, src StatsSource, pub GaugePublisher) *Task {
	task := IntervalTask(OpenAlertsTaskID, "Open alert gauges", every, func(ctx context.Context) error {
		stats, err := src.Stats(ctx)
		if err != nil {
			return err
		}
		if pub != nil {
			pub.SetOpenAlerts(stats.PendingAlerts, stats.EmergencyAlerts)
		}
		return nil
	})
	task.Timeout = every
	return task
}
