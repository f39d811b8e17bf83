package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/familyguardian/guardian/internal/config"
	"github.com/familyguardian/guardian/internal/scheduler"
)

// newScheduler registers the daemon's background tasks. The digest stays
// registered when disabled so it can still be run on demand.
func newScheduler(cfg *config.Config, src scheduler.StatsSource, pub scheduler.DigestPublisher) (*scheduler.Scheduler, error) {
	sched, err := scheduler.NewScheduler(scheduler.Config{Timezone: cfg.Digest.Timezone})
	if err != nil {
		return nil, err
	}

	digest := scheduler.DigestTask(cfg.Digest.Schedule, src, pub)
	if cfg.Digest.At != "" {
		if digest, err = scheduler.DailyDigestTask(cfg.Digest.At, src, pub); err != nil {
			return nil, fmt.Errorf("digest.at: %w", err)
		}
	}
	if err := sched.Register(digest); err != nil {
		return nil, err
	}
	if !cfg.Digest.Enabled {
		if err := sched.Disable(scheduler.DigestTaskID); err != nil {
			return nil, err
		}
	}

	every, err := cfg.GaugeRefreshInterval()
	if err != nil {
		return nil, err
	}
	if err := sched.Register(scheduler.OpenAlertsTask(every, src, pub)); err != nil {
		return nil, err
	}

	return sched, nil
}

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List background tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, stores, err := openService(cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			sched, err := newScheduler(cfg, svc, nil)
			if err != nil {
				return err
			}

			stats := sched.GetStats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "⏰ Tasks (%d enabled of %d, %s)\n\n", stats.EnabledTasks, stats.TotalTasks, stats.Timezone)
			for _, t := range sched.ListTasks() {
				state := "enabled"
				if !t.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "%-14s %-8s %-16s %s\n", t.ID, state, t.Spec, t.Name)
				if t.NextRun != nil {
					fmt.Fprintf(out, "   next run %s\n", t.NextRun.Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}
	cmd.AddCommand(taskRunCmd())

	return cmd
}

func taskRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <task-id>",
		Short: "Run a background task once, now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, stores, err := openService(cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			sched, err := newScheduler(cfg, svc, nil)
			if err != nil {
				return err
			}

			if err := sched.RunNow(context.Background(), args[0]); err != nil {
				return err
			}

			task, _ := sched.GetTask(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s ran (%s)\n", task.ID, task.Name)
			return nil
		},
	}
}
