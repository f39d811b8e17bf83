package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/familyguardian/guardian/internal/api"
	"github.com/familyguardian/guardian/internal/guardian"
	"github.com/familyguardian/guardian/internal/logging"
	"github.com/familyguardian/guardian/internal/metrics"
)

func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			m := metrics.New()
			svc, stores, err := openService(cfg, guardian.WithRecorder(m))
			if err != nil {
				return err
			}
			defer stores.Close()

			logging.WithFields(map[string]interface{}{
				"data_dir": cfg.DataDir,
				"backend":  cfg.Storage.Backend,
			}).Info("storage ready")

			sched, err := newScheduler(cfg, svc, m)
			if err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}

			server := api.New(api.Config{
				Addr:           cfg.Addr(),
				Service:        svc,
				Metrics:        m,
				ListLimit:      cfg.Alerts.ListLimit,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			})

			// Handle shutdown
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
				<-sigCh

				logging.Info("shutting down")
				sched.Stop()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(ctx); err != nil {
					logging.WithError(err).Warn("server shutdown")
				}
			}()

			// Start server (blocks)
			return server.Start()
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}
