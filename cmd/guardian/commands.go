package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/familyguardian/guardian/internal/core"
	"github.com/familyguardian/guardian/internal/guardian"
)

// checkCmd screens a message without recording anything
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [message]",
		Short: "Check a message for scam phrases without saving it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := newClassifier(cfg)
			if err != nil {
				return err
			}

			result := c.Classify(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if !result.IsSuspicious {
				fmt.Fprintln(out, "✅ Looks safe")
				return nil
			}
			fmt.Fprintf(out, "⚠️  Suspicious: %s\n", strings.Join(result.Keywords, ", "))
			return nil
		},
	}
}

// flagCmd submits an event the way the elderly user's device does
func flagCmd() *cobra.Command {
	var source, eventType string

	cmd := &cobra.Command{
		Use:   "flag [message]",
		Short: "Submit a message or emergency for screening",
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

			res, err := svc.HandleEvent(context.Background(), guardian.Event{
				Message: strings.Join(args, " "),
				Source:  source,
				Type:    core.AlertType(eventType),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Status != guardian.StatusAlertCreated {
				fmt.Fprintln(out, "✅ No alert needed")
				return nil
			}
			fmt.Fprintf(out, "🚨 Alert %s created (%s)\n", res.Alert.ID, res.AlertType)
			if len(res.KeywordsFound) > 0 {
				fmt.Fprintf(out, "   Keywords: %s\n", strings.Join(res.KeywordsFound, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "manual_check", "event source label")
	cmd.Flags().StringVar(&eventType, "type", string(core.AlertTypeMessage), "event type: message, call, emergency")

	return cmd
}

func alertsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List recent alerts, newest first",
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

			if limit <= 0 {
				limit = cfg.Alerts.ListLimit
			}
			alerts, err := svc.ListAlerts(context.Background(), limit)
			if err != nil {
				return err
			}

			printAlerts(cmd.OutOrStdout(), alerts)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max alerts (default from config)")

	return cmd
}

func printAlerts(w io.Writer, alerts []core.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts yet.")
		return
	}

	fmt.Fprintf(w, "🔔 Alerts (%d)\n\n", len(alerts))
	for _, a := range alerts {
		text := a.Message
		if text == "" {
			text = "(" + a.Source + ")"
		}
		fmt.Fprintf(w, "%s  [%s] %s\n", a.ID, a.Status, truncate(text, 60))
		fmt.Fprintf(w, "   %s | %s", a.Type, a.Timestamp.Local().Format("2006-01-02 15:04"))
		if len(a.Keywords) > 0 {
			fmt.Fprintf(w, " | %s", strings.Join(a.Keywords, ", "))
		}
		if a.ResolvedAction != "" {
			fmt.Fprintf(w, " | %s", a.ResolvedAction)
		}
		fmt.Fprintln(w)
	}
}

func actCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "act <alert-id> <approve|block>",
		Short:     "Approve or block an alert",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(core.ActionApprove), string(core.ActionBlock)},
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

			res, err := svc.HandleAction(context.Background(), core.AlertID(args[0]), core.Action(strings.ToLower(args[1])))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Alert %s: %s\n", args[0], res.Action)
			if res.BlockedPhone != "" {
				fmt.Fprintf(out, "   Blocked %s\n", res.BlockedPhone)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters",
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

			stats, err := svc.Stats(context.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "📊 Family Guardian")
			fmt.Fprintf(out, "   Pending alerts:   %d\n", stats.PendingAlerts)
			fmt.Fprintf(out, "   Emergency alerts: %d\n", stats.EmergencyAlerts)
			fmt.Fprintf(out, "   Safe contacts:    %d\n", stats.SafeContactsCount)
			return nil
		},
	}
}

func contactsCmd() *cobra.Command {
	var blocked bool

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List safe contacts, or blocked numbers with --blocked",
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

			ctx := context.Background()
			out := cmd.OutOrStdout()

			if blocked {
				contacts, err := svc.BlockedContacts(ctx)
				if err != nil {
					return err
				}
				if len(contacts) == 0 {
					fmt.Fprintln(out, "No blocked numbers.")
					return nil
				}
				for _, c := range contacts {
					fmt.Fprintf(out, "🚫 %-14s %s (%s)\n", c.Phone, c.Reason, c.BlockedAt.Local().Format("2006-01-02"))
				}
				return nil
			}

			contacts, err := svc.SafeContacts(ctx)
			if err != nil {
				return err
			}
			for _, c := range contacts {
				fmt.Fprintf(out, "%d. %-14s %s\n", c.ID, c.Name, c.Phone)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&blocked, "blocked", false, "list blocked numbers instead")

	return cmd
}

// truncate shortens s to max runes, adding an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
