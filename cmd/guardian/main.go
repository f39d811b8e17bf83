// Family Guardian - screens messages for scams and relays alerts to family.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/familyguardian/guardian/internal/classifier"
	"github.com/familyguardian/guardian/internal/config"
	"github.com/familyguardian/guardian/internal/guardian"
	"github.com/familyguardian/guardian/internal/logging"
	"github.com/familyguardian/guardian/internal/storage"
)

var (
	// Flags
	configPath string
	dataDir    string

	// Version
	version = "0.1.0"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guardian",
		Short: "Family Guardian - scam alerts for the people you care about",
		Long: `Family Guardian screens messages an elderly relative receives for
common scam phrases and records suspicious ones, along with emergency
button presses, for family members to review.

Family members approve or block each alert. Blocking records the
phone number found in the alert on the blocked list.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <data-dir>/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.guardian)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(flagCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(actCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(contactsCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// loadConfig resolves the config file and applies the --data-dir flag,
// which wins over both the file and the environment
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" && dataDir != "" {
		path = filepath.Join(dataDir, config.FileName)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(level)
	logging.SetJSON(cfg.Log.JSON)
	logging.SetOutput(os.Stderr)

	return cfg, nil
}

// newClassifier builds the classifier from the configured phrase file
func newClassifier(cfg *config.Config) (*classifier.Classifier, error) {
	if cfg.Classifier.PhrasesFile == "" {
		return classifier.New(nil), nil
	}
	phrases, err := classifier.LoadPhrases(cfg.Classifier.PhrasesFile)
	if err != nil {
		return nil, err
	}
	return classifier.New(phrases), nil
}

// openService wires stores and the coordinator; callers must close stores
func openService(cfg *config.Config, opts ...guardian.Option) (*guardian.Service, *storage.Stores, error) {
	c, err := newClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}

	stores, err := storage.OpenStores(storage.Backend(cfg.Storage.Backend), cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return guardian.NewService(c, stores.Alerts, stores.Contacts, opts...), stores, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "guardian %s\n", version)
		},
	}
}
