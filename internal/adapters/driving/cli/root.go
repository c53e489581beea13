// Package cli implements the ragline command-line interface with cobra.
// Commands reach the core only through the driving ports set by SetServices.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Services are the driving ports the commands call.
type Services struct {
	Ingestion driving.IngestionService
	Retrieval driving.RetrievalService
	Document  driving.DocumentService
	Prompt    driving.PromptService
	Settings  driving.SettingsService

	// Unavailable explains why pipeline services are nil, e.g. a missing API key.
	Unavailable error
}

var (
	version = "dev"

	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
	documentService  driving.DocumentService
	promptService    driving.PromptService
	settingsService  driving.SettingsService
	unavailableErr   error

	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ragline",
	Short: "Document ingestion and retrieval pipeline",
	Long: `ragline ingests documents by URL, path or batch manifest, splits them into
overlapping chunks, embeds the chunks and answers questions from the most
similar ones.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log threshold: debug, info, warn or error")
}

// SetServices injects the driving ports.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	retrievalService = s.Retrieval
	documentService = s.Document
	promptService = s.Prompt
	settingsService = s.Settings
	unavailableErr = s.Unavailable
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command until completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func configureLogging(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	if verbose {
		logger.SetVerbose(true)
		return nil
	}
	if logLevel == "" {
		logger.SetVerbose(false)
		return nil
	}
	lvl, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// notConfigured reports a missing service with the reason from startup.
func notConfigured(name string) error {
	if unavailableErr != nil {
		return fmt.Errorf("%s not configured: %w", name, unavailableErr)
	}
	return errors.New(name + " not configured")
}
