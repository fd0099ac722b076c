package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/adapters/logging"
	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Exit statuses beyond the report's 0 and 1.
const (
	exitUsage       = 2
	exitInterrupted = 130
)

// errStepFailed is returned after the report of a failed run was written.
var errStepFailed = errors.New("provisioning failed")

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "hostprep",
	Short: "Provision a host from an idempotent runbook",
	Long: `hostprep replays a VM setup runbook against one host as an ordered list
of idempotent steps. Steps whose precondition already holds are skipped; the
first failing step stops the run.

The default runbook installs OS build dependencies, pyenv, a Python
interpreter, a virtual environment and google-cloud-storage.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and prints any error that was not already
// reported.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errStepFailed) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: hostprep.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCmd)
}

// exitCode maps an error returned by Execute to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errStepFailed):
		return 1
	default:
		return exitUsage
	}
}

// loadConfig reads the --config file, or hostprep.yaml when present.
func loadConfig() (*config.Config, error) {
	return config.NewLoader().Load(cfgFile)
}

// newLogger builds the stderr logger from the logging section and the global
// flags. Flags win over the file.
func newLogger(cfg *config.Config, w io.Writer) (ports.Logger, error) {
	level, err := ports.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, config.NewValidationFailedError("logging.level", err.Error())
	}
	if verbose {
		level = ports.LevelDebug
	}

	formatName := cfg.Logging.Format
	if logFormat != "" {
		formatName = logFormat
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return nil, config.NewUsageError(err.Error(), "Use --log-format text or --log-format json.")
	}

	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithFormat(format),
	), nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) {
		return list.Format()
	}

	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
