package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/domain/catalog"
	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"github.com/felixgeelhaar/hostprep/internal/domain/platform"
	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/domain/report"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/tui"
)

var (
	provisionDryRun   bool
	provisionJSON     bool
	provisionProgress bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Run the runbook against a host",
	Long: `Provision runs every runbook step against the target host in order.

A step whose precondition already holds is skipped. The first step whose
action fails stops the run; later steps are reported as not attempted.

Exit status: 0 when every step succeeded or was skipped, 1 when a step
failed, 2 for usage, configuration or connection errors.

Examples:
  hostprep provision --host deploy@10.0.0.5
  hostprep provision --host local --dry-run
  hostprep provision --host vm-1 --json > report.json`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

func init() {
	addHostFlags(provisionCmd)
	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "evaluate preconditions only and show what would run")
	provisionCmd.Flags().BoolVar(&provisionJSON, "json", false, "output as JSON")
	provisionCmd.Flags().BoolVar(&provisionProgress, "progress", false, "show live progress when attached to a terminal")

	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx = ports.ContextWithLogger(ctx, logger)

	h, conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	steps, err := runbookFor(ctx, cfg, conn, logger)
	if err != nil {
		return err
	}

	executor := provision.NewExecutor().WithLogger(logger)

	if provisionDryRun {
		plan := report.NewPlan(executor.Plan(ctx, conn, steps))
		if provisionJSON {
			return report.WritePlanJSON(out, plan)
		}
		return report.WritePlanText(out, plan)
	}

	var view *tui.ProgressView
	if provisionProgress && !provisionJSON && isTerminal(out) {
		view = tui.StartProgress(ctx, out, h.ID().String(), steps)
		go exitOnInterrupt(view)
		executor = executor.WithObserver(view)
	}

	run := executor.Execute(ctx, conn, steps)

	if view != nil {
		if err := view.Finish(); err != nil {
			logger.Warn(ctx, "progress view failed", ports.F("error", err.Error()))
		}
	}

	summary := report.NewSummary(run)
	switch {
	case provisionJSON:
		err = report.WriteJSON(out, summary)
	case view != nil:
		_, err = fmt.Fprint(out, tui.RenderSummary(summary))
	default:
		err = report.WriteText(out, summary)
	}
	if err != nil {
		return err
	}

	if summary.ExitCode() != report.ExitOK {
		return errStepFailed
	}
	return nil
}

// runbookFor builds the runbook for the connected host. The package manager
// comes from runbook.package_manager or from the host's os-release.
func runbookFor(ctx context.Context, cfg *config.Config, conn transport.Connection, logger ports.Logger) ([]provision.Step, error) {
	pm := cfg.Runbook.PackageManager

	facts, err := platform.Detect(ctx, conn)
	switch {
	case err != nil && pm == "":
		return nil, config.NewUnsupportedOSError(conn.Host().ID().String()).WithUnderlying(err)
	case err != nil:
		logger.Warn(ctx, "platform detection failed, using configured package manager",
			ports.F("error", err.Error()),
			ports.F("package_manager", pm),
		)
	default:
		logger.Debug(ctx, "platform detected",
			ports.F("os", facts.String()),
			ports.F("package_manager", facts.PackageManager()),
		)
		if pm == "" {
			pm = facts.PackageManager()
		}
	}
	if pm == "" {
		return nil, config.NewUnsupportedOSError(facts.String())
	}

	reg, err := catalog.Build(cfg.Runbook, pm)
	if err != nil {
		return nil, config.NewValidationFailedError("runbook", err.Error()).WithUnderlying(err)
	}
	return reg.List(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}

// exitOnInterrupt ends the process once the user pressed Ctrl+C in the
// progress view. The view has already restored the terminal.
func exitOnInterrupt(view *tui.ProgressView) {
	<-view.Done()
	if view.Interrupted() {
		os.Exit(exitInterrupted)
	}
}
