package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/domain/platform"
	"github.com/felixgeelhaar/hostprep/internal/ports"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connectivity to a host",
	Long:  `Connect to the target host, run a trivial command and report its operating system.`,
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	addHostFlags(pingCmd)
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	start := time.Now()
	h, conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	result, err := conn.Run(ctx, "echo pong")
	if err == nil && !result.Success() {
		err = fmt.Errorf("echo exited with code %d", result.ExitCode)
	}
	if err != nil {
		h.MarkError(err)
		return config.NewConnectionError(h.ID().String(), err)
	}
	latency := time.Since(start).Round(time.Millisecond)

	osName := "unknown OS"
	if facts, err := platform.Detect(ctx, conn); err != nil {
		logger.Debug(ctx, "platform detection failed", ports.F("error", err.Error()))
	} else {
		osName = facts.String()
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: OK, %s (%s)\n", h.ID(), osName, latency)
	return err
}
