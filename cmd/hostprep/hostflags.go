package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/domain/host"
	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
)

// Connection flags shared by provision and ping.
var (
	hostTarget   string
	hostUser     string
	hostPort     int
	hostIdentity string
	hostInsecure bool
)

// connectHost opens a connection to h.
var connectHost = func(ctx context.Context, h *host.Host) (transport.Connection, error) {
	return transport.ForHost(h).Connect(ctx, h)
}

func addHostFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&hostTarget, "host", "", "target host: [user@]hostname[:port] or local")
	cmd.Flags().StringVar(&hostUser, "user", "", "SSH user (default: current user)")
	cmd.Flags().IntVar(&hostPort, "port", 0, "SSH port (default: 22)")
	cmd.Flags().StringVarP(&hostIdentity, "identity", "i", "", "SSH private key file")
	cmd.Flags().BoolVar(&hostInsecure, "insecure-ignore-host-key", false, "skip known_hosts verification")
}

// applyHostFlags overlays the connection flags on the host section.
func applyHostFlags(cfg *config.Config) {
	if hostUser != "" {
		cfg.Host.User = hostUser
	}
	if hostPort != 0 {
		cfg.Host.Port = hostPort
	}
	if hostIdentity != "" {
		cfg.Host.SSHKey = hostIdentity
	}
	if hostInsecure {
		cfg.Host.InsecureIgnoreHostKey = true
	}
}

// dial resolves the target and connects to it. Connection failures are
// reported as user errors.
func dial(ctx context.Context, cfg *config.Config) (*host.Host, transport.Connection, error) {
	applyHostFlags(cfg)

	h, err := cfg.ResolveHost(hostTarget)
	if err != nil {
		return nil, nil, err
	}

	conn, err := connectHost(ctx, h)
	if err != nil {
		h.MarkError(err)
		return h, nil, config.NewConnectionError(h.ID().String(), err)
	}
	h.MarkOnline()
	return h, conn, nil
}
