package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// LocalID is the --host value that provisions the current machine.
const LocalID ID = "local"

// ParseTarget parses a --host value of the form [user@]hostname[:port] and
// overlays it on base. "local" returns a local host.
func ParseTarget(target string, base SSHConfig) (*Host, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("target host is required")
	}
	if target == string(LocalID) {
		return NewLocal(), nil
	}

	cfg := base
	rest := target
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		cfg.User = rest[:at]
		rest = rest[at+1:]
		if err := validation.ValidateUser(cfg.User); err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", target, err)
		}
	}

	if colon := strings.LastIndex(rest, ":"); colon >= 0 {
		port, err := strconv.Atoi(rest[colon+1:])
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid target %q: bad port %q", target, rest[colon+1:])
		}
		cfg.Port = port
		rest = rest[:colon]
	}

	if err := validation.ValidateHostname(rest); err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}
	cfg.Hostname = rest

	id, err := NewID(rest)
	if err != nil {
		return nil, err
	}
	return New(id, cfg)
}
