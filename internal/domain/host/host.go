// Package host models the single machine a runbook is applied to.
package host

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ID identifies the target host in logs and reports.
type ID string

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,62}$`)

// NewID creates a new host ID, validating the format.
func NewID(id string) (ID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("host ID cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return "", fmt.Errorf("invalid host ID %q: must be alphanumeric with hyphens/dots, 1-63 chars", id)
	}
	return ID(id), nil
}

// String returns the host ID as a string.
func (h ID) String() string {
	return string(h)
}

// Status represents the connection status of a host.
type Status string

const (
	// StatusUnknown means no connection was attempted yet.
	StatusUnknown Status = "unknown"
	// StatusOnline means the last connection succeeded.
	StatusOnline Status = "online"
	// StatusError means the last connection failed.
	StatusError Status = "error"
)

// SSHConfig holds SSH connection settings for a host.
type SSHConfig struct {
	Hostname              string        `yaml:"hostname" toml:"hostname" json:"hostname"`
	User                  string        `yaml:"user" toml:"user" json:"user,omitempty"`
	Port                  int           `yaml:"port" toml:"port" json:"port,omitempty"`
	IdentityFile          string        `yaml:"ssh_key" toml:"ssh_key" json:"ssh_key,omitempty"`
	ProxyJump             string        `yaml:"proxy_jump,omitempty" toml:"proxy_jump" json:"proxy_jump,omitempty"`
	KnownHostsFile        string        `yaml:"known_hosts,omitempty" toml:"known_hosts" json:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool          `yaml:"insecure_ignore_host_key,omitempty" toml:"insecure_ignore_host_key" json:"insecure_ignore_host_key,omitempty"`
	ConnectTimeout        time.Duration `yaml:"connect_timeout,omitempty" toml:"connect_timeout" json:"connect_timeout,omitempty"`
}

// Validate validates the SSH configuration.
func (c SSHConfig) Validate() error {
	if c.Hostname == "" {
		return fmt.Errorf("hostname is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	return nil
}

// WithDefaults returns a copy with default values applied.
func (c SSHConfig) WithDefaults() SSHConfig {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	return c
}

// Address returns hostname:port.
func (c SSHConfig) Address() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", c.Hostname, port)
}

// Host is the explicit handle to the target machine. Steps read facts from
// it instead of relying on ambient state of the machine running hostprep.
type Host struct {
	id        ID
	ssh       SSHConfig
	local     bool
	status    Status
	lastSeen  time.Time
	lastError error
	facts     map[string]string
}

// New creates a remote host reached over SSH.
func New(id ID, ssh SSHConfig) (*Host, error) {
	ssh = ssh.WithDefaults()
	if err := ssh.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SSH config: %w", err)
	}
	return &Host{
		id:     id,
		ssh:    ssh,
		status: StatusUnknown,
		facts:  make(map[string]string),
	}, nil
}

// NewLocal creates a host that is the machine running hostprep.
func NewLocal() *Host {
	return &Host{
		id:     LocalID,
		local:  true,
		status: StatusUnknown,
		facts:  make(map[string]string),
	}
}

// ID returns the host's identifier.
func (h *Host) ID() ID {
	return h.id
}

// SSH returns the SSH configuration.
func (h *Host) SSH() SSHConfig {
	return h.ssh
}

// IsLocal reports whether commands run on the current machine.
func (h *Host) IsLocal() bool {
	return h.local
}

// Status returns the connection status.
func (h *Host) Status() Status {
	return h.status
}

// LastSeen returns when the host was last contacted.
func (h *Host) LastSeen() time.Time {
	return h.lastSeen
}

// LastError returns the most recent connection error.
func (h *Host) LastError() error {
	return h.lastError
}

// MarkOnline marks the host as reachable.
func (h *Host) MarkOnline() {
	h.status = StatusOnline
	h.lastSeen = time.Now()
	h.lastError = nil
}

// MarkError records a failed connection.
func (h *Host) MarkError(err error) {
	h.status = StatusError
	h.lastError = err
}

// SetFact records a detected property of the host, such as its distro.
func (h *Host) SetFact(key, value string) {
	h.facts[key] = value
}

// Fact returns a detected property of the host.
func (h *Host) Fact(key string) (string, bool) {
	v, ok := h.facts[key]
	return v, ok
}

// Facts returns a copy of all detected properties.
func (h *Host) Facts() map[string]string {
	result := make(map[string]string, len(h.facts))
	for k, v := range h.facts {
		result[k] = v
	}
	return result
}

// Summary is a read-only view of the host used in reports.
type Summary struct {
	ID       ID                `json:"id"`
	Hostname string            `json:"hostname,omitempty"`
	User     string            `json:"user,omitempty"`
	Port     int               `json:"port,omitempty"`
	Local    bool              `json:"local,omitempty"`
	Status   Status            `json:"status"`
	Facts    map[string]string `json:"facts,omitempty"`
}

// Summary returns a read-only summary of the host.
func (h *Host) Summary() Summary {
	s := Summary{
		ID:     h.id,
		Local:  h.local,
		Status: h.status,
		Facts:  h.Facts(),
	}
	if !h.local {
		s.Hostname = h.ssh.Hostname
		s.User = h.ssh.User
		s.Port = h.ssh.Port
	}
	return s
}
