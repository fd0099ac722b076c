// Package config loads hostprep.yaml (or .toml): where to connect, what the
// runbook installs, and how to log.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
)

// Defaults reproduce the original VM setup runbook.
const (
	DefaultFileName       = "hostprep.yaml"
	DefaultPythonVersion  = "3.8.7"
	DefaultManagerRoot    = "~/.pyenv"
	DefaultVenv           = "~/venvs/runbook"
	DefaultPyenvInstaller = "https://pyenv.run"
	DefaultPipPackage     = "google-cloud-storage"
	DefaultVerifyImport   = "google.cloud.storage"
)

// Config is the root of the configuration file.
type Config struct {
	Host    Host    `yaml:"host" toml:"host"`
	Runbook Runbook `yaml:"runbook" toml:"runbook"`
	Logging Logging `yaml:"logging" toml:"logging"`
}

// Host describes how to reach the target.
type Host struct {
	// Target is "[user@]hostname[:port]" or "local".
	Target                string `yaml:"target" toml:"target"`
	User                  string `yaml:"user" toml:"user"`
	Port                  int    `yaml:"port" toml:"port"`
	SSHKey                string `yaml:"ssh_key" toml:"ssh_key"`
	ProxyJump             string `yaml:"proxy_jump" toml:"proxy_jump"`
	KnownHosts            string `yaml:"known_hosts" toml:"known_hosts"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key" toml:"insecure_ignore_host_key"`
	// ConnectTimeout is a Go duration string such as "30s".
	ConnectTimeout string `yaml:"connect_timeout" toml:"connect_timeout"`
}

// Runbook lists what gets installed on the host.
type Runbook struct {
	// PackageManager overrides detection ("apt" or "dnf").
	PackageManager string   `yaml:"package_manager" toml:"package_manager"`
	SystemPackages []string `yaml:"system_packages" toml:"system_packages"`
	Python         Python   `yaml:"python" toml:"python"`
	Venv           string   `yaml:"venv" toml:"venv"`
	PipPackages    []string `yaml:"pip_packages" toml:"pip_packages"`
	VerifyImports  []string `yaml:"verify_imports" toml:"verify_imports"`
}

// Python selects the interpreter and its version manager.
type Python struct {
	Version     string `yaml:"version" toml:"version"`
	ManagerRoot string `yaml:"manager_root" toml:"manager_root"`
	Installer   string `yaml:"installer" toml:"installer"`
}

// Logging configures the console logger.
type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field. SystemPackages stays empty: the
// runbook picks build dependencies for the detected distribution.
func (c *Config) ApplyDefaults() {
	if c.Runbook.Python.Version == "" {
		c.Runbook.Python.Version = DefaultPythonVersion
	}
	if c.Runbook.Python.ManagerRoot == "" {
		c.Runbook.Python.ManagerRoot = DefaultManagerRoot
	}
	if c.Runbook.Python.Installer == "" {
		c.Runbook.Python.Installer = DefaultPyenvInstaller
	}
	if c.Runbook.Venv == "" {
		c.Runbook.Venv = DefaultVenv
	}
	if c.Runbook.PipPackages == nil {
		c.Runbook.PipPackages = []string{DefaultPipPackage}
	}
	if c.Runbook.VerifyImports == nil {
		c.Runbook.VerifyImports = []string{DefaultVerifyImport}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// SSH converts the host section into transport settings.
func (h Host) SSH() (host.SSHConfig, error) {
	cfg := host.SSHConfig{
		User:                  h.User,
		Port:                  h.Port,
		IdentityFile:          h.SSHKey,
		ProxyJump:             h.ProxyJump,
		KnownHostsFile:        h.KnownHosts,
		InsecureIgnoreHostKey: h.InsecureIgnoreHostKey,
	}
	if h.ConnectTimeout != "" {
		d, err := time.ParseDuration(h.ConnectTimeout)
		if err != nil {
			return host.SSHConfig{}, fmt.Errorf("invalid connect_timeout %q: %w", h.ConnectTimeout, err)
		}
		cfg.ConnectTimeout = d
	}
	return cfg, nil
}

// ResolveHost turns the target into a Host handle. An explicit target (from
// --host) wins over the file's host.target.
func (c *Config) ResolveHost(target string) (*host.Host, error) {
	if strings.TrimSpace(target) == "" {
		target = c.Host.Target
	}
	if strings.TrimSpace(target) == "" {
		return nil, NewUsageError("no target host given", "Pass --host user@hostname, --host local, or set host.target in the config file.")
	}

	base, err := c.Host.SSH()
	if err != nil {
		return nil, NewValidationFailedError("host.connect_timeout", err.Error())
	}

	h, err := host.ParseTarget(target, base)
	if err != nil {
		return nil, NewValidationFailedError("host.target", err.Error()).
			WithSuggestion("Use [user@]hostname[:port], for example deploy@10.0.0.5:2222, or 'local'.").
			WithUnderlying(err)
	}
	return h, nil
}
