package config

import (
	"fmt"

	"github.com/felixgeelhaar/hostprep/internal/adapters/logging"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// Validate checks every user-supplied value that ends up in a shell command.
// It returns an *ErrorList, or nil.
func (c *Config) Validate() error {
	errs := NewErrorList()

	if c.Host.Port < 0 || c.Host.Port > 65535 {
		errs.AddValidation("host.port", "must be between 1 and 65535", "Omit the port to use 22.")
	}
	if c.Host.User != "" {
		if err := validation.ValidateUser(c.Host.User); err != nil {
			errs.AddValidation("host.user", err.Error(), "Use a plain POSIX user name.")
		}
	}
	if _, err := c.Host.SSH(); err != nil {
		errs.AddValidation("host.connect_timeout", err.Error(), "Use a duration such as \"30s\" or \"1m\".")
	}

	rb := c.Runbook
	switch rb.PackageManager {
	case "", "apt", "dnf":
	default:
		errs.AddValidation("runbook.package_manager", fmt.Sprintf("unsupported package manager %q", rb.PackageManager), "Use apt or dnf, or leave it empty for detection.")
	}
	for i, pkg := range rb.SystemPackages {
		if err := validation.ValidatePackageName(pkg); err != nil {
			errs.AddValidation(fmt.Sprintf("runbook.system_packages[%d]", i), err.Error(), "Use the distribution package name, e.g. libssl-dev.")
		}
	}
	if err := validation.ValidatePythonVersion(rb.Python.Version); err != nil {
		errs.AddValidation("runbook.python.version", err.Error(), "Use a CPython version such as 3.8.7 or 3.11.")
	}
	if err := validation.ValidateRemotePath(rb.Python.ManagerRoot); err != nil {
		errs.AddValidation("runbook.python.manager_root", err.Error(), "Use an absolute path or one starting with ~/.")
	}
	if err := validation.ValidateURL(rb.Python.Installer); err != nil {
		errs.AddValidation("runbook.python.installer", err.Error(), "Use an https:// URL.")
	}
	if err := validation.ValidateRemotePath(rb.Venv); err != nil {
		errs.AddValidation("runbook.venv", err.Error(), "Use an absolute path or one starting with ~/.")
	}
	for i, pkg := range rb.PipPackages {
		if err := validation.ValidatePipPackage(pkg); err != nil {
			errs.AddValidation(fmt.Sprintf("runbook.pip_packages[%d]", i), err.Error(), "Use a PyPI requirement such as google-cloud-storage>=2.0.")
		}
	}
	for i, mod := range rb.VerifyImports {
		if err := validation.ValidatePythonModule(mod); err != nil {
			errs.AddValidation(fmt.Sprintf("runbook.verify_imports[%d]", i), err.Error(), "Use a dotted module path such as google.cloud.storage.")
		}
	}

	if _, err := ports.ParseLevel(c.Logging.Level); err != nil {
		errs.AddValidation("logging.level", err.Error(), "")
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		errs.AddValidation("logging.format", err.Error(), "")
	}

	return errs.AsError()
}
