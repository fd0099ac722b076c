// Package catalog assembles the default runbook: OS build dependencies,
// pyenv, a Python interpreter, a virtual environment and the pip packages
// installed into it.
package catalog

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// Supported package managers.
const (
	APT = "apt"
	DNF = "dnf"
)

// pyenv build dependencies per package manager, from the pyenv wiki.
var defaultPackages = map[string][]string{
	APT: {
		"build-essential", "curl", "git", "libbz2-dev", "libffi-dev", "liblzma-dev",
		"libncursesw5-dev", "libreadline-dev", "libsqlite3-dev", "libssl-dev",
		"libxml2-dev", "libxmlsec1-dev", "tk-dev", "xz-utils", "zlib1g-dev",
	},
	DNF: {
		"bzip2", "bzip2-devel", "curl", "gcc", "git", "libffi-devel", "make",
		"openssl-devel", "patch", "readline-devel", "sqlite", "sqlite-devel",
		"tk-devel", "xz-devel", "zlib-devel",
	},
}

// DefaultPackages returns the build dependencies installed when the runbook
// lists none.
func DefaultPackages(packageManager string) []string {
	return append([]string(nil), defaultPackages[packageManager]...)
}

// Build returns the runbook for rb on a host using packageManager, in
// execution order. Every name that reaches a shell command is validated
// here.
func Build(rb config.Runbook, packageManager string) (*provision.Registry, error) {
	if _, ok := defaultPackages[packageManager]; !ok {
		return nil, fmt.Errorf("unsupported package manager %q", packageManager)
	}
	if err := validateRunbook(rb); err != nil {
		return nil, err
	}

	packages := rb.SystemPackages
	if len(packages) == 0 {
		packages = DefaultPackages(packageManager)
	}

	env := newPyenv(rb.Python.ManagerRoot)
	venv := newVenv(rb.Venv)

	steps := []provision.Step{
		newPackagesStep(packageManager, packages),
		newPyenvInstallStep(env, rb.Python.Installer),
		newPythonStep(env, rb.Python.Version),
		newVenvStep(env, venv, rb.Python.Version),
	}
	for _, pkg := range rb.PipPackages {
		steps = append(steps, newPipInstallStep(venv, pkg))
	}
	for _, mod := range rb.VerifyImports {
		steps = append(steps, newVerifyImportStep(venv, mod, rb.PipPackages))
	}

	reg := provision.NewRegistry()
	for _, s := range steps {
		if err := reg.Append(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func validateRunbook(rb config.Runbook) error {
	for _, pkg := range rb.SystemPackages {
		if err := validation.ValidatePackageName(pkg); err != nil {
			return err
		}
	}
	if err := validation.ValidatePythonVersion(rb.Python.Version); err != nil {
		return err
	}
	if err := validation.ValidateRemotePath(rb.Python.ManagerRoot); err != nil {
		return fmt.Errorf("python manager root: %w", err)
	}
	if err := validation.ValidateURL(rb.Python.Installer); err != nil {
		return fmt.Errorf("pyenv installer: %w", err)
	}
	if err := validation.ValidateRemotePath(rb.Venv); err != nil {
		return fmt.Errorf("venv: %w", err)
	}
	for _, pkg := range rb.PipPackages {
		if err := validation.ValidatePipPackage(pkg); err != nil {
			return err
		}
	}
	for _, mod := range rb.VerifyImports {
		if err := validation.ValidatePythonModule(mod); err != nil {
			return err
		}
	}
	return nil
}

// shellPath rewrites a leading ~ to $HOME so the path also expands inside
// assignments and double quotes.
func shellPath(path string) string {
	if path == "~" {
		return "$HOME"
	}
	if strings.HasPrefix(path, "~/") {
		return "$HOME" + path[1:]
	}
	return path
}

// asRoot runs cmd with sudo unless already root. sudo -n never prompts, so a
// missing sudo rule fails the step instead of hanging it.
func asRoot(cmd string) string {
	return fmt.Sprintf(`if [ "$(id -u)" -eq 0 ]; then %s; else sudo -n %s; fi`, cmd, cmd)
}
