package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// pyenv locates the version manager on the host.
type pyenv struct {
	root string
}

func newPyenv(root string) pyenv {
	return pyenv{root: shellPath(root)}
}

func (p pyenv) bin() string {
	return p.root + "/bin/pyenv"
}

func (p pyenv) cmd(args string) string {
	return fmt.Sprintf("PYENV_ROOT=%s %s %s", p.root, p.bin(), args)
}

// python returns the interpreter pyenv built for version.
func (p pyenv) python(version string) string {
	return fmt.Sprintf(`"$(%s)/bin/python"`, p.cmd("prefix "+version))
}

// venv locates the virtual environment on the host.
type venv struct {
	path string
}

func newVenv(path string) venv {
	return venv{path: shellPath(path)}
}

func (v venv) python() string {
	return v.path + "/bin/python"
}

func (v venv) pip(args string) string {
	return fmt.Sprintf("%s -m pip %s", v.python(), args)
}

// quoteRequirements single-quotes pip requirements so version specifiers
// are not read as redirections. Requirements are validated and never
// contain quotes.
func quoteRequirements(pkgs []string) string {
	quoted := make([]string, len(pkgs))
	for i, p := range pkgs {
		quoted[i] = "'" + p + "'"
	}
	return strings.Join(quoted, " ")
}

// packagesStep installs OS packages with apt or dnf.
type packagesStep struct {
	name     provision.StepName
	manager  string
	packages []string
}

func newPackagesStep(manager string, packages []string) *packagesStep {
	return &packagesStep{
		name:     provision.MustNewStepName("os:packages"),
		manager:  manager,
		packages: packages,
	}
}

func (s *packagesStep) Name() provision.StepName {
	return s.name
}

func (s *packagesStep) Description() string {
	return fmt.Sprintf("Install %d build dependencies with %s", len(s.packages), s.manager)
}

// Satisfied holds when every package is installed.
func (s *packagesStep) Satisfied(ctx context.Context, target transport.Connection) (bool, error) {
	list := strings.Join(s.packages, " ")

	if s.manager == DNF {
		result, err := target.Run(ctx, "rpm -q "+list)
		if err != nil {
			return false, err
		}
		return result.Success(), nil
	}

	// dpkg-query exits 1 for unknown packages and prints one status per
	// known package.
	result, err := target.Run(ctx, `dpkg-query -W -f='${db:Status-Status}\n' `+list)
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, nil
	}
	statuses := strings.Fields(string(result.Stdout))
	if len(statuses) != len(s.packages) {
		return false, nil
	}
	for _, st := range statuses {
		if st != "installed" {
			return false, nil
		}
	}
	return true, nil
}

func (s *packagesStep) Apply(ctx context.Context, target transport.Connection) error {
	list := strings.Join(s.packages, " ")

	var cmd string
	switch s.manager {
	case DNF:
		cmd = asRoot("dnf install -y -q " + list)
	default:
		cmd = asRoot("env DEBIAN_FRONTEND=noninteractive apt-get update -q") +
			" && " + asRoot("env DEBIAN_FRONTEND=noninteractive apt-get install -y -q "+list)
	}
	return provision.RunCommand(ctx, target, cmd)
}

func newPyenvInstallStep(env pyenv, installer string) *provision.CommandStep {
	return provision.NewCommandStep(
		provision.MustNewStepName("pyenv:install"),
		fmt.Sprintf("curl -fsSL %s | PYENV_ROOT=%s bash", installer, env.root),
	).
		WithCheck("test -x " + env.bin()).
		WithDescription("Install pyenv into " + env.root)
}

// pythonStep builds an interpreter with pyenv.
type pythonStep struct {
	name    provision.StepName
	env     pyenv
	version string
}

func newPythonStep(env pyenv, version string) *pythonStep {
	return &pythonStep{
		name:    provision.MustNewStepName("pyenv:python:" + version),
		env:     env,
		version: version,
	}
}

func (s *pythonStep) Name() provision.StepName {
	return s.name
}

func (s *pythonStep) Description() string {
	return fmt.Sprintf("Build Python %s with pyenv", s.version)
}

// Satisfied holds when pyenv lists a matching version. "3.8" accepts any 3.8.x.
func (s *pythonStep) Satisfied(ctx context.Context, target transport.Connection) (bool, error) {
	result, err := target.Run(ctx, s.env.cmd("versions --bare"))
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, nil
	}
	for _, line := range strings.Split(string(result.Stdout), "\n") {
		if validation.SameVersion(s.version, strings.TrimSpace(line)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *pythonStep) Apply(ctx context.Context, target transport.Connection) error {
	return provision.RunCommand(ctx, target, s.env.cmd("install -s "+s.version))
}

// venvStep creates the virtual environment from the pyenv interpreter.
type venvStep struct {
	name    provision.StepName
	env     pyenv
	venv    venv
	version string
}

func newVenvStep(env pyenv, v venv, version string) *venvStep {
	return &venvStep{
		name:    provision.MustNewStepName("venv:create"),
		env:     env,
		venv:    v,
		version: version,
	}
}

func (s *venvStep) Name() provision.StepName {
	return s.name
}

func (s *venvStep) Description() string {
	return fmt.Sprintf("Create virtual environment %s (Python %s)", s.venv.path, s.version)
}

// Satisfied holds when the venv interpreter exists and reports the
// configured version.
func (s *venvStep) Satisfied(ctx context.Context, target transport.Connection) (bool, error) {
	result, err := target.Run(ctx, s.venv.python()+" --version")
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, nil
	}
	reported := strings.TrimSpace(string(result.CombinedOutput()))
	return validation.SameVersion(s.version, reported), nil
}

// Apply recreates the venv, replacing one built from another interpreter.
func (s *venvStep) Apply(ctx context.Context, target transport.Connection) error {
	cmd := fmt.Sprintf("%s -m venv --clear %s", s.env.python(s.version), s.venv.path)
	return provision.RunCommand(ctx, target, cmd)
}

func newPipInstallStep(v venv, requirement string) *provision.CommandStep {
	dist := validation.PipDistribution(requirement)
	return provision.NewCommandStep(
		provision.MustNewStepName("pip:install:"+dist),
		v.pip("install --quiet "+quoteRequirements([]string{requirement})),
	).
		WithCheck(v.pip("show --quiet " + dist)).
		WithDescription(fmt.Sprintf("Install %s into %s", requirement, v.path))
}

// verifyImportStep proves a module imports inside the venv.
type verifyImportStep struct {
	name     provision.StepName
	venv     venv
	module   string
	packages []string
}

func newVerifyImportStep(v venv, module string, packages []string) *verifyImportStep {
	return &verifyImportStep{
		name:     provision.MustNewStepName("pip:verify:" + module),
		venv:     v,
		module:   module,
		packages: packages,
	}
}

func (s *verifyImportStep) Name() provision.StepName {
	return s.name
}

func (s *verifyImportStep) Description() string {
	return fmt.Sprintf("Check that %s imports in %s", s.module, s.venv.path)
}

func (s *verifyImportStep) importCmd() string {
	return fmt.Sprintf("%s -c 'import %s'", s.venv.python(), s.module)
}

func (s *verifyImportStep) Satisfied(ctx context.Context, target transport.Connection) (bool, error) {
	result, err := target.Run(ctx, s.importCmd())
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

// Apply force-reinstalls the runbook's pip packages, then imports again.
func (s *verifyImportStep) Apply(ctx context.Context, target transport.Connection) error {
	if len(s.packages) > 0 {
		reinstall := s.venv.pip("install --quiet --force-reinstall " + quoteRequirements(s.packages))
		if err := provision.RunCommand(ctx, target, reinstall); err != nil {
			return fmt.Errorf("reinstall failed: %w", err)
		}
	}

	result, err := target.Run(ctx, s.importCmd())
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("module %s is not importable: %s", s.module, result.FailureDetail())
	}
	return nil
}
