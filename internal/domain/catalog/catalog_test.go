package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/testutil/mocks"
)

const (
	pyenvVersions = "PYENV_ROOT=$HOME/.pyenv $HOME/.pyenv/bin/pyenv versions --bare"
	pyenvCheck    = "test -x $HOME/.pyenv/bin/pyenv"
	venvVersion   = "$HOME/venvs/runbook/bin/python --version"
	pipShow       = "$HOME/venvs/runbook/bin/python -m pip show --quiet google-cloud-storage"
	importCheck   = "$HOME/venvs/runbook/bin/python -c 'import google.cloud.storage'"
)

func defaultRunbook() config.Runbook {
	return config.Default().Runbook
}

func names(reg *provision.Registry) []string {
	var out []string
	for _, s := range reg.List() {
		out = append(out, s.Name().String())
	}
	return out
}

func dpkgCheck(pkgs []string) string {
	return `dpkg-query -W -f='${db:Status-Status}\n' ` + strings.Join(pkgs, " ")
}

func TestBuild_DefaultRunbook(t *testing.T) {
	t.Parallel()

	reg, err := Build(defaultRunbook(), APT)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"os:packages",
		"pyenv:install",
		"pyenv:python:3.8.7",
		"venv:create",
		"pip:install:google-cloud-storage",
		"pip:verify:google.cloud.storage",
	}, names(reg))

	for _, s := range reg.List() {
		assert.NotEmpty(t, s.Description(), s.Name().String())
	}
}

func TestBuild_CustomRunbook(t *testing.T) {
	t.Parallel()

	rb := defaultRunbook()
	rb.SystemPackages = []string{"make", "gcc"}
	rb.PipPackages = []string{"google-cloud-storage>=2.0", "requests[socks]"}
	rb.VerifyImports = []string{}

	reg, err := Build(rb, DNF)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"os:packages",
		"pyenv:install",
		"pyenv:python:3.8.7",
		"venv:create",
		"pip:install:google-cloud-storage",
		"pip:install:requests",
	}, names(reg))
	assert.Equal(t, "Install 2 build dependencies with dnf", reg.List()[0].Description())
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	_, err := Build(defaultRunbook(), "pacman")
	assert.ErrorContains(t, err, "unsupported package manager")

	rb := defaultRunbook()
	rb.PipPackages = []string{"numpy", "numpy==1.24.0"}
	_, err = Build(rb, APT)
	assert.ErrorIs(t, err, provision.ErrDuplicateName)

	rb = defaultRunbook()
	rb.VerifyImports = []string{"os; rm"}
	_, err = Build(rb, APT)
	assert.Error(t, err)

	rb = defaultRunbook()
	rb.Venv = "venv"
	_, err = Build(rb, APT)
	assert.ErrorContains(t, err, "venv")
}

func TestDefaultPackages_IsACopy(t *testing.T) {
	t.Parallel()

	pkgs := DefaultPackages(APT)
	pkgs[0] = "changed"
	assert.NotEqual(t, "changed", DefaultPackages(APT)[0])
	assert.Contains(t, DefaultPackages(DNF), "openssl-devel")
	assert.Nil(t, DefaultPackages("zypper"))
}

func TestRunbook_ProvisionedHostSkipsEverything(t *testing.T) {
	t.Parallel()

	pkgs := DefaultPackages(APT)
	conn := mocks.NewConnection(nil)
	conn.AddOutput(dpkgCheck(pkgs), 0, strings.Repeat("installed\n", len(pkgs)))
	conn.AddOutput(pyenvCheck, 0, "")
	conn.AddOutput(pyenvVersions, 0, "system\n3.8.7\n3.8.7/envs/tools\n")
	conn.AddOutput(venvVersion, 0, "Python 3.8.7\n")
	conn.AddOutput(pipShow, 0, "")
	conn.AddOutput(importCheck, 0, "")

	reg, err := Build(defaultRunbook(), APT)
	require.NoError(t, err)

	run := provision.NewExecutor().Execute(context.Background(), conn, reg.List())

	require.True(t, run.Succeeded())
	for _, r := range run.Results() {
		assert.Equal(t, provision.OutcomeSkipped, r.Outcome(), r.Name().String())
	}
	assert.Len(t, conn.Calls(), 6, "only preconditions run on a provisioned host")
}

func TestRunbook_FreshHost(t *testing.T) {
	t.Parallel()

	rb := defaultRunbook()
	rb.SystemPackages = []string{"make"}
	env := newPyenv(rb.Python.ManagerRoot)

	installDeps := asRoot("env DEBIAN_FRONTEND=noninteractive apt-get update -q") +
		" && " + asRoot("env DEBIAN_FRONTEND=noninteractive apt-get install -y -q make")
	installPyenv := "curl -fsSL https://pyenv.run | PYENV_ROOT=$HOME/.pyenv bash"
	buildPython := "PYENV_ROOT=$HOME/.pyenv $HOME/.pyenv/bin/pyenv install -s 3.8.7"
	createVenv := env.python("3.8.7") + " -m venv --clear $HOME/venvs/runbook"
	pipInstall := "$HOME/venvs/runbook/bin/python -m pip install --quiet 'google-cloud-storage'"

	conn := mocks.NewConnection(nil)
	conn.AddOutput(dpkgCheck([]string{"make"}), 1, "")
	conn.AddOutput(installDeps, 0, "")
	conn.AddOutput(pyenvCheck, 1, "")
	conn.AddOutput(installPyenv, 0, "")
	conn.AddOutput(pyenvVersions, 0, "system\n")
	conn.AddOutput(buildPython, 0, "")
	conn.AddOutput(venvVersion, 127, "")
	conn.AddOutput(createVenv, 0, "")
	conn.AddOutput(pipShow, 1, "")
	conn.AddOutput(pipInstall, 0, "")
	conn.AddOutput(importCheck, 0, "")

	reg, err := Build(rb, APT)
	require.NoError(t, err)

	run := provision.NewExecutor().Execute(context.Background(), conn, reg.List())
	require.True(t, run.Succeeded(), "%v", run.Results())

	outcomes := make([]provision.Outcome, 0)
	for _, r := range run.Results() {
		outcomes = append(outcomes, r.Outcome())
	}
	assert.Equal(t, []provision.Outcome{
		provision.OutcomeSucceeded,
		provision.OutcomeSucceeded,
		provision.OutcomeSucceeded,
		provision.OutcomeSucceeded,
		provision.OutcomeSucceeded,
		provision.OutcomeSkipped,
	}, outcomes)

	for _, cmd := range []string{installDeps, installPyenv, buildPython, createVenv, pipInstall} {
		assert.True(t, conn.Ran(cmd), cmd)
	}
}

func TestPackagesStep_Satisfied(t *testing.T) {
	t.Parallel()

	pkgs := []string{"make", "curl"}
	tests := []struct {
		name   string
		code   int
		stdout string
		want   bool
	}{
		{name: "all installed", code: 0, stdout: "installed\ninstalled\n", want: true},
		{name: "one config-files", code: 0, stdout: "installed\nconfig-files\n", want: false},
		{name: "one unknown", code: 1, stdout: "installed\n", want: false},
		{name: "short output", code: 0, stdout: "installed\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := mocks.NewConnection(nil)
			conn.AddOutput(dpkgCheck(pkgs), tt.code, tt.stdout)

			got, err := newPackagesStep(APT, pkgs).Satisfied(context.Background(), conn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPackagesStep_DNF(t *testing.T) {
	t.Parallel()

	conn := mocks.NewConnection(nil)
	conn.AddOutput("rpm -q gcc make", 0, "gcc-13.2.1\nmake-4.4.1\n")
	install := asRoot("dnf install -y -q gcc make")
	conn.AddOutput(install, 0, "")

	step := newPackagesStep(DNF, []string{"gcc", "make"})
	ok, err := step.Satisfied(context.Background(), conn)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, step.Apply(context.Background(), conn))
	assert.True(t, conn.Ran(install))
}

func TestPythonStep_MajorMinor(t *testing.T) {
	t.Parallel()

	conn := mocks.NewConnection(nil)
	conn.AddOutput(pyenvVersions, 0, "3.11.7\n")

	ok, err := newPythonStep(newPyenv("~/.pyenv"), "3.11").Satisfied(context.Background(), conn)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newPythonStep(newPyenv("~/.pyenv"), "3.11.8").Satisfied(context.Background(), conn)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVenvStep_WrongVersionIsNotSatisfied(t *testing.T) {
	t.Parallel()

	conn := mocks.NewConnection(nil)
	conn.AddOutput(venvVersion, 0, "Python 3.10.12\n")

	step := newVenvStep(newPyenv("~/.pyenv"), newVenv("~/venvs/runbook"), "3.8.7")
	ok, err := step.Satisfied(context.Background(), conn)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyImportStep_Apply(t *testing.T) {
	t.Parallel()

	v := newVenv("~/venvs/runbook")
	reinstall := "$HOME/venvs/runbook/bin/python -m pip install --quiet --force-reinstall 'google-cloud-storage>=2.0'"

	t.Run("reinstall fixes import", func(t *testing.T) {
		t.Parallel()
		conn := mocks.NewConnection(nil)
		conn.AddOutput(reinstall, 0, "")
		conn.AddOutput(importCheck, 0, "")

		step := newVerifyImportStep(v, "google.cloud.storage", []string{"google-cloud-storage>=2.0"})
		require.NoError(t, step.Apply(context.Background(), conn))
	})

	t.Run("still broken", func(t *testing.T) {
		t.Parallel()
		conn := mocks.NewConnection(nil)
		conn.AddOutput(reinstall, 0, "")
		conn.AddResult(importCheck, transportResult(1, "ModuleNotFoundError: No module named 'google.cloud'"))

		step := newVerifyImportStep(v, "google.cloud.storage", []string{"google-cloud-storage>=2.0"})
		err := step.Apply(context.Background(), conn)
		assert.EqualError(t, err, "module google.cloud.storage is not importable: ModuleNotFoundError: No module named 'google.cloud'")
	})
}

func TestShellPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$HOME", shellPath("~"))
	assert.Equal(t, "$HOME/.pyenv", shellPath("~/.pyenv"))
	assert.Equal(t, "/opt/pyenv", shellPath("/opt/pyenv"))
}
