//go:build e2e

package scenarios

import (
	"testing"

	"github.com/felixgeelhaar/hostprep/e2e/framework"
)

func TestVersion_ShowsVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	framework.NewScenario(t).
		When("I run hostprep version", func(r *framework.Runner) *framework.Result {
			return r.Version()
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertSuccess(t, r)
		}).
		And("the output shows version information", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "hostprep")
		})
}

func TestSteps_DefaultRunbook(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	framework.NewScenario(t).
		When("I list steps without a config file", func(r *framework.Runner) *framework.Result {
			return r.Steps()
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertSuccess(t, r)
		}).
		And("the default runbook is listed", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "pyenv:python:3.8.7")
			framework.AssertStdoutContains(t, r, "pip:install:google-cloud-storage")
			framework.AssertStdoutContains(t, r, "pip:verify:google.cloud.storage")
		})
}

func TestProvision_WithoutHostExitsTwo(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	framework.NewScenario(t).
		When("I provision without --host", func(r *framework.Runner) *framework.Result {
			return r.Provision()
		}).
		Then("it fails as a usage error", func(t *testing.T, r *framework.Result) {
			framework.AssertUsageError(t, r, "no target host given")
		})
}

func TestProvision_InvalidConfigExitsTwo(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	framework.NewScenario(t).
		Given("a config with a shell metacharacter in a package", func(env *framework.Environment) {
			env.WriteConfig("runbook:\n  pip_packages:\n    - \"requests; rm -rf /\"\n")
		}).
		When("I provision the local host", func(r *framework.Runner) *framework.Result {
			return r.Provision("--host", "local")
		}).
		Then("the exit status is 2", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 2)
		}).
		And("the error names the field", func(t *testing.T, r *framework.Result) {
			framework.AssertStderrContains(t, r, "runbook.pip_packages[0]")
		})
}

func TestProvision_DryRunLocal(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	framework.NewScenario(t).
		Given("a config pinning the package manager", func(env *framework.Environment) {
			env.WriteConfig("runbook:\n  package_manager: apt\nlogging:\n  level: error\n")
		}).
		When("I dry-run against the local host", func(r *framework.Runner) *framework.Result {
			return r.Provision("--host", "local", "--dry-run")
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertSuccess(t, r)
		}).
		And("the plan is printed", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "steps would be applied")
		})
}
