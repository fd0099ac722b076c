package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"github.com/felixgeelhaar/hostprep/internal/testutil"
	"github.com/felixgeelhaar/hostprep/internal/testutil/mocks"
)

const pythonInstallCmd = "PYENV_ROOT=$HOME/.pyenv $HOME/.pyenv/bin/pyenv install -s 3.8.7"

// testConfig installs and verifies a single pip package.
func testConfig() *testutil.ConfigBuilder {
	return testutil.NewConfigBuilder().
		WithPipPackages("requests").
		WithVerifyImports("requests")
}

// resetFlags restores every package-level flag. Commands share them, so
// tests in this package do not run in parallel.
func resetFlags() {
	cfgFile = ""
	verbose = false
	logFormat = ""
	hostTarget = ""
	hostUser = ""
	hostPort = 0
	hostIdentity = ""
	hostInsecure = false
	provisionDryRun = false
	provisionJSON = false
	provisionProgress = false
	stepsPackageManager = ""
	stepsJSON = false
}

// writeConfig writes content to a temp hostprep.yaml and selects it.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	cfgFile = testutil.WriteConfig(t, "hostprep.yaml", content)
}

// useConnection routes every dial to conn for the duration of the test.
func useConnection(t *testing.T, conn *mocks.Connection) {
	t.Helper()

	orig := connectHost
	connectHost = func(context.Context, *host.Host) (transport.Connection, error) {
		return conn, nil
	}
	t.Cleanup(func() { connectHost = orig })
}

// newHostConnection returns a mock host running the os-release fixture
// where every other command succeeds silently.
func newHostConnection(t *testing.T, osRelease string) *mocks.Connection {
	t.Helper()

	conn := mocks.NewConnection(nil)
	conn.SetFallback(transport.CommandResult{ExitCode: 0})
	conn.AddOutput(testutil.OSReleaseCommand, 0, testutil.LoadFixtureString(t, osRelease))
	return conn
}

// run executes the root command with args and a fresh config.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
