package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hostprep/internal/domain/config"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/testutil"
)

func TestSteps_ListsRunbookInOrder(t *testing.T) {
	resetFlags()
	writeConfig(t, testConfig().ToYAML())

	stdout, _, err := run(t, "steps")

	require.NoError(t, err)
	testutil.AssertOrdered(t, stdout,
		"os:packages", "pyenv:install", "pyenv:python:3.8.7",
		"venv:create", "pip:install:requests", "pip:verify:requests",
	)
	assert.Contains(t, stdout, "with apt")
}

func TestSteps_JSONForDNF(t *testing.T) {
	resetFlags()
	writeConfig(t, testConfig().ToYAML())

	stdout, _, err := run(t, "steps", "--package-manager", "dnf", "--json")
	require.NoError(t, err)

	var entries []stepEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 6)
	assert.Equal(t, "os:packages", entries[0].Name)
	assert.Contains(t, entries[0].Description, "dnf")
}

func TestSteps_UnknownPackageManager(t *testing.T) {
	resetFlags()
	writeConfig(t, testConfig().ToYAML())

	_, _, err := run(t, "steps", "--package-manager", "pacman")

	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeUsage))
}

func TestPing(t *testing.T) {
	resetFlags()
	writeConfig(t, testConfig().ToYAML())
	conn := newHostConnection(t, testutil.OSReleaseUbuntu)
	conn.AddOutput("uname -m", 0, "x86_64\n")
	useConnection(t, conn)

	stdout, _, err := run(t, "ping", "--host", "local")

	require.NoError(t, err)
	assert.Contains(t, stdout, "local: OK, Ubuntu 22.04.3 LTS (x86_64)")
	assert.True(t, conn.Ran("echo pong"))
}

func TestPing_CommandFails(t *testing.T) {
	resetFlags()
	writeConfig(t, testConfig().ToYAML())
	conn := newHostConnection(t, testutil.OSReleaseUbuntu)
	conn.AddOutput("echo pong", 127, "")
	useConnection(t, conn)

	_, _, err := run(t, "ping", "--host", "local")

	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeConnection))
}

func TestVersion(t *testing.T) {
	resetFlags()

	stdout, _, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "hostprep "+version)
	assert.Contains(t, stdout, "commit: "+commit)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"step failed", errStepFailed, 1},
		{"wrapped step failed", fmt.Errorf("run: %w", errStepFailed), 1},
		{"usage", config.NewUsageError("no target host given", ""), 2},
		{"other", errors.New("boom"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	resetFlags()

	err := config.NewConnectionError("vm-1", errors.New("connection refused"))
	msg := formatError(err)
	assert.Contains(t, msg, "cannot connect to vm-1 (at vm-1)")
	assert.Contains(t, msg, "Suggestion:")
	assert.NotContains(t, msg, "connection refused")

	verbose = true
	defer resetFlags()
	assert.Contains(t, formatError(err), "Technical details: connection refused")

	list := config.NewErrorList()
	list.AddValidation("runbook.venv", "must be absolute", "Use ~/venvs/runbook.")
	assert.Contains(t, formatError(list), "Found 1 error(s)")

	assert.Equal(t, "boom", formatError(errors.New("boom")))
}

func TestNewLogger(t *testing.T) {
	resetFlags()
	defer resetFlags()

	cfg := config.Default()
	logger, err := newLogger(cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ports.LevelInfo, logger.Level())

	verbose = true
	logger, err = newLogger(cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ports.LevelDebug, logger.Level())

	logFormat = "xml"
	_, err = newLogger(cfg, io.Discard)
	assert.True(t, config.IsUserError(err, config.ErrCodeUsage))
}
