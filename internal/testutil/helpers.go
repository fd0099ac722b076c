// Package testutil provides test helpers and utilities for hostprep tests.
package testutil

import (
	"embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// Fixture names of captured /etc/os-release files.
const (
	OSReleaseUbuntu = "os-release-ubuntu"
	OSReleaseRocky  = "os-release-rocky"
	OSReleaseAlpine = "os-release-alpine"
)

// OSReleaseCommand is the command platform detection sends to a host.
const OSReleaseCommand = "cat /etc/os-release 2>/dev/null || cat /usr/lib/os-release"

// WriteTempFile writes content to a file in the specified directory.
func WriteTempFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err, "failed to write temp file: %s", filename)

	return path
}

// WriteConfig writes a config file named filename into a fresh temp
// directory and returns its path.
func WriteConfig(t *testing.T, filename, content string) string {
	t.Helper()
	return WriteTempFile(t, t.TempDir(), filename, content)
}

// LoadFixture loads a test fixture file by name.
func LoadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := fixturesFS.ReadFile("fixtures/" + name)
	require.NoError(t, err, "failed to load fixture: %s", name)

	return data
}

// LoadFixtureString loads a fixture as a string.
func LoadFixtureString(t *testing.T, name string) string {
	t.Helper()
	return string(LoadFixture(t, name))
}
