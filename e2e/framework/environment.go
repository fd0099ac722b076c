//go:build e2e

// Package framework provides the E2E test infrastructure for hostprep.
package framework

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// Environment is an isolated working directory and HOME for one test.
type Environment struct {
	t          *testing.T
	rootDir    string
	workDir    string
	homeDir    string
	binaryPath string
}

var (
	buildOnce  sync.Once
	binaryPath string
	buildErr   error
)

// findProjectRoot locates the project root directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary builds the hostprep binary once per test run.
func buildBinary(t *testing.T) (string, error) {
	buildOnce.Do(func() {
		root, err := findProjectRoot()
		if err != nil {
			buildErr = err
			return
		}

		binaryPath = filepath.Join(os.TempDir(), "hostprep-e2e-test")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/hostprep")
		cmd.Dir = root

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			buildErr = err
			t.Logf("Build stderr: %s", stderr.String())
		}
	})

	return binaryPath, buildErr
}

// NewEnvironment creates a new isolated test environment.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	binary, err := buildBinary(t)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	rootDir := t.TempDir()
	env := &Environment{
		t:          t,
		rootDir:    rootDir,
		workDir:    filepath.Join(rootDir, "work"),
		homeDir:    filepath.Join(rootDir, "home"),
		binaryPath: binary,
	}

	for _, dir := range []string{env.workDir, env.homeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	return env
}

// WorkDir is where commands run and where hostprep.yaml is looked up.
func (e *Environment) WorkDir() string {
	return e.workDir
}

// HomeDir returns the path to the simulated home directory.
func (e *Environment) HomeDir() string {
	return e.homeDir
}

// BinaryPath returns the path to the built binary.
func (e *Environment) BinaryPath() string {
	return e.binaryPath
}

// WriteConfig writes hostprep.yaml into the working directory.
func (e *Environment) WriteConfig(content string) string {
	e.t.Helper()
	return e.WriteFile("hostprep.yaml", content)
}

// WriteFile writes a file relative to the working directory.
func (e *Environment) WriteFile(name, content string) string {
	e.t.Helper()

	path := filepath.Join(e.workDir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		e.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
