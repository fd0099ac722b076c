// Package validation checks runbook inputs before they are interpolated into
// shell commands that run on the target host.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// Common validation errors.
var (
	ErrEmptyInput         = errors.New("input cannot be empty")
	ErrInvalidPackageName = errors.New("invalid package name")
	ErrInvalidPipPackage  = errors.New("invalid pip package name")
	ErrInvalidHostname    = errors.New("invalid hostname")
	ErrInvalidUser        = errors.New("invalid user name")
	ErrInvalidPath        = errors.New("invalid path")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrInvalidVersion     = errors.New("invalid python version")
	ErrInvalidModule      = errors.New("invalid python module name")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrCommandInjection   = errors.New("potential command injection detected")
)

var (
	// Examples: "git", "libssl-dev", "python3.11", "g++"
	packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// Examples: "requests", "google-cloud-storage==1.36.1", "numpy~=1.24.0"
	pipPackageRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*(\[[a-zA-Z0-9,._-]+\])?([=<>!~]=?[a-zA-Z0-9._*-]+)?$`)

	// Examples: "vm-1.example.com", "10.0.0.4"
	hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

	// Examples: "ubuntu", "svc_runner"
	userRegex = regexp.MustCompile(`^[a-z_][a-z0-9_.-]{0,31}$`)

	// Absolute or home-relative, no spaces or shell syntax.
	remotePathRegex = regexp.MustCompile(`^(~|/)[a-zA-Z0-9._/~-]*$`)

	// Examples: "3.8.7", "3.11"
	pythonVersionRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`)

	// Examples: "google.cloud.storage", "numpy"
	moduleRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

	// Installer script URLs.
	urlRegex = regexp.MustCompile(`^https://[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\", "'", "\""}
)

// ValidatePackageName validates an OS package name for apt or dnf.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}
	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}
	return nil
}

// ValidatePipPackage validates a pip requirement with optional extras and
// version specifier.
func ValidatePipPackage(pkg string) error {
	if pkg == "" {
		return ErrEmptyInput
	}
	if len(pkg) > 256 {
		return fmt.Errorf("%w: package name too long", ErrInvalidPipPackage)
	}
	// Version specifiers legitimately use < and >.
	if containsShellMeta(strings.NewReplacer("<", "", ">", "").Replace(pkg)) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, pkg)
	}
	if !pipPackageRegex.MatchString(pkg) {
		return fmt.Errorf("%w: %q is not a valid pip requirement", ErrInvalidPipPackage, pkg)
	}
	return nil
}

// PipDistribution strips extras and version specifiers: "a[b]==1" -> "a".
func PipDistribution(pkg string) string {
	if i := strings.IndexAny(pkg, "[=<>!~"); i >= 0 {
		return pkg[:i]
	}
	return pkg
}

// ValidateHostname validates an SSH hostname or IP address.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return ErrEmptyInput
	}
	if len(hostname) > 253 {
		return fmt.Errorf("%w: hostname too long", ErrInvalidHostname)
	}
	if containsShellMeta(hostname) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, hostname)
	}
	if !hostnameRegex.MatchString(hostname) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidHostname, hostname)
	}
	return nil
}

// ValidateUser validates a POSIX login name.
func ValidateUser(user string) error {
	if user == "" {
		return ErrEmptyInput
	}
	if !userRegex.MatchString(user) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return nil
}

// ValidateRemotePath validates a path that will be used on the target host.
// Only absolute paths and paths under ~ are accepted.
func ValidateRemotePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}
	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}
	if containsShellMeta(path) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, path)
	}
	if !remotePathRegex.MatchString(path) {
		return fmt.Errorf("%w: %q must be absolute or start with ~/ and contain no spaces", ErrInvalidPath, path)
	}
	if strings.HasPrefix(path, "~") && path != "~" && !strings.HasPrefix(path, "~/") {
		return fmt.Errorf("%w: %q: only the current user's home (~/) is supported", ErrInvalidPath, path)
	}
	return nil
}

// ValidatePythonVersion validates an interpreter version such as "3.8.7".
func ValidatePythonVersion(version string) error {
	if version == "" {
		return ErrEmptyInput
	}
	if !pythonVersionRegex.MatchString(version) || !semver.IsValid(CanonicalVersion(version)) {
		return fmt.Errorf("%w: %q (expected MAJOR.MINOR[.PATCH])", ErrInvalidVersion, version)
	}
	return nil
}

// CanonicalVersion turns "3.8.7" into the "v3.8.7" form x/mod/semver expects.
func CanonicalVersion(version string) string {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "Python ")
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// SameVersion reports whether two interpreter versions are semver-equal.
// "3.8" matches any 3.8.x.
func SameVersion(want, have string) bool {
	w, h := CanonicalVersion(want), CanonicalVersion(have)
	if !semver.IsValid(w) || !semver.IsValid(h) {
		return false
	}
	if strings.Count(w, ".") == 1 {
		return semver.MajorMinor(w) == semver.MajorMinor(h)
	}
	return semver.Compare(w, h) == 0
}

// ValidatePythonModule validates a dotted import path.
func ValidatePythonModule(module string) error {
	if module == "" {
		return ErrEmptyInput
	}
	if !moduleRegex.MatchString(module) {
		return fmt.Errorf("%w: %q", ErrInvalidModule, module)
	}
	return nil
}

// ValidateURL validates an https URL for installer scripts.
func ValidateURL(url string) error {
	if url == "" {
		return ErrEmptyInput
	}
	if !urlRegex.MatchString(url) {
		return fmt.Errorf("%w: %q must be an https URL without query or shell syntax", ErrInvalidURL, url)
	}
	return nil
}

func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

func containsPathTraversal(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return strings.Contains(path, "%2e%2e") || strings.Contains(path, "%2E%2E")
}
