// Package platform detects what the target host runs, so the runbook can
// pick the right package manager.
package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"gopkg.in/ini.v1"
)

// Family groups distributions that share a package manager.
type Family string

const (
	// FamilyDebian covers Debian, Ubuntu and derivatives (apt).
	FamilyDebian Family = "debian"
	// FamilyRHEL covers Fedora, RHEL, CentOS, Rocky and Alma (dnf).
	FamilyRHEL Family = "rhel"
	// FamilyUnknown is any distribution hostprep has no recipe for.
	FamilyUnknown Family = "unknown"
)

// Fact keys recorded on the host.
const (
	FactOSID           = "os.id"
	FactOSVersion      = "os.version_id"
	FactOSName         = "os.pretty_name"
	FactArch           = "arch"
	FactFamily         = "os.family"
	FactPackageManager = "package_manager"
)

// osReleaseCommand prints os-release from either standard location.
const osReleaseCommand = "cat /etc/os-release 2>/dev/null || cat /usr/lib/os-release"

// Facts describes the target's operating system.
type Facts struct {
	ID         string
	IDLike     []string
	VersionID  string
	PrettyName string
	Arch       string
}

// ParseOSRelease parses the contents of an os-release file.
func ParseOSRelease(data []byte) (Facts, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return Facts{}, fmt.Errorf("failed to parse os-release: %w", err)
	}

	section := cfg.Section(ini.DefaultSection)
	f := Facts{
		ID:         strings.ToLower(unquote(section.Key("ID").String())),
		VersionID:  unquote(section.Key("VERSION_ID").String()),
		PrettyName: unquote(section.Key("PRETTY_NAME").String()),
	}
	if like := unquote(section.Key("ID_LIKE").String()); like != "" {
		f.IDLike = strings.Fields(strings.ToLower(like))
	}
	if f.ID == "" {
		return Facts{}, fmt.Errorf("os-release has no ID field")
	}
	return f, nil
}

// unquote strips the shell-style quotes os-release values may carry.
func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// Detect reads os-release and architecture from the connected host and
// records them as host facts.
func Detect(ctx context.Context, conn transport.Connection) (Facts, error) {
	result, err := conn.Run(ctx, osReleaseCommand)
	if err != nil {
		return Facts{}, fmt.Errorf("failed to read os-release: %w", err)
	}
	if !result.Success() {
		return Facts{}, &transport.ExitError{Command: osReleaseCommand, Result: result}
	}

	facts, err := ParseOSRelease(result.Stdout)
	if err != nil {
		return Facts{}, err
	}

	if arch, err := conn.Run(ctx, "uname -m"); err == nil && arch.Success() {
		facts.Arch = strings.TrimSpace(string(arch.Stdout))
	}

	facts.Record(conn.Host())
	return facts, nil
}

// Family classifies the distribution.
func (f Facts) Family() Family {
	for _, id := range append([]string{f.ID}, f.IDLike...) {
		switch id {
		case "debian", "ubuntu":
			return FamilyDebian
		case "rhel", "fedora", "centos", "rocky", "almalinux":
			return FamilyRHEL
		}
	}
	return FamilyUnknown
}

// PackageManager returns "apt", "dnf" or "" for unsupported systems.
func (f Facts) PackageManager() string {
	switch f.Family() {
	case FamilyDebian:
		return "apt"
	case FamilyRHEL:
		return "dnf"
	case FamilyUnknown:
		return ""
	}
	return ""
}

// String returns a short description such as "Ubuntu 22.04.3 LTS (x86_64)".
func (f Facts) String() string {
	name := f.PrettyName
	if name == "" {
		name = strings.TrimSpace(f.ID + " " + f.VersionID)
	}
	if f.Arch != "" {
		return fmt.Sprintf("%s (%s)", name, f.Arch)
	}
	return name
}

// Record stores the facts on the host.
func (f Facts) Record(h *host.Host) {
	h.SetFact(FactOSID, f.ID)
	h.SetFact(FactOSVersion, f.VersionID)
	h.SetFact(FactOSName, f.PrettyName)
	h.SetFact(FactFamily, string(f.Family()))
	h.SetFact(FactPackageManager, f.PackageManager())
	if f.Arch != "" {
		h.SetFact(FactArch, f.Arch)
	}
}
