package testutil

import (
	"gopkg.in/yaml.v3"
)

// TestConfig mirrors the hostprep.yaml layout for building test files.
type TestConfig struct {
	Host    TestHost    `yaml:"host,omitempty"`
	Runbook TestRunbook `yaml:"runbook,omitempty"`
	Logging TestLogging `yaml:"logging,omitempty"`
}

// TestHost is the host section.
type TestHost struct {
	Target string `yaml:"target,omitempty"`
	User   string `yaml:"user,omitempty"`
	Port   int    `yaml:"port,omitempty"`
}

// TestRunbook is the runbook section. Empty lists are omitted so defaults
// apply.
type TestRunbook struct {
	PackageManager string      `yaml:"package_manager,omitempty"`
	SystemPackages []string    `yaml:"system_packages,omitempty"`
	Python         *TestPython `yaml:"python,omitempty"`
	Venv           string      `yaml:"venv,omitempty"`
	PipPackages    []string    `yaml:"pip_packages,omitempty"`
	VerifyImports  []string    `yaml:"verify_imports,omitempty"`
}

// TestPython is the runbook.python section.
type TestPython struct {
	Version     string `yaml:"version,omitempty"`
	ManagerRoot string `yaml:"manager_root,omitempty"`
}

// TestLogging is the logging section.
type TestLogging struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ConfigBuilder builds hostprep.yaml documents.
type ConfigBuilder struct {
	config TestConfig
}

// NewConfigBuilder creates a builder for a config that only logs errors.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: TestConfig{Logging: TestLogging{Level: "error"}},
	}
}

// WithTarget sets host.target.
func (b *ConfigBuilder) WithTarget(target string) *ConfigBuilder {
	b.config.Host.Target = target
	return b
}

// WithPackageManager sets runbook.package_manager.
func (b *ConfigBuilder) WithPackageManager(pm string) *ConfigBuilder {
	b.config.Runbook.PackageManager = pm
	return b
}

// WithSystemPackages sets runbook.system_packages.
func (b *ConfigBuilder) WithSystemPackages(pkgs ...string) *ConfigBuilder {
	b.config.Runbook.SystemPackages = pkgs
	return b
}

// WithPython sets runbook.python.version.
func (b *ConfigBuilder) WithPython(version string) *ConfigBuilder {
	if b.config.Runbook.Python == nil {
		b.config.Runbook.Python = &TestPython{}
	}
	b.config.Runbook.Python.Version = version
	return b
}

// WithPipPackages sets runbook.pip_packages.
func (b *ConfigBuilder) WithPipPackages(pkgs ...string) *ConfigBuilder {
	b.config.Runbook.PipPackages = pkgs
	return b
}

// WithVerifyImports sets runbook.verify_imports.
func (b *ConfigBuilder) WithVerifyImports(modules ...string) *ConfigBuilder {
	b.config.Runbook.VerifyImports = modules
	return b
}

// WithLogLevel sets logging.level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.config.Logging.Level = level
	return b
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() TestConfig {
	return b.config
}

// ToYAML renders the config as YAML.
func (b *ConfigBuilder) ToYAML() string {
	data, err := yaml.Marshal(b.config)
	if err != nil {
		panic(err)
	}
	return string(data)
}
