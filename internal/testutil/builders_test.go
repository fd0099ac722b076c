package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigBuilder_Defaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfigBuilder().Build()

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Empty(t, cfg.Host.Target)
	assert.Nil(t, cfg.Runbook.Python)
}

func TestConfigBuilder_ToYAML(t *testing.T) {
	t.Parallel()

	doc := NewConfigBuilder().
		WithTarget("deploy@vm-1").
		WithPackageManager("dnf").
		WithPython("3.11").
		WithPipPackages("requests").
		WithVerifyImports("requests").
		WithLogLevel("debug").
		ToYAML()

	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(doc), &parsed))

	host := parsed["host"].(map[string]interface{})
	assert.Equal(t, "deploy@vm-1", host["target"])

	runbook := parsed["runbook"].(map[string]interface{})
	assert.Equal(t, "dnf", runbook["package_manager"])
	assert.Equal(t, []interface{}{"requests"}, runbook["pip_packages"])
	assert.Equal(t, "3.11", runbook["python"].(map[string]interface{})["version"])
	assert.NotContains(t, runbook, "system_packages")

	assert.Equal(t, "debug", parsed["logging"].(map[string]interface{})["level"])
}
