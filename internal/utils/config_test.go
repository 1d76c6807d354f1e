package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiafarm/agent/pkg/file"
)

// TestLoadConfig_FullFile tests decoding a complete configuration file.
func TestLoadConfig_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	raw := `
agent:
  log_level: debug
supervisor:
  adb_path: /usr/bin/adb
  interval_ms: 5000
  device_list: 127.0.0.1:5555/127.0.0.1:5570
  max_workers: 4
status:
  enabled: true
  broker: tls://broker.local:8883
  client_id: uiafarm
  topic: farm/status
  qos: 1
  interval: 15
metrics:
  enabled: true
  interval: 30
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	config, err := LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Agent.LogLevel)
	assert.Equal(t, "/usr/bin/adb", config.Supervisor.ADBPath)
	assert.Equal(t, 5000, config.Supervisor.IntervalMS)
	assert.Equal(t, "127.0.0.1:5555/127.0.0.1:5570", config.Supervisor.DeviceList)
	assert.Equal(t, 4, config.Supervisor.MaxWorkers)
	assert.True(t, config.Status.Enabled)
	assert.Equal(t, "farm/status", config.Status.Topic)
	assert.Equal(t, 15, config.Status.Interval)
	assert.True(t, config.Metrics.Enabled)
}

// TestLoadConfig_MinimalFile tests that omitted sections default to zero
// values with the optional services disabled.
func TestLoadConfig_MinimalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	raw := `
supervisor:
  adb_path: adb
  interval_ms: 1000
  device_list: 127.0.0.1:5555
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	config, err := LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, 0, config.Supervisor.MaxWorkers)
	assert.False(t, config.Status.Enabled)
	assert.False(t, config.Metrics.Enabled)
}

// TestLoadConfig_MissingFile tests the error path for a nonexistent file.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), file.NewFileService())
	assert.Error(t, err)
}
