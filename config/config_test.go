package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/i2cbridge/device"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "i2cbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
adapter: periph
bus: /dev/i2c-1
max_retries: 3
target:
  controller: 1
  port: 0
  mux: 2
  segment: 1
  address: 0x48
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "periph", cfg.Adapter)
	assert.Equal(t, "/dev/i2c-1", cfg.Bus)
	assert.Equal(t, 3, cfg.MaxRetries)

	target := cfg.DeviceTarget()
	assert.Equal(t, device.Controller(1), target.Controller)
	assert.Equal(t, device.PortIndex(0), target.Port)
	require.NotNil(t, target.Segment)
	assert.Equal(t, device.Mux(2), target.Segment.Mux)
	assert.Equal(t, device.Segment(1), target.Segment.Segment)
	assert.Equal(t, byte(0x48), target.Address)
}

func TestLoad_NoMux(t *testing.T) {
	path := writeConfig(t, `
adapter: mcp2221
target:
  controller: 1
  port: 0
  address: 0x4D
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.DeviceTarget().Segment)
}

func TestLoad_UnknownAdapter(t *testing.T) {
	path := writeConfig(t, `
adapter: spi
target:
  address: 0x48
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter")
}

func TestLoad_MuxWithoutSegment(t *testing.T) {
	path := writeConfig(t, `
adapter: mcp2221
target:
  mux: 2
  address: 0x48
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mux and segment must be set together")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
