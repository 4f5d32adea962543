package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGPUConfig(t *testing.T) {
	config := DefaultGPUConfig()
	assert.False(t, config.UseGPU)
	assert.Equal(t, 0, config.DeviceID)
	assert.Equal(t, uint64(0), config.GPUMemLimit)
	assert.Equal(t, "kNextPowerOfTwo", config.ArenaExtendStrategy)
}

func TestConfigureSessionForGPUCPUOnly(t *testing.T) {
	// CPU-only configs return before touching the session options.
	require.NoError(t, ConfigureSessionForGPU(nil, DefaultGPUConfig()))
}

func TestSystemLibraryPathsPreferGPUBuild(t *testing.T) {
	gpuPaths := systemLibraryPaths(true)
	require.NotEmpty(t, gpuPaths)
	assert.Contains(t, gpuPaths[0], "gpu")

	cpuPaths := systemLibraryPaths(false)
	for _, p := range cpuPaths {
		assert.NotContains(t, p, "gpu")
	}
}

func TestLibraryName(t *testing.T) {
	name, err := libraryName()
	require.NoError(t, err)
	assert.NotEmpty(t, name)
	assert.Contains(t, name, "onnxruntime")
}
