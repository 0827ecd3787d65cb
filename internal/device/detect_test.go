package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKnownGPUs(t *testing.T) {
	tests := []struct {
		name string
		arch string
	}{
		{"NVIDIA GeForce RTX 4090", "8.9"},
		{"NVIDIA GeForce RTX 4080 SUPER", "8.9"},
		{"NVIDIA L40S", "8.9"},
		{"NVIDIA L4", "8.9"},
		{"NVIDIA A100-SXM4-80GB", "8.0"},
		{"NVIDIA A30", "8.0"},
		{"NVIDIA A10G", "8.0"},
		{"NVIDIA H100 PCIe", "9.0"},
		{"NVIDIA H100 NVL", "9.0"},
		{"NVIDIA H200", "9.0"},
		{"NVIDIA B100", "10.0"},
		{"NVIDIA B200", "10.0"},
		{"NVIDIA GB200 NVL72", "10.0"},
		{"Tesla V100-SXM2-16GB", "7.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := Detect(tt.name+"\n", "")
			require.Equal(t, SourceDetected, det.Source)
			assert.Equal(t, []string{tt.arch}, det.Arches)
			assert.Equal(t, tt.name, det.GPUName)
		})
	}
}

func TestDetectUnrecognizedGPUFallsBack(t *testing.T) {
	det := Detect("NVIDIA GeForce GTX 1080\n", "")

	assert.Equal(t, SourceUnrecognized, det.Source)
	assert.Equal(t, "NVIDIA GeForce GTX 1080", det.GPUName)
	assert.Equal(t, []string{"8.0", "8.9", "9.0", "10.0"}, det.Arches)
}

func TestDetectNoQueryOutput(t *testing.T) {
	for _, output := range []string{"", "\n", "   \n\n"} {
		det := Detect(output, "")
		assert.Equal(t, SourceDefault, det.Source)
		assert.Empty(t, det.GPUName)
		assert.Equal(t, []string{"8.0", "8.9", "9.0", "10.0"}, det.Arches)
	}
}

func TestDetectOnlyFirstDeviceConsidered(t *testing.T) {
	// Multi-GPU hosts report one name per line; only the first counts.
	det := Detect("NVIDIA H100 PCIe\nNVIDIA A100-SXM4-80GB\n", "")

	require.Equal(t, SourceDetected, det.Source)
	assert.Equal(t, []string{"9.0"}, det.Arches)
}

func TestDetectOverrideWins(t *testing.T) {
	// The override takes precedence even when a GPU is detectable.
	det := Detect("NVIDIA H100 PCIe\n", "9.0;10.0")

	assert.Equal(t, SourceOverride, det.Source)
	assert.Equal(t, []string{"9.0", "10.0"}, det.Arches)
	assert.Empty(t, det.GPUName)
}

func TestDetectPatternOrderIsStable(t *testing.T) {
	// "RTX 40" must capture RTX 4090 names before the bare "4090" entry;
	// both map to the same architecture, so the observable contract is
	// simply that the result stays 8.9 whatever entry fires first.
	det := Detect("NVIDIA GeForce RTX 4090", "")
	assert.Equal(t, []string{"8.9"}, det.Arches)

	// "L40" precedes "L4" so an L40 is not misread as an L4 (same arch
	// today, but the order is load-bearing if the table ever diverges).
	det = Detect("NVIDIA L40", "")
	assert.Equal(t, []string{"8.9"}, det.Arches)
}

func TestSplitArchList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"9.0", []string{"9.0"}},
		{"9.0;10.0", []string{"9.0", "10.0"}},
		{"8.0, 9.0", []string{"8.0", "9.0"}},
		{"8.0;;9.0,", []string{"8.0", "9.0"}},
		{" ; , ", []string{"8.0", "8.9", "9.0", "10.0"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitArchList(tt.in), "input %q", tt.in)
	}
}

func TestDefaultArchesReturnsCopy(t *testing.T) {
	a := DefaultArches()
	a[0] = "0.0"

	assert.Equal(t, []string{"8.0", "8.9", "9.0", "10.0"}, DefaultArches())
}
