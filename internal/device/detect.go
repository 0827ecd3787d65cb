// Package device maps detected GPU hardware to CUDA build architectures.
//
// Detection is split in two: the runtime package runs the actual nvidia-smi
// query, and this package turns the query output into an ordered list of
// compute-capability identifiers for the image build. Keeping the mapping
// pure makes the pattern table directly testable.
package device

import "strings"

// Source records how an architecture list was determined.
type Source int

const (
	// SourceDefault means no GPU was visible and the fallback list is used.
	SourceDefault Source = iota

	// SourceDetected means the device name matched a known pattern.
	SourceDetected

	// SourceUnrecognized means a GPU was visible but its name matched no
	// pattern; the fallback list is used and callers should warn.
	SourceUnrecognized

	// SourceOverride means the caller supplied an explicit list.
	SourceOverride
)

// defaultArches covers the four supported hardware generations
// (Ampere, Ada, Hopper, Blackwell). Building for all of them keeps the
// image usable on any lab machine at the cost of build time.
var defaultArches = []string{"8.0", "8.9", "9.0", "10.0"}

// archPatterns maps device-name substrings to a compute capability.
//
// The table is evaluated front to back and the first match wins. The order
// follows the original detection chain and must not be rearranged: "RTX 40"
// deliberately captures RTX 4090 names before the bare "4090" entry is
// consulted, and "L40" must precede "L4".
var archPatterns = []struct {
	substr string
	arch   string
}{
	{"RTX 40", "8.9"},
	{"4090", "8.9"},
	{"L40", "8.9"},
	{"L4", "8.9"},
	{"A100", "8.0"},
	{"A30", "8.0"},
	{"A10", "8.0"},
	{"H100", "9.0"},
	{"H200", "9.0"},
	{"Blackwell", "10.0"},
	{"B100", "10.0"},
	{"B200", "10.0"},
	{"V100", "7.0"},
}

// Detection is the result of mapping hardware to build architectures.
type Detection struct {
	// Arches is the ordered list of compute capabilities to build for.
	Arches []string

	// GPUName is the raw device name reported by the query tool, empty
	// when no GPU was visible or an override was used.
	GPUName string

	// Source records how Arches was determined.
	Source Source
}

// Detect maps the output of the hardware query tool to a detection result.
//
// queryOutput is the raw output of
// `nvidia-smi --query-gpu=name --format=csv,noheader` and may be empty when
// the tool is unavailable. Only the first reported device is considered.
// A non-empty override always wins and is split on ';' or ','.
func Detect(queryOutput, override string) Detection {
	if override != "" {
		return Detection{
			Arches: SplitArchList(override),
			Source: SourceOverride,
		}
	}

	name := firstDeviceName(queryOutput)
	if name == "" {
		return Detection{Arches: DefaultArches(), Source: SourceDefault}
	}

	for _, p := range archPatterns {
		if strings.Contains(name, p.substr) {
			return Detection{
				Arches:  []string{p.arch},
				GPUName: name,
				Source:  SourceDetected,
			}
		}
	}

	return Detection{
		Arches:  DefaultArches(),
		GPUName: name,
		Source:  SourceUnrecognized,
	}
}

// DefaultArches returns a copy of the fallback architecture list.
func DefaultArches() []string {
	return append([]string(nil), defaultArches...)
}

// SplitArchList parses an explicit architecture list such as "9.0;10.0" or
// "8.0, 9.0". Empty elements are dropped; an input with no usable elements
// yields the default list.
func SplitArchList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})

	var arches []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			arches = append(arches, f)
		}
	}
	if len(arches) == 0 {
		return DefaultArches()
	}
	return arches
}

// firstDeviceName returns the first non-empty line of the query output.
func firstDeviceName(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
