package memory

import (
	"sort"
	"strings"
)

// Density thresholds on the caller-provided density signal.
const (
	densityMediumSignal = 40
	densityHighSignal   = 80
)

// DensityStride returns how many memories share one displayed slot.
func DensityStride(signal int) int {
	switch {
	case signal >= densityHighSignal:
		return 3
	case signal >= densityMediumSignal:
		return 2
	default:
		return 1
	}
}

// Thin deterministically subsamples memories for display. Every stride-th
// memory in (anchor time, id) order is kept, plus selectedID when present.
// The result keeps the input's relative order. With stride 1 the input is
// returned unchanged.
func Thin(memories []Memory, selectedID string, signal int) []Memory {
	stride := DensityStride(signal)
	if stride == 1 {
		return memories
	}

	sorted := make([]Memory, len(memories))
	copy(sorted, memories)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Anchor.TimeMs(), sorted[j].Anchor.TimeMs()
		if a != b {
			return a < b
		}
		return strings.Compare(sorted[i].ID, sorted[j].ID) < 0
	})

	keep := make(map[string]struct{}, len(sorted)/stride+1)
	for i, m := range sorted {
		if i%stride == 0 {
			keep[m.ID] = struct{}{}
		}
	}
	if selectedID != "" {
		keep[selectedID] = struct{}{}
	}

	out := make([]Memory, 0, len(keep))
	for _, m := range memories {
		if _, ok := keep[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out
}
