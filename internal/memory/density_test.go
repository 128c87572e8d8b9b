package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeMemories builds n point memories in reverse id order, all an hour apart,
// so the input order differs from the sorted order.
func makeMemories(n int) []Memory {
	out := make([]Memory, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, Memory{
			ID:            fmt.Sprintf("m-%03d", i),
			Anchor:        Point(int64(i) * 3_600_000),
			VerticalRatio: DefaultVerticalRatio,
		})
	}
	return out
}

func ids(ms []Memory) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestDensityStride(t *testing.T) {
	assert.Equal(t, 1, DensityStride(0))
	assert.Equal(t, 1, DensityStride(39))
	assert.Equal(t, 2, DensityStride(40))
	assert.Equal(t, 2, DensityStride(79))
	assert.Equal(t, 3, DensityStride(80))
	assert.Equal(t, 3, DensityStride(500))
}

func TestThin_LowDensityReturnsInput(t *testing.T) {
	in := makeMemories(10)
	out := Thin(in, "", len(in))
	assert.Equal(t, in, out)
}

func TestThin_KeepsEveryStrideInTimeOrder(t *testing.T) {
	in := makeMemories(45)
	out := Thin(in, "", len(in))

	// Stride 2 over time order keeps the even-indexed ids.
	require.Len(t, out, 23)
	for _, m := range out {
		var n int
		_, err := fmt.Sscanf(m.ID, "m-%03d", &n)
		require.NoError(t, err)
		assert.Zero(t, n%2, "unexpected id %s", m.ID)
	}
}

func TestThin_PreservesInputOrder(t *testing.T) {
	in := makeMemories(90)
	out := Thin(in, "", len(in))

	pos := make(map[string]int)
	for i, m := range in {
		pos[m.ID] = i
	}
	for i := 1; i < len(out); i++ {
		assert.Less(t, pos[out[i-1].ID], pos[out[i].ID])
	}
}

func TestThin_AlwaysKeepsSelected(t *testing.T) {
	in := makeMemories(90)
	for _, selected := range []string{"m-001", "m-044", "m-089"} {
		out := Thin(in, selected, len(in))
		assert.Contains(t, ids(out), selected)
	}
}

func TestThin_UnknownSelectedIsIgnored(t *testing.T) {
	in := makeMemories(50)
	assert.Equal(t, ids(Thin(in, "", 50)), ids(Thin(in, "missing", 50)))
}

func TestThin_Deterministic(t *testing.T) {
	in := makeMemories(120)
	first := ids(Thin(in, "m-007", len(in)))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ids(Thin(in, "m-007", len(in))))
	}
}

func TestThin_TiesBrokenByID(t *testing.T) {
	in := []Memory{
		{ID: "c", Anchor: Point(0)},
		{ID: "a", Anchor: Point(0)},
		{ID: "b", Anchor: Point(0)},
		{ID: "d", Anchor: Range(0, 10)},
	}
	out := Thin(in, "", 40)
	// Sorted: a, b, c, d -> stride 2 keeps a and c.
	assert.Equal(t, []string{"c", "a"}, ids(out))
}

func TestThin_DoesNotMutateInput(t *testing.T) {
	in := makeMemories(60)
	before := ids(in)
	_ = Thin(in, "", 100)
	assert.Equal(t, before, ids(in))
}
