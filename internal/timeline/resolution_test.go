package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionFor_Thresholds(t *testing.T) {
	tests := []struct {
		duration int64
		expected Resolution
	}{
		{6 * HourMs, Hour},
		{3 * DayMs, Hour},
		{3*DayMs + 1, Day},
		{120 * DayMs, Day},
		{120*DayMs + 1, Month},
		{6 * YearMs, Month},
		{6*YearMs + 1, Year},
		{50 * YearMs, Year},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, ResolutionFor(tc.duration), "duration %d", tc.duration)
	}
}

func TestResolution_Step(t *testing.T) {
	assert.Equal(t, int64(3_600_000), Hour.Step())
	assert.Equal(t, int64(86_400_000), Day.Step())
	assert.Equal(t, 30*int64(86_400_000), Month.Step())
	assert.Equal(t, 365*int64(86_400_000), Year.Step())
}

func TestResolution_FormatIsUTCPinned(t *testing.T) {
	ms := time.Date(2026, time.January, 6, 15, 4, 0, 0, time.UTC).UnixMilli()

	assert.Equal(t, "2026", Year.Format(ms))
	assert.Equal(t, "Jan 2026", Month.Format(ms))
	assert.Equal(t, "Jan 6", Day.Format(ms))
	assert.Equal(t, "15:04", Hour.Format(ms))

	// Host timezone must not leak into labels.
	orig := time.Local
	time.Local = time.FixedZone("UTC+9", 9*60*60)
	t.Cleanup(func() { time.Local = orig })
	assert.Equal(t, "15:04", Hour.Format(ms))
	assert.Equal(t, "Jan 6", Day.Format(ms))
}

func TestResolution_FormatMidnight24h(t *testing.T) {
	ms := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "00:00", Hour.Format(ms))
}

func TestParseResolution_Roundtrip(t *testing.T) {
	for _, r := range []Resolution{Hour, Day, Month, Year} {
		got, err := ParseResolution(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseResolution("week")
	assert.Error(t, err)
}
