package timeline

// TimeToX maps a time (epoch ms) onto an x offset within a viewport of
// width pixels showing [start, end]. A degenerate range maps everything to 0.
func TimeToX(t, start, end, width float64) float64 {
	if end <= start {
		return 0
	}
	ratio := (t - start) / (end - start)
	return ratio * width
}

// XToTime is the inverse of TimeToX. A non-positive width maps every x to start.
func XToTime(x, start, end, width float64) float64 {
	if width <= 0 {
		return start
	}
	ratio := x / width
	return start + ratio*(end-start)
}
