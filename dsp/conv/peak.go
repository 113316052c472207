package conv

// FindPeak returns the index and value of the maximum of x. Ties resolve
// to the first occurrence because only a strictly greater value replaces
// the running maximum. NaN values are never selected unless x[0] is NaN.
// Returns (-1, 0) for an empty slice.
func FindPeak(x []float64) (index int, value float64) {
	if len(x) == 0 {
		return -1, 0
	}

	index = 0
	value = x[0]
	for i, v := range x {
		if v > value {
			index = i
			value = v
		}
	}
	return index, value
}
