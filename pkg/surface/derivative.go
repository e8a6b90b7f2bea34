package surface

// FirstDifference returns the discrete first derivative of x (forward
// difference, last sample repeats the prior delta), scaled by the spacing
// between samples.
func FirstDifference(x []float64, spacing float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	out := make([]float64, len(x))
	for i := 0; i < len(x)-1; i++ {
		out[i] = (x[i+1] - x[i]) / spacing
	}
	if len(x) > 1 {
		out[len(x)-1] = out[len(x)-2]
	}
	return out
}

// SecondDifference returns the discrete second derivative of x, each
// differencing stage scaled by spacing.
func SecondDifference(x []float64, spacing float64) []float64 {
	return FirstDifference(FirstDifference(x, spacing), spacing)
}

// Resample linearly interpolates x (length n) onto an output of length m.
func Resample(x []float64, m int) []float64 {
	n := len(x)
	if n == 0 || m <= 0 {
		return nil
	}
	if n == 1 {
		out := make([]float64, m)
		for i := range out {
			out[i] = x[0]
		}
		return out
	}

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		pos := float64(i) * float64(n-1) / float64(m-1)
		lo := int(pos)
		if lo >= n-1 {
			out[i] = x[n-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = x[lo]*(1-frac) + x[lo+1]*frac
	}
	return out
}
