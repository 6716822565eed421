package bench

import "math"

// MeanStddev returns the arithmetic mean and the sample standard deviation
// (n-1 denominator). Both are 0 for an empty slice; stddev is 0 when n < 2.
func MeanStddev(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	if n < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	return mean, math.Sqrt(sq / float64(n-1))
}
