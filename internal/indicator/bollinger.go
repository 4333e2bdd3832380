package indicator

import "math"

// BollingerSeries computes the Bollinger Bands for every day of the series:
// center is the simple moving average over the window, the upper and lower
// bands sit k standard deviations away. The population standard deviation is
// used (divisor N, not N-1). Entries are nil until the window is full.
func BollingerSeries(closes []float64, window int, k float64) (center, upper, lower []*float64) {
	n := len(closes)
	center = make([]*float64, n)
	upper = make([]*float64, n)
	lower = make([]*float64, n)
	if window <= 0 {
		return center, upper, lower
	}
	for i := window - 1; i < n; i++ {
		win := closes[i-window+1 : i+1]
		mean := 0.0
		for _, c := range win {
			mean += c
		}
		mean /= float64(window)

		variance := 0.0
		for _, c := range win {
			d := c - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(window))

		c := mean
		u := mean + k*sd
		l := mean - k*sd
		center[i], upper[i], lower[i] = &c, &u, &l
	}
	return center, upper, lower
}
