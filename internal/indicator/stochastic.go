package indicator

// StochasticSeries computes the stochastic oscillator for every day of the
// series: %K = 100*(close-low)/(high-low) over the trailing kWindow closes,
// %D = simple moving average of %K over dWindow days. A flat window
// (high == low) yields %K = 50 instead of dividing by zero.
func StochasticSeries(closes []float64, kWindow, dWindow int) (k, d []*float64) {
	n := len(closes)
	k = make([]*float64, n)
	d = make([]*float64, n)
	if kWindow <= 0 || dWindow <= 0 {
		return k, d
	}

	for i := kWindow - 1; i < n; i++ {
		high, low := closes[i], closes[i]
		for _, c := range closes[i-kWindow+1 : i+1] {
			if c > high {
				high = c
			}
			if c < low {
				low = c
			}
		}
		var v float64
		if high == low {
			v = 50.0
		} else {
			v = 100.0 * (closes[i] - low) / (high - low)
		}
		k[i] = &v
	}

	// %D needs dWindow consecutive %K values.
	for i := kWindow - 1 + dWindow - 1; i < n; i++ {
		sum := 0.0
		for j := i - dWindow + 1; j <= i; j++ {
			sum += *k[j]
		}
		v := sum / float64(dWindow)
		d[i] = &v
	}
	return k, d
}
