package indicator

// SMASeries computes the trailing simple moving average over the given window
// for every day of the series. Entries are nil until the window is full.
func SMASeries(closes []float64, window int) []*float64 {
	out := make([]*float64, len(closes))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			v := sum / float64(window)
			out[i] = &v
		}
	}
	return out
}
