package indicator

// EMASeries computes the exponential moving average for every day of the
// series. EMA_t = price_t*alpha + EMA_{t-1}*(1-alpha) with alpha = 2/(N+1),
// seeded with the simple average of the first N values. Entries are nil
// before the seed day.
func EMASeries(values []float64, period int) []*float64 {
	out := make([]*float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	alpha := 2.0 / (float64(period) + 1.0)
	prev := seed
	s := seed
	out[period-1] = &s
	for i := period; i < len(values); i++ {
		prev = values[i]*alpha + prev*(1.0-alpha)
		v := prev
		out[i] = &v
	}
	return out
}

// MACDSeries computes the MACD line (fast EMA minus slow EMA), the signal
// line (EMA of the MACD line) and the histogram (line minus signal) for every
// day of the series. The signal EMA is seeded with the simple average of the
// first signalPeriod MACD values, so the histogram only appears once
// slow+signal-1 observations exist.
func MACDSeries(closes []float64, fast, slow, signalPeriod int) (line, signal, hist []*float64) {
	n := len(closes)
	line = make([]*float64, n)
	signal = make([]*float64, n)
	hist = make([]*float64, n)

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	start := -1
	var lineVals []float64
	for i := 0; i < n; i++ {
		if fastEMA[i] == nil || slowEMA[i] == nil {
			continue
		}
		if start < 0 {
			start = i
		}
		v := *fastEMA[i] - *slowEMA[i]
		line[i] = &v
		lineVals = append(lineVals, v)
	}
	if start < 0 {
		return line, signal, hist
	}

	sigVals := EMASeries(lineVals, signalPeriod)
	for j, sv := range sigVals {
		if sv == nil {
			continue
		}
		i := start + j
		s := *sv
		signal[i] = &s
		h := *line[i] - s
		hist[i] = &h
	}
	return line, signal, hist
}
