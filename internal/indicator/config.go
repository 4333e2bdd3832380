package indicator

// Config holds the windows and thresholds for every indicator family.
// Values are configuration, not constants, so a run can be tuned without
// touching the computation code.
type Config struct {
	MAWindows [4]int

	BollingerWindow int
	BollingerK      float64

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64

	StochasticK          int
	StochasticD          int
	StochasticOverbought float64
	StochasticOversold   float64
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		MAWindows:            [4]int{5, 10, 20, 50},
		BollingerWindow:      20,
		BollingerK:           2.0,
		MACDFast:             12,
		MACDSlow:             26,
		MACDSignal:           9,
		RSIPeriod:            14,
		RSIOverbought:        70,
		RSIOversold:          30,
		StochasticK:          14,
		StochasticD:          3,
		StochasticOverbought: 80,
		StochasticOversold:   20,
	}
}
