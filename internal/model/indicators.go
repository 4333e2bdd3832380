package model

import "time"

// IndicatorRecord holds all technical indicators derived for one trading day.
// A nil value means the trailing window behind that indicator is not yet full,
// so no value is emitted for it.
type IndicatorRecord struct {
	TradeDate time.Time

	MA5  *float64
	MA10 *float64
	MA20 *float64
	MA50 *float64

	BollingerCenter *float64
	BollingerUpper  *float64
	BollingerLower  *float64

	MACDLine   *float64
	SignalLine *float64
	Histogram  *float64

	RSI *float64

	StochasticK *float64
	StochasticD *float64

	MADecision         Decision
	BollingerDecision  Decision
	MACDDecision       Decision
	RSIDecision        Decision
	StochasticDecision Decision

	// Composite is the majority vote across the five indicator families.
	Composite Decision
}
