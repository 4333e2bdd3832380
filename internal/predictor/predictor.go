// Package predictor produces short-horizon price forecasts from historical
// closes by blending three simple estimators.
package predictor

import (
	"fmt"
	"math"
	"time"

	"BoursePulse/internal/model"
)

const (
	// Horizon is the number of future trading sessions forecast per company.
	Horizon = 20

	// MinHistory is the minimum number of closes required before any
	// forecast is attempted.
	MinHistory = 30

	regressionLookback = 100
	trendLookback      = 30

	weightRegression = 0.4
	weightTrend      = 0.3
	weightMomentum   = 0.3

	boundMargin = 0.05
)

// Forecast blends a linear regression over the recent closes, the 30-session
// trend and an exponentially weighted momentum estimate into one projected
// path, with a ±5% interval around each point. asOf is the date of the last
// observation; forecast dates skip weekends.
func Forecast(companyID int64, prices []model.PriceRecord, asOf time.Time) ([]model.Prediction, error) {
	if len(prices) < MinHistory {
		return nil, fmt.Errorf("need at least %d closes, have %d", MinHistory, len(prices))
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Price
	}

	slopeReg, last := regressionSlope(tail(closes, regressionLookback))
	slopeTrend := trendSlope(tail(closes, trendLookback))
	slopeMom := momentumSlope(closes)

	slope := weightRegression*slopeReg + weightTrend*slopeTrend + weightMomentum*slopeMom
	confidence := confidenceLabel(closes)

	preds := make([]model.Prediction, 0, Horizon)
	date := asOf
	for step := 1; step <= Horizon; step++ {
		date = nextTradingDay(date)
		price := last + slope*float64(step)
		if price < 0 {
			price = 0
		}
		preds = append(preds, model.Prediction{
			CompanyID:       companyID,
			PredictionDate:  date,
			PredictedPrice:  round2(price),
			LowerBound:      round2(price * (1 - boundMargin)),
			UpperBound:      round2(price * (1 + boundMargin)),
			ConfidenceLevel: confidence,
		})
	}
	return preds, nil
}

// regressionSlope fits closes by least squares over their index and returns
// the per-session slope along with the last observed close.
func regressionSlope(closes []float64) (slope, last float64) {
	n := float64(len(closes))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, closes[len(closes)-1]
	}
	return (n*sumXY - sumX*sumY) / den, closes[len(closes)-1]
}

// trendSlope is the average per-session move across the window.
func trendSlope(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	return (closes[len(closes)-1] - closes[0]) / float64(len(closes)-1)
}

// momentumSlope exponentially weights the most recent session moves, so a
// late acceleration dominates older drift.
func momentumSlope(closes []float64) float64 {
	const alpha = 0.2
	var drift float64
	seeded := false
	for i := 1; i < len(closes); i++ {
		move := closes[i] - closes[i-1]
		if !seeded {
			drift = move
			seeded = true
			continue
		}
		drift = alpha*move + (1-alpha)*drift
	}
	return drift
}

// confidenceLabel grades the forecast by recent volatility: the standard
// deviation of daily returns over the trend window, relative to the mean
// close.
func confidenceLabel(closes []float64) string {
	window := tail(closes, trendLookback)
	if len(window) < 2 {
		return "faible"
	}

	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		if window[i-1] != 0 {
			returns = append(returns, (window[i]-window[i-1])/window[i-1])
		}
	}
	if len(returns) == 0 {
		return "faible"
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	vol := math.Sqrt(variance / float64(len(returns)))

	switch {
	case vol < 0.01:
		return "haute"
	case vol < 0.03:
		return "moyenne"
	default:
		return "faible"
	}
}

// nextTradingDay advances one calendar day, then skips over weekends. Local
// exchange holidays are not modeled.
func nextTradingDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, 1)
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
