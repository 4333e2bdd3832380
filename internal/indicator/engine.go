package indicator

import (
	"fmt"

	"BoursePulse/internal/model"
)

// Engine derives one IndicatorRecord per trading day from an ordered price
// series. It carries no mutable state: recomputing over an unchanged series
// reproduces identical records, which makes persistence safe to re-run.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given parameters.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute derives indicator records for every day of the series. The input
// must be ordered ascending by trade date with at most one record per day;
// the record for day D depends only on prices up to and including D.
func (e *Engine) Compute(prices []model.PriceRecord) ([]model.IndicatorRecord, error) {
	for i := 1; i < len(prices); i++ {
		if !prices[i-1].TradeDate.Before(prices[i].TradeDate) {
			return nil, fmt.Errorf("price series not strictly ascending at %s",
				prices[i].TradeDate.Format("2006-01-02"))
		}
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Price
	}

	w := e.cfg.MAWindows
	ma5 := SMASeries(closes, w[0])
	ma10 := SMASeries(closes, w[1])
	ma20 := SMASeries(closes, w[2])
	ma50 := SMASeries(closes, w[3])

	center, upper, lower := BollingerSeries(closes, e.cfg.BollingerWindow, e.cfg.BollingerK)
	line, signal, hist := MACDSeries(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	rsi := RSISeries(closes, e.cfg.RSIPeriod)
	stochK, stochD := StochasticSeries(closes, e.cfg.StochasticK, e.cfg.StochasticD)

	records := make([]model.IndicatorRecord, len(prices))
	for i := range prices {
		var prevHist *float64
		if i > 0 {
			prevHist = hist[i-1]
		}

		rec := model.IndicatorRecord{
			TradeDate:       prices[i].TradeDate,
			MA5:             ma5[i],
			MA10:            ma10[i],
			MA20:            ma20[i],
			MA50:            ma50[i],
			BollingerCenter: center[i],
			BollingerUpper:  upper[i],
			BollingerLower:  lower[i],
			MACDLine:        line[i],
			SignalLine:      signal[i],
			Histogram:       hist[i],
			RSI:             rsi[i],
			StochasticK:     stochK[i],
			StochasticD:     stochD[i],
		}

		rec.MADecision = ClassifyMA(ma5[i], ma10[i], ma20[i], ma50[i])
		rec.BollingerDecision = ClassifyBollinger(closes[i], upper[i], lower[i])
		rec.MACDDecision = ClassifyMACD(hist[i], prevHist)
		rec.RSIDecision = ClassifyRSI(rsi[i], e.cfg.RSIOverbought, e.cfg.RSIOversold)
		rec.StochasticDecision = ClassifyStochastic(stochK[i], e.cfg.StochasticOverbought, e.cfg.StochasticOversold)
		rec.Composite = MajorityVote(rec.MADecision, rec.BollingerDecision,
			rec.MACDDecision, rec.RSIDecision, rec.StochasticDecision)

		records[i] = rec
	}
	return records, nil
}
