package indicator

import "BoursePulse/internal/model"

// ClassifyMA signals a buy when the shorter averages are stacked strictly
// above the longer ones (5>10>20>50), a sell on the fully inverted ordering,
// neutral otherwise.
func ClassifyMA(ma5, ma10, ma20, ma50 *float64) model.Decision {
	if ma5 == nil || ma10 == nil || ma20 == nil || ma50 == nil {
		return model.DecisionWait
	}
	switch {
	case *ma5 > *ma10 && *ma10 > *ma20 && *ma20 > *ma50:
		return model.DecisionBuy
	case *ma5 < *ma10 && *ma10 < *ma20 && *ma20 < *ma50:
		return model.DecisionSell
	default:
		return model.DecisionNeutral
	}
}

// ClassifyBollinger signals a sell when the price breaks above the upper
// band (overbought), a buy below the lower band (oversold).
func ClassifyBollinger(price float64, upper, lower *float64) model.Decision {
	if upper == nil || lower == nil {
		return model.DecisionWait
	}
	switch {
	case price > *upper:
		return model.DecisionSell
	case price < *lower:
		return model.DecisionBuy
	default:
		return model.DecisionNeutral
	}
}

// ClassifyMACD detects the MACD/signal crossing by comparing the histogram
// sign between consecutive days.
func ClassifyMACD(hist, prevHist *float64) model.Decision {
	if hist == nil || prevHist == nil {
		return model.DecisionWait
	}
	switch {
	case *prevHist <= 0 && *hist > 0:
		return model.DecisionBuy
	case *prevHist >= 0 && *hist < 0:
		return model.DecisionSell
	default:
		return model.DecisionNeutral
	}
}

// ClassifyRSI applies the overbought/oversold thresholds to the RSI value.
func ClassifyRSI(rsi *float64, overbought, oversold float64) model.Decision {
	if rsi == nil {
		return model.DecisionWait
	}
	switch {
	case *rsi > overbought:
		return model.DecisionSell
	case *rsi < oversold:
		return model.DecisionBuy
	default:
		return model.DecisionNeutral
	}
}

// ClassifyStochastic applies the overbought/oversold thresholds to %K.
func ClassifyStochastic(k *float64, overbought, oversold float64) model.Decision {
	if k == nil {
		return model.DecisionWait
	}
	switch {
	case *k > overbought:
		return model.DecisionSell
	case *k < oversold:
		return model.DecisionBuy
	default:
		return model.DecisionNeutral
	}
}

// MajorityVote aggregates the family decisions into one composite daily
// signal: the side with strictly more votes wins, ties resolve to neutral.
// WAIT decisions carry no vote.
func MajorityVote(decisions ...model.Decision) model.Decision {
	var buys, sells int
	for _, d := range decisions {
		switch d {
		case model.DecisionBuy:
			buys++
		case model.DecisionSell:
			sells++
		}
	}
	switch {
	case buys > sells:
		return model.DecisionBuy
	case sells > buys:
		return model.DecisionSell
	default:
		return model.DecisionNeutral
	}
}
