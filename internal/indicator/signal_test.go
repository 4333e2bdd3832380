package indicator

import (
	"testing"

	"BoursePulse/internal/model"
)

func f(v float64) *float64 { return &v }

func TestClassifyMA(t *testing.T) {
	tests := []struct {
		name                   string
		ma5, ma10, ma20, ma50  *float64
		want                   model.Decision
	}{
		{"bullish stack", f(110), f(108), f(105), f(100), model.DecisionBuy},
		{"bearish stack", f(100), f(105), f(108), f(110), model.DecisionSell},
		{"mixed ordering", f(110), f(105), f(108), f(100), model.DecisionNeutral},
		{"equal averages", f(100), f(100), f(100), f(100), model.DecisionNeutral},
		{"missing window", f(110), f(108), f(105), nil, model.DecisionWait},
	}
	for _, tt := range tests {
		if got := ClassifyMA(tt.ma5, tt.ma10, tt.ma20, tt.ma50); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyBollinger(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		upper, lower *float64
		want         model.Decision
	}{
		{"above upper", 112, f(110), f(90), model.DecisionSell},
		{"below lower", 88, f(110), f(90), model.DecisionBuy},
		{"within bands", 100, f(110), f(90), model.DecisionNeutral},
		{"on the band", 110, f(110), f(90), model.DecisionNeutral},
		{"bands absent", 100, nil, nil, model.DecisionWait},
	}
	for _, tt := range tests {
		if got := ClassifyBollinger(tt.price, tt.upper, tt.lower); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyMACD(t *testing.T) {
	tests := []struct {
		name           string
		hist, prevHist *float64
		want           model.Decision
	}{
		{"cross above", f(0.5), f(-0.2), model.DecisionBuy},
		{"cross below", f(-0.5), f(0.2), model.DecisionSell},
		{"stays positive", f(0.5), f(0.2), model.DecisionNeutral},
		{"stays negative", f(-0.5), f(-0.2), model.DecisionNeutral},
		{"from exactly zero up", f(0.1), f(0.0), model.DecisionBuy},
		{"no previous day", f(0.5), nil, model.DecisionWait},
	}
	for _, tt := range tests {
		if got := ClassifyMACD(tt.hist, tt.prevHist); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyRSIAndStochastic(t *testing.T) {
	if got := ClassifyRSI(f(75), 70, 30); got != model.DecisionSell {
		t.Errorf("RSI 75: got %s, want SELL", got)
	}
	if got := ClassifyRSI(f(25), 70, 30); got != model.DecisionBuy {
		t.Errorf("RSI 25: got %s, want BUY", got)
	}
	if got := ClassifyRSI(f(50), 70, 30); got != model.DecisionNeutral {
		t.Errorf("RSI 50: got %s, want NEUTRAL", got)
	}
	if got := ClassifyRSI(nil, 70, 30); got != model.DecisionWait {
		t.Errorf("missing RSI: got %s, want WAIT", got)
	}
	if got := ClassifyStochastic(f(85), 80, 20); got != model.DecisionSell {
		t.Errorf("%%K 85: got %s, want SELL", got)
	}
	if got := ClassifyStochastic(f(15), 80, 20); got != model.DecisionBuy {
		t.Errorf("%%K 15: got %s, want BUY", got)
	}
}

func TestMajorityVote(t *testing.T) {
	tests := []struct {
		name      string
		decisions []model.Decision
		want      model.Decision
	}{
		{
			"buy majority",
			[]model.Decision{model.DecisionBuy, model.DecisionBuy, model.DecisionSell, model.DecisionNeutral, model.DecisionNeutral},
			model.DecisionBuy,
		},
		{
			"sell majority",
			[]model.Decision{model.DecisionSell, model.DecisionSell, model.DecisionBuy, model.DecisionWait, model.DecisionNeutral},
			model.DecisionSell,
		},
		{
			"tie resolves to neutral",
			[]model.Decision{model.DecisionBuy, model.DecisionSell, model.DecisionBuy, model.DecisionSell, model.DecisionNeutral},
			model.DecisionNeutral,
		},
		{
			"all waiting",
			[]model.Decision{model.DecisionWait, model.DecisionWait, model.DecisionWait, model.DecisionWait, model.DecisionWait},
			model.DecisionNeutral,
		},
	}
	for _, tt := range tests {
		if got := MajorityVote(tt.decisions...); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}
