package indicator

import (
	"math"
	"reflect"
	"testing"
	"time"

	"BoursePulse/internal/model"
)

func series(closes ...float64) []model.PriceRecord {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]model.PriceRecord, len(closes))
	for i, c := range closes {
		prices[i] = model.PriceRecord{TradeDate: base.AddDate(0, 0, i), Price: c}
	}
	return prices
}

func TestCompute_ShortSeriesEmitsNoValues(t *testing.T) {
	e := NewEngine(DefaultConfig())
	recs, err := e.Compute(series(100, 102, 101, 105))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	last := recs[3]
	for name, v := range map[string]*float64{
		"MA5":             last.MA5,
		"MA10":            last.MA10,
		"BollingerCenter": last.BollingerCenter,
		"MACDLine":        last.MACDLine,
		"RSI":             last.RSI,
		"StochasticK":     last.StochasticK,
	} {
		if v != nil {
			t.Errorf("%s should be absent for a 4-day series, got %v", name, *v)
		}
	}
	if last.MADecision != model.DecisionWait {
		t.Errorf("expected WAIT decision, got %s", last.MADecision)
	}
}

func TestCompute_MA5MatchesLiteralMean(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 107, 106, 110, 108, 112}
	e := NewEngine(DefaultConfig())
	recs, err := e.Compute(series(closes...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := recs[len(recs)-1]
	if last.MA5 == nil {
		t.Fatal("MA5 should be defined on day 10")
	}
	want := (107.0 + 106.0 + 110.0 + 108.0 + 112.0) / 5.0
	if *last.MA5 != want {
		t.Errorf("MA5 = %v, want %v", *last.MA5, want)
	}
	if last.MA10 == nil {
		t.Fatal("MA10 should be defined on day 10")
	}
	if last.MA50 != nil {
		t.Errorf("MA50 should be absent on day 10, got %v", *last.MA50)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i)*0.2
	}
	e := NewEngine(DefaultConfig())
	first, err := e.Compute(series(closes...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Compute(series(closes...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("recomputing over an unchanged series must yield identical records")
	}
}

func TestCompute_RejectsUnorderedSeries(t *testing.T) {
	prices := series(100, 101, 102)
	prices[2].TradeDate = prices[0].TradeDate
	e := NewEngine(DefaultConfig())
	if _, err := e.Compute(prices); err == nil {
		t.Error("expected error for non-ascending series")
	}
}

func TestRSISeries_AllGainsIsExactly100(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSISeries(closes, 14)
	if rsi[13] != nil {
		t.Error("RSI should be absent before period+1 observations")
	}
	if rsi[14] == nil {
		t.Fatal("RSI should be defined after 15 observations")
	}
	if *rsi[14] != 100.0 {
		t.Errorf("RSI = %v, want exactly 100", *rsi[14])
	}
}

func TestRSISeries_MixedSeriesInRange(t *testing.T) {
	closes := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.3, 46.1, 46.7, 46.5, 46.3, 46, 46.6, 46.2}
	rsi := RSISeries(closes, 14)
	last := rsi[len(rsi)-1]
	if last == nil {
		t.Fatal("RSI should be defined")
	}
	if *last <= 0 || *last >= 100 {
		t.Errorf("RSI out of range: %v", *last)
	}
}

func TestStochasticSeries_FlatWindowIsExactly50(t *testing.T) {
	closes := make([]float64, 14)
	for i := range closes {
		closes[i] = 250.0
	}
	k, d := StochasticSeries(closes, 14, 3)
	if k[13] == nil {
		t.Fatal("%K should be defined after 14 observations")
	}
	if *k[13] != 50.0 {
		t.Errorf("%%K = %v, want exactly 50", *k[13])
	}
	if d[13] != nil {
		t.Error("%D needs 3 %K values, should be absent")
	}
}

func TestStochasticSeries_HighAndLowExtremes(t *testing.T) {
	rising := make([]float64, 16)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	k, _ := StochasticSeries(rising, 14, 3)
	if *k[15] != 100.0 {
		t.Errorf("close at window high should give %%K = 100, got %v", *k[15])
	}

	falling := make([]float64, 16)
	for i := range falling {
		falling[i] = 100 - float64(i)
	}
	k, _ = StochasticSeries(falling, 14, 3)
	if *k[15] != 0.0 {
		t.Errorf("close at window low should give %%K = 0, got %v", *k[15])
	}
}

func TestBollingerSeries_FlatSeriesCollapsesBands(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 500.0
	}
	center, upper, lower := BollingerSeries(closes, 20, 2)
	if center[18] != nil {
		t.Error("bands should be absent before 20 observations")
	}
	if center[19] == nil || upper[19] == nil || lower[19] == nil {
		t.Fatal("bands should be defined from day 20")
	}
	if *center[19] != 500.0 || *upper[19] != 500.0 || *lower[19] != 500.0 {
		t.Errorf("flat series: center=%v upper=%v lower=%v, want all 500",
			*center[19], *upper[19], *lower[19])
	}
}

func TestBollingerSeries_PopulationDeviation(t *testing.T) {
	// Window of 4 with values 2,4,4,6: mean 4, population sd sqrt(2).
	closes := []float64{2, 4, 4, 6}
	center, upper, lower := BollingerSeries(closes, 4, 2)
	if center[3] == nil {
		t.Fatal("bands should be defined")
	}
	sd := math.Sqrt(2)
	if math.Abs(*upper[3]-(4+2*sd)) > 1e-12 {
		t.Errorf("upper = %v, want %v", *upper[3], 4+2*sd)
	}
	if math.Abs(*lower[3]-(4-2*sd)) > 1e-12 {
		t.Errorf("lower = %v, want %v", *lower[3], 4-2*sd)
	}
}

func TestEMASeries_SeededWithSimpleAverage(t *testing.T) {
	closes := []float64{10, 20, 30, 40}
	ema := EMASeries(closes, 3)
	if ema[1] != nil {
		t.Error("EMA should be absent before the seed day")
	}
	if ema[2] == nil || *ema[2] != 20.0 {
		t.Fatalf("EMA seed should be the simple average 20, got %v", ema[2])
	}
	// alpha = 2/(3+1) = 0.5 -> 40*0.5 + 20*0.5 = 30
	if *ema[3] != 30.0 {
		t.Errorf("EMA day 4 = %v, want 30", *ema[3])
	}
}

func TestMACDSeries_DefinedFromSlowPlusSignal(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	line, signal, hist := MACDSeries(closes, 12, 26, 9)
	if line[24] != nil {
		t.Error("MACD line should be absent before the slow EMA exists")
	}
	if line[25] == nil {
		t.Error("MACD line should be defined from day 26")
	}
	if signal[32] != nil {
		t.Error("signal line should be absent before 9 MACD values exist")
	}
	if signal[33] == nil || hist[33] == nil {
		t.Error("signal line and histogram should be defined from day 34")
	}
	if hist[33] != nil && signal[33] != nil && line[33] != nil {
		if diff := *line[33] - *signal[33] - *hist[33]; math.Abs(diff) > 1e-12 {
			t.Errorf("histogram must equal line minus signal, off by %v", diff)
		}
	}
}
