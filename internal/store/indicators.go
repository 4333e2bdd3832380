package store

import (
	"fmt"

	"BoursePulse/internal/model"
)

// UpsertIndicators writes one technical_analysis row per indicator record,
// keyed by the owning historical_data row. Re-running over an unchanged
// series overwrites each row with identical values, so an interrupted run
// can safely restart from the beginning of the series.
func (s *Store) UpsertIndicators(companyID int64, records []model.IndicatorRecord) error {
	ids, err := s.historicalIDsByDate(companyID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin indicators tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO technical_analysis
		(historical_data_id, ma5, ma10, ma20, ma50,
		 bollinger_center, bollinger_upper, bollinger_lower,
		 macd_line, signal_line, histogram, rsi, stochastic_k, stochastic_d,
		 ma_decision, bollinger_decision, macd_decision, rsi_decision,
		 stochastic_decision, composite_decision)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(historical_data_id) DO UPDATE SET
		 ma5 = excluded.ma5, ma10 = excluded.ma10, ma20 = excluded.ma20, ma50 = excluded.ma50,
		 bollinger_center = excluded.bollinger_center,
		 bollinger_upper = excluded.bollinger_upper,
		 bollinger_lower = excluded.bollinger_lower,
		 macd_line = excluded.macd_line, signal_line = excluded.signal_line,
		 histogram = excluded.histogram, rsi = excluded.rsi,
		 stochastic_k = excluded.stochastic_k, stochastic_d = excluded.stochastic_d,
		 ma_decision = excluded.ma_decision,
		 bollinger_decision = excluded.bollinger_decision,
		 macd_decision = excluded.macd_decision,
		 rsi_decision = excluded.rsi_decision,
		 stochastic_decision = excluded.stochastic_decision,
		 composite_decision = excluded.composite_decision`)
	if err != nil {
		return fmt.Errorf("prepare indicators upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		day := rec.TradeDate.Format(dateLayout)
		id, ok := ids[day]
		if !ok {
			return fmt.Errorf("no historical_data row for company %d on %s", companyID, day)
		}
		_, err := stmt.Exec(id,
			rec.MA5, rec.MA10, rec.MA20, rec.MA50,
			rec.BollingerCenter, rec.BollingerUpper, rec.BollingerLower,
			rec.MACDLine, rec.SignalLine, rec.Histogram,
			rec.RSI, rec.StochasticK, rec.StochasticD,
			string(rec.MADecision), string(rec.BollingerDecision),
			string(rec.MACDDecision), string(rec.RSIDecision),
			string(rec.StochasticDecision), string(rec.Composite))
		if err != nil {
			return fmt.Errorf("upsert indicators for %s: %w", day, err)
		}
	}
	return tx.Commit()
}

// IndicatorRow reads back the technical_analysis row for one trading day.
func (s *Store) IndicatorRow(companyID int64, day string) (*model.IndicatorRecord, error) {
	row := s.db.QueryRow(`SELECT h.trade_date,
		 t.ma5, t.ma10, t.ma20, t.ma50,
		 t.bollinger_center, t.bollinger_upper, t.bollinger_lower,
		 t.macd_line, t.signal_line, t.histogram, t.rsi, t.stochastic_k, t.stochastic_d,
		 t.ma_decision, t.bollinger_decision, t.macd_decision, t.rsi_decision,
		 t.stochastic_decision, t.composite_decision
		FROM technical_analysis t
		JOIN historical_data h ON h.id = t.historical_data_id
		WHERE h.company_id = ? AND h.trade_date = ?`, companyID, day)

	var rec model.IndicatorRecord
	var tradeDate string
	var maD, bolD, macdD, rsiD, stochD, compD string
	err := row.Scan(&tradeDate,
		&rec.MA5, &rec.MA10, &rec.MA20, &rec.MA50,
		&rec.BollingerCenter, &rec.BollingerUpper, &rec.BollingerLower,
		&rec.MACDLine, &rec.SignalLine, &rec.Histogram,
		&rec.RSI, &rec.StochasticK, &rec.StochasticD,
		&maD, &bolD, &macdD, &rsiD, &stochD, &compD)
	if err != nil {
		return nil, fmt.Errorf("load indicators for %s: %w", day, err)
	}
	rec.TradeDate, err = parseDay(tradeDate)
	if err != nil {
		return nil, err
	}
	rec.MADecision = model.Decision(maD)
	rec.BollingerDecision = model.Decision(bolD)
	rec.MACDDecision = model.Decision(macdD)
	rec.RSIDecision = model.Decision(rsiD)
	rec.StochasticDecision = model.Decision(stochD)
	rec.Composite = model.Decision(compD)
	return &rec, nil
}

func (s *Store) historicalIDsByDate(companyID int64) (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT id, trade_date FROM historical_data WHERE company_id = ?`, companyID)
	if err != nil {
		return nil, fmt.Errorf("load historical ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var day string
		if err := rows.Scan(&id, &day); err != nil {
			return nil, fmt.Errorf("scan historical id: %w", err)
		}
		ids[day] = id
	}
	return ids, rows.Err()
}
