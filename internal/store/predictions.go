package store

import (
	"fmt"
	"time"

	"BoursePulse/internal/model"
)

// UpsertPrediction writes one forecasted point, unique per
// (company, prediction date); a fresh run overwrites the previous estimate.
func (s *Store) UpsertPrediction(p model.Prediction) error {
	_, err := s.db.Exec(`INSERT INTO predictions
		(company_id, prediction_date, predicted_price, lower_bound, upper_bound, confidence_level)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, prediction_date) DO UPDATE SET
		 predicted_price = excluded.predicted_price,
		 lower_bound = excluded.lower_bound,
		 upper_bound = excluded.upper_bound,
		 confidence_level = excluded.confidence_level`,
		p.CompanyID, p.PredictionDate.Format(dateLayout),
		p.PredictedPrice, p.LowerBound, p.UpperBound, p.ConfidenceLevel)
	if err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

// PrunePredictions deletes points dated before the cutoff and returns how
// many rows were removed.
func (s *Store) PrunePredictions(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM predictions WHERE prediction_date < ?`,
		cutoff.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("prune predictions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("rows", n).Info("pruned stale predictions")
	}
	return n, nil
}

// PredictionCount reports how many points are stored for a company.
func (s *Store) PredictionCount(companyID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM predictions WHERE company_id = ?`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}
