package store

import (
	"encoding/json"
	"fmt"

	"BoursePulse/internal/model"
)

// Seen reports whether a report URL has already been analyzed. Consulted
// before any AI call is issued so a report is summarized at most once.
func (s *Store) Seen(reportURL string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM fundamental_analysis WHERE report_url = ?`, reportURL).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check analysis memory: %w", err)
	}
	return n > 0, nil
}

// RecordAnalysis persists a completed analysis. Must only be called after the
// orchestrator returned success. A duplicate URL overwrites the summary: if a
// crash lost the previous write, re-analyzing the same report is harmless.
func (s *Store) RecordAnalysis(rec model.AnalysisRecord) error {
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO fundamental_analysis
		(company_id, report_url, report_title, report_date, analysis_summary)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(report_url) DO UPDATE SET
		 company_id = excluded.company_id,
		 report_title = excluded.report_title,
		 report_date = excluded.report_date,
		 analysis_summary = excluded.analysis_summary`,
		rec.CompanyID, rec.ReportURL, rec.ReportTitle,
		rec.ReportDate.Format(dateLayout), string(summary))
	if err != nil {
		return fmt.Errorf("record analysis %s: %w", rec.ReportURL, err)
	}
	return nil
}

// Analysis reads back a persisted analysis by report URL.
func (s *Store) Analysis(reportURL string) (*model.AnalysisRecord, error) {
	var rec model.AnalysisRecord
	var day, summary string
	err := s.db.QueryRow(`SELECT company_id, report_url, COALESCE(report_title, ''),
		 COALESCE(report_date, '1900-01-01'), COALESCE(analysis_summary, '{}')
		FROM fundamental_analysis WHERE report_url = ?`, reportURL).
		Scan(&rec.CompanyID, &rec.ReportURL, &rec.ReportTitle, &day, &summary)
	if err != nil {
		return nil, fmt.Errorf("load analysis %s: %w", reportURL, err)
	}
	if rec.ReportDate, err = parseDay(day); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &rec.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &rec, nil
}
