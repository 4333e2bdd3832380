package model

import "time"

// Report is a published financial report discovered on the exchange site,
// identified by its URL.
type Report struct {
	Symbol  string
	Company string
	Title   string
	URL     string
	Date    time.Time
	Text    string
}

// Summary is the structured result of an AI analysis of one report.
type Summary struct {
	RevenueTrend   string `json:"revenue_trend"`
	NetIncome      string `json:"net_income"`
	DividendPolicy string `json:"dividend_policy"`
	Outlook        string `json:"outlook"`
}

// AnalysisRecord is a persisted fundamental analysis, unique per report URL.
type AnalysisRecord struct {
	CompanyID   int64
	ReportURL   string
	ReportTitle string
	ReportDate  time.Time
	Summary     Summary
}

// Prediction is one forecasted price point for a company.
type Prediction struct {
	CompanyID       int64
	PredictionDate  time.Time
	PredictedPrice  float64
	LowerBound      float64
	UpperBound      float64
	ConfidenceLevel string
}
