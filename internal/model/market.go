package model

import "time"

// Company is a listed issuer on the exchange.
type Company struct {
	ID     int64
	Symbol string
	Name   string
	Sector string
}

// Quote is one line of the daily official bulletin before persistence.
type Quote struct {
	Symbol    string
	Name      string
	Sector    string
	TradeDate time.Time
	Price     float64
	Volume    float64
	Value     float64
}

// PriceRecord is one persisted daily observation for a company.
// Immutable once written; at most one record per (company, trade date).
type PriceRecord struct {
	ID        int64
	CompanyID int64
	TradeDate time.Time
	Price     float64
	Volume    float64
	Value     float64
}
