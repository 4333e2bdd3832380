package store

import (
	"fmt"
	"time"

	"BoursePulse/internal/model"
)

// UpsertCompany inserts the company if unknown and returns its id. The name
// and sector are refreshed on conflict since the bulletin is authoritative.
func (s *Store) UpsertCompany(symbol, name, sector string) (int64, error) {
	_, err := s.db.Exec(`INSERT INTO companies (symbol, name, sector) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, sector = excluded.sector`,
		symbol, name, sector)
	if err != nil {
		return 0, fmt.Errorf("upsert company %s: %w", symbol, err)
	}
	var id int64
	if err := s.db.QueryRow(`SELECT id FROM companies WHERE symbol = ?`, symbol).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup company %s: %w", symbol, err)
	}
	return id, nil
}

// Companies lists all known companies ordered by symbol.
func (s *Store) Companies() ([]model.Company, error) {
	rows, err := s.db.Query(`SELECT id, symbol, name, COALESCE(sector, '') FROM companies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name, &c.Sector); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertPrice appends one daily observation, deduplicated on
// (company, trade date). Returns false when the day was already present;
// existing records are never modified.
func (s *Store) InsertPrice(rec model.PriceRecord) (bool, error) {
	res, err := s.db.Exec(`INSERT INTO historical_data (company_id, trade_date, price, volume, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(company_id, trade_date) DO NOTHING`,
		rec.CompanyID, rec.TradeDate.Format(dateLayout), rec.Price, rec.Volume, rec.Value)
	if err != nil {
		return false, fmt.Errorf("insert price: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PriceSeries returns the full history for a company ordered ascending by
// trade date, the sole input to indicator computation.
func (s *Store) PriceSeries(companyID int64) ([]model.PriceRecord, error) {
	rows, err := s.db.Query(`SELECT id, company_id, trade_date, price, COALESCE(volume, 0), COALESCE(value, 0)
		FROM historical_data WHERE company_id = ? ORDER BY trade_date`, companyID)
	if err != nil {
		return nil, fmt.Errorf("load price series: %w", err)
	}
	defer rows.Close()

	var out []model.PriceRecord
	for rows.Next() {
		var rec model.PriceRecord
		var day string
		if err := rows.Scan(&rec.ID, &rec.CompanyID, &day, &rec.Price, &rec.Volume, &rec.Value); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		rec.TradeDate, err = time.Parse(dateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse trade date %q: %w", day, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
