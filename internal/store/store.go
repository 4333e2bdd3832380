// Package store persists prices, indicators, analyses and predictions to a
// SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"BoursePulse/internal/logger"
)

const dateLayout = "2006-01-02"

// Store wraps the SQLite database. The pool is capped at one connection so
// concurrent workers serialize on the single SQLite writer.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL for concurrent reads while the pipeline writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, log: logger.With("store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.log.WithField("path", path).Info("store opened")
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE,
			name   TEXT NOT NULL,
			sector TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS historical_data (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL REFERENCES companies(id),
			trade_date TEXT NOT NULL,
			price      REAL NOT NULL,
			volume     REAL,
			value      REAL,
			UNIQUE(company_id, trade_date)
		)`,

		`CREATE TABLE IF NOT EXISTS technical_analysis (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			historical_data_id  INTEGER NOT NULL UNIQUE REFERENCES historical_data(id) ON DELETE CASCADE,
			ma5                 REAL,
			ma10                REAL,
			ma20                REAL,
			ma50                REAL,
			bollinger_center    REAL,
			bollinger_upper     REAL,
			bollinger_lower     REAL,
			macd_line           REAL,
			signal_line         REAL,
			histogram           REAL,
			rsi                 REAL,
			stochastic_k        REAL,
			stochastic_d        REAL,
			ma_decision         TEXT,
			bollinger_decision  TEXT,
			macd_decision       TEXT,
			rsi_decision        TEXT,
			stochastic_decision TEXT,
			composite_decision  TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS fundamental_analysis (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id       INTEGER REFERENCES companies(id),
			report_url       TEXT NOT NULL UNIQUE,
			report_title     TEXT,
			report_date      TEXT,
			analysis_summary TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id       INTEGER NOT NULL REFERENCES companies(id),
			prediction_date  TEXT NOT NULL,
			predicted_price  REAL,
			lower_bound      REAL,
			upper_bound      REAL,
			confidence_level TEXT,
			UNIQUE(company_id, prediction_date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_historical_company_date
			ON historical_data(company_id, trade_date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.log.Info("closing store")
	return s.db.Close()
}
