// Package pipeline runs the daily batch: ingest quotes, compute indicators,
// analyze new publications and refresh price predictions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"BoursePulse/internal/analyst"
	"BoursePulse/internal/bulletin"
	"BoursePulse/internal/config"
	"BoursePulse/internal/indicator"
	"BoursePulse/internal/logger"
	"BoursePulse/internal/model"
	"BoursePulse/internal/predictor"
)

// Analyzer produces a fundamental summary for one report.
type Analyzer interface {
	Analyze(ctx context.Context, report model.Report) (*model.Summary, error)
}

// Storage is the persistence surface the pipeline drives; *store.Store
// implements it.
type Storage interface {
	UpsertCompany(symbol, name, sector string) (int64, error)
	Companies() ([]model.Company, error)
	InsertPrice(rec model.PriceRecord) (bool, error)
	PriceSeries(companyID int64) ([]model.PriceRecord, error)
	UpsertIndicators(companyID int64, records []model.IndicatorRecord) error
	Seen(reportURL string) (bool, error)
	RecordAnalysis(rec model.AnalysisRecord) error
	UpsertPrediction(p model.Prediction) error
	PrunePredictions(cutoff time.Time) (int64, error)
}

// Pipeline wires the stages of one batch run. Stages are independent: a
// failure in one is logged and the next still runs, so a scraping outage
// does not block indicator computation over already stored history.
type Pipeline struct {
	cfg     *config.Config
	store   Storage
	fetcher bulletin.Fetcher
	engine  *indicator.Engine
	ai      Analyzer
	log     *logrus.Entry
}

// New assembles a pipeline. ai may be nil, in which case the fundamental
// analysis stage is skipped.
func New(cfg *config.Config, st Storage, fetcher bulletin.Fetcher, engine *indicator.Engine, ai Analyzer) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		fetcher: fetcher,
		engine:  engine,
		ai:      ai,
		log:     logger.With("pipeline"),
	}
}

// Run executes one full batch under the configured run deadline. The
// returned error reflects only a fully failed run; partial failures are
// logged and the run is still considered successful.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	log := p.log.WithField("run", runID)

	timeout := time.Duration(p.cfg.Pipeline.RunTimeoutMinutes) * time.Minute
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	log.Info("batch run started")

	if err := p.ingestQuotes(ctx, log); err != nil {
		log.WithError(err).Error("quote ingestion failed")
	}
	if err := p.computeIndicators(ctx, log); err != nil {
		log.WithError(err).Error("indicator stage failed")
	}
	if p.ai != nil {
		if err := p.analyzeReports(ctx, log); err != nil {
			log.WithError(err).Error("fundamental analysis stage failed")
		}
	}
	if err := p.updatePredictions(ctx, log); err != nil {
		log.WithError(err).Error("prediction stage failed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run %s aborted: %w", runID, err)
	}
	log.WithField("elapsed", time.Since(started).Round(time.Second)).Info("batch run finished")
	return nil
}

// ingestQuotes scrapes the daily board and appends one price row per traded
// company. Already known (company, day) pairs are left untouched.
func (p *Pipeline) ingestQuotes(ctx context.Context, log *logrus.Entry) error {
	quotes, err := p.fetcher.FetchDailyQuotes(ctx)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}

	var inserted, skipped, failed int
	for _, q := range quotes {
		id, err := p.store.UpsertCompany(q.Symbol, q.Name, q.Sector)
		if err != nil {
			log.WithError(err).WithField("symbol", q.Symbol).Warn("company upsert failed")
			failed++
			continue
		}
		ok, err := p.store.InsertPrice(model.PriceRecord{
			CompanyID: id,
			TradeDate: q.TradeDate,
			Price:     q.Price,
			Volume:    q.Volume,
			Value:     q.Value,
		})
		if err != nil {
			log.WithError(err).WithField("symbol", q.Symbol).Warn("price insert failed")
			failed++
			continue
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	log.WithFields(logrus.Fields{
		"inserted": inserted, "duplicates": skipped, "failed": failed,
	}).Info("quotes ingested")
	return nil
}

// computeIndicators recomputes the indicator table for every company, a
// bounded number of them in parallel. SQLite serializes the writes.
func (p *Pipeline) computeIndicators(ctx context.Context, log *logrus.Entry) error {
	companies, err := p.store.Companies()
	if err != nil {
		return err
	}

	sem := make(chan struct{}, p.cfg.Pipeline.Workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed int

	for _, c := range companies {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(c model.Company) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := p.indicatorsFor(c); err != nil {
				log.WithError(err).WithField("symbol", c.Symbol).Warn("indicators failed")
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	log.WithFields(logrus.Fields{
		"companies": len(companies), "failed": failed,
	}).Info("indicators computed")
	return ctx.Err()
}

func (p *Pipeline) indicatorsFor(c model.Company) error {
	series, err := p.store.PriceSeries(c.ID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return nil
	}
	records, err := p.engine.Compute(series)
	if err != nil {
		return err
	}
	return p.store.UpsertIndicators(c.ID, records)
}

// analyzeReports summarizes publications not yet in the analysis memory.
// When every API key is exhausted the remaining reports are deferred to the
// next run rather than treated as failures.
func (p *Pipeline) analyzeReports(ctx context.Context, log *logrus.Entry) error {
	reports, err := p.fetcher.FetchReports(ctx)
	if err != nil {
		return fmt.Errorf("fetch reports: %w", err)
	}
	companies, err := p.store.Companies()
	if err != nil {
		return err
	}

	var analyzed, known, unmatched int
	for _, report := range reports {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		company, ok := matchCompany(companies, report)
		if !ok {
			unmatched++
			continue
		}
		seen, err := p.store.Seen(report.URL)
		if err != nil {
			log.WithError(err).WithField("url", report.URL).Warn("analysis memory check failed")
			continue
		}
		if seen {
			known++
			continue
		}

		report.Symbol = company.Symbol
		report.Company = company.Name
		text, err := p.fetcher.FetchReportText(ctx, report)
		if err != nil {
			log.WithError(err).WithField("url", report.URL).Warn("report text unavailable")
			continue
		}
		report.Text = text

		summary, err := p.ai.Analyze(ctx, report)
		if err != nil {
			var exhausted *analyst.ExhaustedError
			if errors.As(err, &exhausted) {
				log.WithError(err).Warn("AI capacity exhausted, deferring remaining reports")
				break
			}
			log.WithError(err).WithField("url", report.URL).Warn("analysis failed")
			continue
		}

		err = p.store.RecordAnalysis(model.AnalysisRecord{
			CompanyID:   company.ID,
			ReportURL:   report.URL,
			ReportTitle: report.Title,
			ReportDate:  report.Date,
			Summary:     *summary,
		})
		if err != nil {
			// Lost write: the URL stays out of the memory, so the
			// report is simply re-analyzed on the next run.
			log.WithError(err).WithField("url", report.URL).Error("analysis write failed")
			continue
		}
		analyzed++
		log.WithFields(logrus.Fields{
			"symbol": company.Symbol, "url": report.URL,
		}).Info("report analyzed")
	}

	log.WithFields(logrus.Fields{
		"analyzed": analyzed, "known": known, "unmatched": unmatched,
	}).Info("publications processed")
	return nil
}

// updatePredictions refreshes the forecast for every company with enough
// history and prunes points older than the retention window.
func (p *Pipeline) updatePredictions(ctx context.Context, log *logrus.Entry) error {
	companies, err := p.store.Companies()
	if err != nil {
		return err
	}

	var updated int
	for _, c := range companies {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		series, err := p.store.PriceSeries(c.ID)
		if err != nil {
			log.WithError(err).WithField("symbol", c.Symbol).Warn("price series unavailable")
			continue
		}
		if len(series) < predictor.MinHistory {
			continue
		}
		preds, err := predictor.Forecast(c.ID, series, series[len(series)-1].TradeDate)
		if err != nil {
			log.WithError(err).WithField("symbol", c.Symbol).Warn("forecast failed")
			continue
		}
		stored := true
		for _, pred := range preds {
			if err := p.store.UpsertPrediction(pred); err != nil {
				log.WithError(err).WithField("symbol", c.Symbol).Warn("prediction write failed")
				stored = false
				break
			}
		}
		if stored {
			updated++
		}
	}

	cutoff := time.Now().AddDate(0, 0, -p.cfg.Pipeline.PredictionRetention)
	pruned, err := p.store.PrunePredictions(cutoff)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"companies": updated, "pruned": pruned,
	}).Info("predictions refreshed")
	return nil
}

// matchCompany links a publication to a listed company by symbol or by the
// company name appearing in the title.
func matchCompany(companies []model.Company, report model.Report) (model.Company, bool) {
	title := strings.ToUpper(report.Title)
	for _, c := range companies {
		if containsWord(title, strings.ToUpper(c.Symbol)) {
			return c, true
		}
	}
	for _, c := range companies {
		if c.Name != "" && strings.Contains(title, strings.ToUpper(c.Name)) {
			return c, true
		}
	}
	return model.Company{}, false
}

// containsWord reports whether w occurs in s delimited by non-letter
// characters, so the symbol "BOA" does not match inside "BOARD".
func containsWord(s, w string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], w)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isLetter(s[i-1])
		afterIdx := i + len(w)
		after := afterIdx >= len(s) || !isLetter(s[afterIdx])
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
