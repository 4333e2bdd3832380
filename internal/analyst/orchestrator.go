// Package analyst routes AI analysis requests across a pool of credentialed
// keys, honoring local quota accounting and the backend's failure taxonomy.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"BoursePulse/internal/logger"
	"BoursePulse/internal/model"
	"BoursePulse/internal/quota"
)

// Summarizer is the external AI backend: report text in, structured summary
// out. Failures should be classified with the CallError constructors;
// anything unclassified is treated as transient.
type Summarizer interface {
	Summarize(ctx context.Context, apiKey string, report model.Report) (*model.Summary, error)
}

// Key is one credential in the rotation.
type Key struct {
	ID     string
	Secret string
}

// Options tunes the orchestrator's retry and pacing behavior.
type Options struct {
	// MaxRetries bounds transient retries per key (default 3).
	MaxRetries int
	// BaseBackoff is the first retry delay, doubled per attempt (default 2s).
	BaseBackoff time.Duration
	// MaxBackoff caps the retry delay (default 30s).
	MaxBackoff time.Duration
	// CallTimeout bounds a single backend call (default 60s).
	CallTimeout time.Duration
	// RequestsPerMinute caps the aggregate call rate across all keys;
	// 0 disables the limiter.
	RequestsPerMinute int
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.MaxRetries == 0 {
		out.MaxRetries = 3
	}
	if out.BaseBackoff == 0 {
		out.BaseBackoff = 2 * time.Second
	}
	if out.MaxBackoff == 0 {
		out.MaxBackoff = 30 * time.Second
	}
	if out.CallTimeout == 0 {
		out.CallTimeout = 60 * time.Second
	}
	return out
}

// Orchestrator selects a usable key, issues the analysis call and classifies
// the outcome. Rotation order is fixed; an explicit cursor makes it
// deterministic across reports within a run.
type Orchestrator struct {
	keys    []Key
	ledger  *quota.Ledger
	backend Summarizer
	opts    Options
	limiter *rate.Limiter
	log     *logrus.Entry

	mu     sync.Mutex
	cursor int
}

// New creates an orchestrator over the given key rotation.
func New(keys []Key, ledger *quota.Ledger, backend Summarizer, opts Options) *Orchestrator {
	o := &Orchestrator{
		keys:    keys,
		ledger:  ledger,
		backend: backend,
		opts:    opts.withDefaults(),
		log:     logger.With("analyst"),
	}
	if opts.RequestsPerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}
	return o
}

// Analyze produces a summary for the report, failing over across keys.
// An *ExhaustedError means every key was tried or skipped; the caller must
// not mark the report as analyzed.
func (o *Orchestrator) Analyze(ctx context.Context, report model.Report) (*model.Summary, error) {
	if len(o.keys) == 0 {
		return nil, errors.New("no API keys configured")
	}

	attempts := make(map[string]error, len(o.keys))
	for i := 0; i < len(o.keys); i++ {
		key := o.nextKey()
		if !o.ledger.Reserve(key.ID) {
			attempts[key.ID] = errNoCapacity
			continue
		}

		summary, err := o.tryKey(ctx, key, report)
		if err == nil {
			day, minute := o.ledger.Usage(key.ID)
			o.log.WithFields(logrus.Fields{
				"key": key.ID, "report": report.URL, "day_used": day, "minute_used": minute,
			}).Info("analysis succeeded")
			return summary, nil
		}

		switch kindOf(err) {
		case FailurePermanent:
			o.log.WithField("report", report.URL).WithError(err).Warn("permanent failure, not retrying")
			return nil, fmt.Errorf("analyze %s: %w", report.URL, err)
		case FailureQuota:
			o.ledger.MarkExhausted(key.ID)
			o.log.WithField("key", key.ID).Warn("backend reported quota exhaustion, retiring key for the day")
			attempts[key.ID] = err
		default:
			o.log.WithField("key", key.ID).WithError(err).Warn("key failed, advancing rotation")
			attempts[key.ID] = err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, &ExhaustedError{Attempts: attempts}
}

// tryKey issues the call with bounded transient retries on a single key.
// The first attempt rides on the reservation made by Analyze; each retry is
// another upstream request and must reserve again.
func (o *Orchestrator) tryKey(ctx context.Context, key Key, report model.Report) (*model.Summary, error) {
	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := o.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			if !o.ledger.Reserve(key.ID) {
				return nil, lastErr
			}
		}
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		summary, err := o.backend.Summarize(callCtx, key.Secret, report)
		cancel()
		if err == nil {
			return summary, nil
		}
		lastErr = err
		if kindOf(err) != FailureTransient {
			return nil, err
		}
		o.log.WithFields(logrus.Fields{
			"key": key.ID, "attempt": attempt + 1, "max": o.opts.MaxRetries + 1,
		}).WithError(err).Warn("transient failure")
	}
	return nil, lastErr
}

func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	d := o.opts.BaseBackoff * (1 << uint(attempt-1))
	if d > o.opts.MaxBackoff {
		d = o.opts.MaxBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (o *Orchestrator) nextKey() Key {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := o.keys[o.cursor%len(o.keys)]
	o.cursor++
	return k
}
