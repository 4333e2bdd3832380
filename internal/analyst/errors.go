package analyst

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FailureKind classifies a failed backend call, driving the orchestrator's
// retry and failover behavior.
type FailureKind string

const (
	// FailureTransient covers timeouts, 5xx responses and rate-limit
	// pushback despite local quota headroom; retried with backoff.
	FailureTransient FailureKind = "transient"
	// FailureQuota means the backend explicitly reported quota exhaustion
	// for the key; the key is retired for its daily window.
	FailureQuota FailureKind = "quota_exceeded"
	// FailurePermanent means the request itself is rejected (malformed
	// report, blocked content); never retried on any key.
	FailurePermanent FailureKind = "permanent"
)

// CallError wraps a backend error with its classification.
type CallError struct {
	Kind FailureKind
	Err  error
}

func (e *CallError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *CallError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable failure.
func Transient(err error) *CallError { return &CallError{Kind: FailureTransient, Err: err} }

// QuotaExceeded wraps err as a quota-exhaustion failure.
func QuotaExceeded(err error) *CallError { return &CallError{Kind: FailureQuota, Err: err} }

// Permanent wraps err as a non-retryable failure.
func Permanent(err error) *CallError { return &CallError{Kind: FailurePermanent, Err: err} }

// kindOf extracts the classification, defaulting to transient for errors the
// backend did not classify.
func kindOf(err error) FailureKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return FailureTransient
}

// errNoCapacity marks a key skipped because the local ledger had no headroom.
var errNoCapacity = errors.New("no local quota capacity")

// ExhaustedError reports that every key in the rotation was tried or skipped
// without producing a summary. The report must not be marked as analyzed.
type ExhaustedError struct {
	Attempts map[string]error
}

func (e *ExhaustedError) Error() string {
	keys := make([]string, 0, len(e.Attempts))
	for k := range e.Attempts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Attempts[k]))
	}
	return fmt.Sprintf("all %d keys exhausted or failed [%s]", len(e.Attempts), strings.Join(parts, "; "))
}
