// Package repository persists engine documents behind a key/value backend.
package repository

import (
	"context"
	"time"
)

// Document keys.
const (
	KeyState       = "ekiden_state"
	KeyIndividuals = "individual_results"
	KeyRankHistory = "rank_history"
	KeyLegHistory  = "leg_rank_history"
	KeySnapshot    = "realtime_report"
	KeyLedger      = "commentary_ledger"
)

// Keys lists every document key.
func Keys() []string {
	return []string{KeyState, KeyIndividuals, KeyRankHistory, KeyLegHistory, KeySnapshot, KeyLedger}
}

// Backend stores opaque documents by key.
type Backend interface {
	// Load returns the document stored under key.
	// Returns ErrNotFound if nothing is stored.
	Load(ctx context.Context, key string) ([]byte, error)

	// SaveBatch writes all documents or reports an error. A backend that
	// cannot write every key atomically must at least write each key atomically.
	SaveBatch(ctx context.Context, docs map[string][]byte) error

	Close() error
}

// msSince keeps sub-millisecond precision for latency histograms.
func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
