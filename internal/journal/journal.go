package journal

import (
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Filter narrows a journal query. Zero fields match everything.
type Filter struct {
	Symbol  string
	Outcome types.SignalOutcome
	Since   time.Time
	// Limit caps the number of records, newest first; zero means no cap
	Limit int
}

// Journal is the in-process audit trail of what happened to every candidate signal.
// It is held in memory only and starts empty on every process start.
type Journal interface {
	// Record stores one record.
	Record(record types.SignalRecord) error
	// Query returns matching records, newest first.
	Query(filter Filter) ([]types.SignalRecord, error)
	// Counts returns the number of records per outcome.
	Counts() (map[types.SignalOutcome]int, error)
	// Prune deletes records older than before and returns how many were removed.
	Prune(before time.Time) (int, error)
	// Close releases the database.
	Close() error
}
