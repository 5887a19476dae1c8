package cooldown

import (
	"sync"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// DefaultWindow is the stock cooldown between two signals with the same key.
const DefaultWindow = time.Hour

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Deduplicator suppresses signals whose key was admitted within the cooldown window.
// The ledger lives in memory only, so a restart forgets every cooldown.
type Deduplicator struct {
	mu     sync.Mutex
	window time.Duration
	ledger map[types.SignalKey]time.Time
	clock  Clock
}

// NewDeduplicator creates a deduplicator. A nil clock means the wall clock.
func NewDeduplicator(window time.Duration, clock Clock) *Deduplicator {
	if clock == nil {
		clock = SystemClock{}
	}

	return &Deduplicator{
		window: window,
		ledger: make(map[types.SignalKey]time.Time),
		clock:  clock,
	}
}

// Window returns the cooldown window.
func (d *Deduplicator) Window() time.Duration {
	return d.window
}

// Admit reports whether the signal may be emitted at now. The signal is admitted when its key
// has no entry or the entry is older than the window (strictly). Admission records now;
// rejection leaves the ledger untouched.
func (d *Deduplicator) Admit(signal types.Signal, now time.Time) bool {
	key := signal.Key()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.ledger[key]; ok && now.Sub(last) <= d.window {
		return false
	}

	d.ledger[key] = now

	return true
}

// AdmitNow is Admit at the deduplicator's clock.
func (d *Deduplicator) AdmitNow(signal types.Signal) bool {
	return d.Admit(signal, d.clock.Now())
}

// LastAdmitted returns when the key was last admitted.
func (d *Deduplicator) LastAdmitted(key types.SignalKey) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.ledger[key]

	return last, ok
}

// Prune drops entries that can no longer suppress anything and returns how many were removed.
func (d *Deduplicator) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0

	for key, last := range d.ledger {
		if now.Sub(last) > d.window {
			delete(d.ledger, key)

			removed++
		}
	}

	return removed
}

// Len returns the number of keys in the ledger.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.ledger)
}
