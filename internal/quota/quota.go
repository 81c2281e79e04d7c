// Package quota enforces a client-side ceiling on model invocations: a
// mandatory cooldown between requests plus rolling hourly and daily
// limits computed over a self-pruning usage log.
//
// The tracker is advisory only. It protects the upstream API from casual
// overuse by this client; it makes no network calls and anyone who edits
// the persisted log bypasses it. It is not a security boundary.
package quota

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Usage kinds recorded in the log.
const (
	KindText = "text"
	KindPDF  = "pdf"
)

// Fixed limits. Deliberately not user-configurable.
const (
	Cooldown      = 10 * time.Second
	HourlyCeiling = 5
	DailyCeiling  = 20

	window = 24 * time.Hour
)

// Entry is one recorded invocation. Immutable once written.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
}

// Store persists the usage log. Implementations must round-trip entries
// through Save and Load; no other format guarantee is required.
type Store interface {
	Load() ([]Entry, error)
	Save([]Entry) error
}

// Decision is the outcome of a limit check. Computed, never persisted.
type Decision struct {
	Allowed     bool   `json:"allowed"`
	Reason      string `json:"reason,omitempty"`
	WaitSeconds int    `json:"wait_seconds,omitempty"`
}

// Tracker applies the quota policy over a Store.
type Tracker struct {
	store Store
}

// NewTracker creates a tracker backed by the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// CheckLimit decides whether a new invocation may proceed at the given
// instant. Cooldown takes precedence over the hourly limit, which takes
// precedence over the daily limit; the order determines which message
// the user sees when several limits are exceeded at once.
func (t *Tracker) CheckLimit(now time.Time) (Decision, error) {
	logs, err := t.loadPruned(now)
	if err != nil {
		return Decision{}, err
	}

	if len(logs) > 0 {
		elapsed := now.Sub(logs[len(logs)-1].Timestamp)
		if elapsed < Cooldown {
			wait := int(math.Ceil((Cooldown - elapsed).Seconds()))
			return Decision{
				Allowed:     false,
				Reason:      fmt.Sprintf("System cooling down. Please wait %d seconds.", wait),
				WaitSeconds: wait,
			}, nil
		}
	}

	hourAgo := now.Add(-time.Hour)
	lastHour := 0
	for _, e := range logs {
		if e.Timestamp.After(hourAgo) {
			lastHour++
		}
	}
	if lastHour >= HourlyCeiling {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("Hourly limit reached (%d/hr). Try again later.", HourlyCeiling),
		}, nil
	}

	if len(logs) >= DailyCeiling {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("Daily limit reached (%d/day).", DailyCeiling),
		}, nil
	}

	return Decision{Allowed: true}, nil
}

// RecordUsage appends one entry stamped at now, re-pruning before persisting.
func (t *Tracker) RecordUsage(kind string, now time.Time) error {
	logs, err := t.loadPruned(now)
	if err != nil {
		return err
	}

	logs = append(logs, Entry{Timestamp: now, Kind: kind})

	if err := t.store.Save(logs); err != nil {
		return fmt.Errorf("failed to persist usage log: %w", err)
	}

	slog.Debug("Recorded usage", "kind", kind, "entries", len(logs))
	return nil
}

// Remaining reports how many invocations are left in the current hour
// and day windows.
func (t *Tracker) Remaining(now time.Time) (hour, day int, err error) {
	logs, err := t.loadPruned(now)
	if err != nil {
		return 0, 0, err
	}

	hourAgo := now.Add(-time.Hour)
	usedHour := 0
	for _, e := range logs {
		if e.Timestamp.After(hourAgo) {
			usedHour++
		}
	}

	return max(0, HourlyCeiling-usedHour), max(0, DailyCeiling-len(logs)), nil
}

// loadPruned loads the log and drops entries outside the 24h window.
// Pruning happens on every read so stale entries never count toward any
// window, even if no prior call persisted the pruned log.
func (t *Tracker) loadPruned(now time.Time) ([]Entry, error) {
	logs, err := t.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load usage log: %w", err)
	}

	cutoff := now.Add(-window)
	pruned := logs[:0]
	for _, e := range logs {
		if e.Timestamp.After(cutoff) {
			pruned = append(pruned, e)
		}
	}
	return pruned, nil
}
