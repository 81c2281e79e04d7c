package quota

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCheckLimit_CooldownPrecedesHourly(t *testing.T) {
	tracker := NewTracker(NewMemStore())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Fill the hourly window and leave the last entry 2s old so both the
	// cooldown and the hourly limit are exceeded at once.
	for i := 0; i < HourlyCeiling; i++ {
		if err := tracker.RecordUsage(KindText, now.Add(time.Duration(i-10)*time.Minute)); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}
	if err := tracker.RecordUsage(KindText, now.Add(-2*time.Second)); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	d, err := tracker.CheckLimit(now)
	if err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if d.WaitSeconds != 8 {
		t.Errorf("WaitSeconds = %d, want 8 (cooldown must win over hourly)", d.WaitSeconds)
	}
}

func TestCheckLimit_CooldownWaitSeconds(t *testing.T) {
	tracker := NewTracker(NewMemStore())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := tracker.RecordUsage(KindPDF, now); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	d, err := tracker.CheckLimit(now.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected cooldown denial")
	}
	if d.WaitSeconds != 8 {
		t.Errorf("WaitSeconds = %d, want 8", d.WaitSeconds)
	}
}

func TestCheckLimit_HourlyCeiling(t *testing.T) {
	tracker := NewTracker(NewMemStore())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 5 requests at 11-second intervals clear the cooldown each time.
	now := start
	for i := 0; i < HourlyCeiling; i++ {
		d, err := tracker.CheckLimit(now)
		if err != nil {
			t.Fatalf("CheckLimit %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d unexpectedly denied: %s", i, d.Reason)
		}
		if err := tracker.RecordUsage(KindText, now); err != nil {
			t.Fatalf("RecordUsage %d: %v", i, err)
		}
		now = now.Add(11 * time.Second)
	}

	d, err := tracker.CheckLimit(now)
	if err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if d.Allowed {
		t.Fatal("6th request within the hour should be denied")
	}
	if d.WaitSeconds != 0 {
		t.Errorf("hourly denial should not carry WaitSeconds, got %d", d.WaitSeconds)
	}
	if d.Reason == "" {
		t.Error("hourly denial should carry a reason")
	}
}

func TestCheckLimit_DailyCeiling(t *testing.T) {
	store := NewMemStore()
	tracker := NewTracker(store)
	now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)

	// Spread 20 entries over the trailing day, no more than 4 per hour so
	// the hourly limit never trips, last one well past the cooldown.
	entries := make([]Entry, 0, DailyCeiling)
	for i := 0; i < DailyCeiling; i++ {
		entries = append(entries, Entry{
			Timestamp: now.Add(-time.Duration(20-i)*time.Hour + time.Duration(i)*time.Minute),
			Kind:      KindText,
		})
	}
	if err := store.Save(entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	d, err := tracker.CheckLimit(now)
	if err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if d.Allowed {
		t.Fatal("21st request within the day should be denied")
	}
}

func TestCheckLimit_PrunesStaleEntries(t *testing.T) {
	store := NewMemStore()
	tracker := NewTracker(store)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	// A full day's worth of entries, all older than 24h. None were ever
	// pruned by a prior call; they still must not count.
	entries := make([]Entry, 0, DailyCeiling)
	for i := 0; i < DailyCeiling; i++ {
		entries = append(entries, Entry{
			Timestamp: now.Add(-25*time.Hour - time.Duration(i)*time.Minute),
			Kind:      KindPDF,
		})
	}
	if err := store.Save(entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	d, err := tracker.CheckLimit(now)
	if err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("stale entries counted toward quota: %s", d.Reason)
	}

	hour, day, err := tracker.Remaining(now)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if hour != HourlyCeiling || day != DailyCeiling {
		t.Errorf("Remaining = (%d, %d), want (%d, %d)", hour, day, HourlyCeiling, DailyCeiling)
	}
}

func TestRecordUsage_PrunesBeforePersisting(t *testing.T) {
	store := NewMemStore()
	tracker := NewTracker(store)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	if err := store.Save([]Entry{{Timestamp: now.Add(-30 * time.Hour), Kind: KindText}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := tracker.RecordUsage(KindText, now); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (stale entry should be pruned on write)", len(entries))
	}
	if !entries[0].Timestamp.Equal(now) {
		t.Errorf("kept entry has timestamp %v, want %v", entries[0].Timestamp, now)
	}
}

func TestRemaining(t *testing.T) {
	tracker := NewTracker(NewMemStore())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := tracker.RecordUsage(KindText, now.Add(-30*time.Minute)); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if err := tracker.RecordUsage(KindPDF, now.Add(-5*time.Hour)); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	hour, day, err := tracker.Remaining(now)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if hour != HourlyCeiling-1 {
		t.Errorf("hour = %d, want %d", hour, HourlyCeiling-1)
	}
	if day != DailyCeiling-2 {
		t.Errorf("day = %d, want %d", day, DailyCeiling-2)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "usage.json")
	store := NewFileStore(path)

	// Missing file reads as an empty log.
	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries from missing file, want 0", len(entries))
	}

	want := []Entry{
		{Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), Kind: KindText},
		{Timestamp: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC), Kind: KindPDF},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Timestamp.Equal(want[i].Timestamp) || got[i].Kind != want[i].Kind {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
