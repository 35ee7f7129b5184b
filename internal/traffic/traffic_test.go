package traffic

import (
	"testing"
	"time"
)

// TestRequestCount_Empty verifies that RequestCount returns 0 when no
// requests have been recorded within the time window.
func TestRequestCount_Empty(t *testing.T) {
	Reset()
	if n := RequestCount(1 * time.Minute); n != 0 {
		t.Errorf("RequestCount() = %d, want 0", n)
	}
}

func TestRecordSuccess_AndRequestCount(t *testing.T) {
	Reset()
	RecordSuccess()
	RecordSuccess()
	if n := RequestCount(1 * time.Minute); n != 2 {
		t.Errorf("RequestCount() = %d, want 2", n)
	}
}

// TestRecordDenied_AndCounts verifies that RecordDenied increments both
// DenialCount and RequestCount.
func TestRecordDenied_AndCounts(t *testing.T) {
	Reset()
	RecordDenied()
	RecordDenied()
	if n := DenialCount(1 * time.Minute); n != 2 {
		t.Errorf("DenialCount() = %d, want 2", n)
	}
	if n := RequestCount(1 * time.Minute); n != 2 {
		t.Errorf("RequestCount() = %d, want 2", n)
	}
}

func TestErrorRate_SuccessAndError(t *testing.T) {
	Reset()
	RecordSuccess()
	RecordSuccess()
	RecordError()
	errors, total := ErrorRate(1 * time.Minute)
	if errors != 1 || total != 3 {
		t.Errorf("ErrorRate() = (%d, %d), want (1, 3)", errors, total)
	}
}

// TestErrorRate_DeniedExcluded verifies that ErrorRate excludes denied
// requests, only counting successful and error requests.
func TestErrorRate_DeniedExcluded(t *testing.T) {
	Reset()
	RecordSuccess()
	RecordDenied()
	RecordDenied()
	errors, total := ErrorRate(1 * time.Minute)
	if errors != 0 || total != 1 {
		t.Errorf("ErrorRate() = (%d, %d), want (0, 1) - denied excluded from error rate", errors, total)
	}
}

// TestTracker_WindowExcludesOldEvents drives the tracker with a fake clock and checks
// that outcomes older than the queried window are not counted.
func TestTracker_WindowExcludesOldEvents(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.now = func() time.Time { return now }

	tr.Record(Error)
	now = now.Add(90 * time.Second)
	tr.Record(Success)
	tr.Record(Error)

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 1 || total != 2 {
		t.Errorf("ErrorRate(1m) = (%d, %d), want (1, 2)", errors, total)
	}
	if n := tr.RequestCount(5 * time.Minute); n != 3 {
		t.Errorf("RequestCount(5m) = %d, want 3", n)
	}
}

// TestTracker_PrunesPastRetention verifies that events older than the retention
// period are dropped on the next write.
func TestTracker_PrunesPastRetention(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.now = func() time.Time { return now }

	tr.Record(Success)
	tr.Record(Success)
	now = now.Add(retention + time.Second)
	tr.Record(Denied)

	if len(tr.events) != 1 {
		t.Errorf("len(events) = %d after prune, want 1", len(tr.events))
	}
}

func TestReset(t *testing.T) {
	Reset()
	RecordSuccess()
	RecordError()
	RecordDenied()
	Reset()
	if n := RequestCount(1 * time.Minute); n != 0 {
		t.Errorf("RequestCount() = %d, want 0", n)
	}
	errors, total := ErrorRate(1 * time.Minute)
	if errors != 0 || total != 0 {
		t.Errorf("ErrorRate() = (%d, %d), want (0, 0)", errors, total)
	}
}
