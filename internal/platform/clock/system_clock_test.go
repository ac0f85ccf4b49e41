package clock

import (
	"testing"
	"time"
)

func TestSystemClock_UTCAtMicrosecondPrecision(t *testing.T) {
	t.Parallel()

	now := NewSystemClock().Now()
	if now.Location() != time.UTC {
		t.Fatalf("location=%v, want UTC", now.Location())
	}
	if now.Nanosecond()%int(time.Microsecond) != 0 {
		t.Fatalf("now=%v has sub-microsecond digits", now)
	}
	// Round-trips through RFC3339Nano without loss.
	reparsed, err := time.Parse(time.RFC3339Nano, now.Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reparsed.Equal(now) {
		t.Fatalf("reparsed=%v now=%v", reparsed, now)
	}
}
