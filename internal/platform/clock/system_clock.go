package clock

import "time"

// Precision is the resolution of stored timestamps. Postgres timestamptz and MySQL DATETIME(6)
// both keep microseconds, so truncating here makes a freshly created record equal to its reread copy.
const Precision = time.Microsecond

// SystemClock reads the wall clock in UTC at Precision, without a monotonic reading.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(Precision) }
