package clock

import "time"

// Clock supplies record timestamps to the student service.
// Implementations must return UTC times.
type Clock interface {
	Now() time.Time
}
