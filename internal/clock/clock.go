package clock

import "time"

// Now supplies the current wall-clock time. Every "now vs stored timestamp"
// comparison in the codebase goes through one of these so tests can pin time.
type Now func() time.Time

// System is the real clock.
func System() time.Time {
	return time.Now()
}
