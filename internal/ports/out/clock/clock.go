package clock

import "time"

// Clock provides time to the application. Timestamps stamped on locally
// created records and age/dob consistency checks go through it, so tests can
// pin the current time.
type Clock interface {
	Now() time.Time
}
