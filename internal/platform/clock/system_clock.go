package clock

import "time"

// SystemClock is the production clock.Clock, reporting wall-clock time in
// UTC.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
