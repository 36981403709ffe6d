package clock

import "time"

// Clock abstracts time to keep the session engine deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports local wall time; history dates follow the user's day.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
