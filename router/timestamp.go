package router

import (
	"fmt"
	"time"
)

// Timestamp is the router's wall-clock type: seconds and nanoseconds,
// matching the precision the scheduler's timer heap needs without
// depending on time.Time's broader (and heavier) feature set.
type Timestamp struct {
	Sec  int64
	Nsec int32
}

const nsecPerSec = int64(time.Second)

// Now returns the current wall-clock Timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime converts a time.Time into a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
}

// Time converts the Timestamp back to a time.Time (UTC).
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Sec, int64(t.Nsec)).UTC()
}

// Add returns t + d.
func (t Timestamp) Add(d time.Duration) Timestamp {
	total := t.Sec*nsecPerSec + int64(t.Nsec) + int64(d)
	return Timestamp{Sec: total / nsecPerSec, Nsec: int32(total % nsecPerSec)}
}

// Sub returns the duration t - u.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration((t.Sec-u.Sec)*nsecPerSec + int64(t.Nsec-u.Nsec))
}

// Before reports whether t is strictly earlier than u.
func (t Timestamp) Before(u Timestamp) bool {
	return t.Sec < u.Sec || (t.Sec == u.Sec && t.Nsec < u.Nsec)
}

// After reports whether t is strictly later than u.
func (t Timestamp) After(u Timestamp) bool { return u.Before(t) }

func (t Timestamp) String() string {
	return fmt.Sprintf("%d.%09d", t.Sec, t.Nsec)
}
