package router

import "time"

// TimerFunc is a timer's fire callback.
type TimerFunc func(*Timer)

// Timer is a one-shot (or, via self-rescheduling, periodic) wakeup
// delivered on its owning thread between task runs, per spec.md §4.5.
type Timer struct {
	fn     TimerFunc
	expiry Timestamp
	thread *schedThread
	index  int // heap index
	active bool
}

// NewTimer creates an unscheduled Timer that calls fn when it fires.
func NewTimer(fn TimerFunc) *Timer {
	return &Timer{fn: fn, index: -1}
}

// scheduleOn arranges for the timer to fire after d has elapsed on
// thread.
func (t *Timer) scheduleOn(thread *schedThread, d time.Duration) {
	t.expiry = Now().Add(d)
	thread.scheduleTimer(t)
}

// ScheduleAfterMsec is the spec.md §4.5 schedule_after_msec helper.
func (t *Timer) ScheduleAfterMsec(s *Scheduler, ms int64) {
	t.scheduleOn(s.threadFor(t), time.Duration(ms)*time.Millisecond)
}

// ScheduleAfter schedules the timer to fire after d.
func (t *Timer) ScheduleAfter(s *Scheduler, d time.Duration) {
	t.scheduleOn(s.threadFor(t), d)
}

// Unschedule cancels the timer. Per spec.md §5, cancellation is
// synchronous only when called from the owning thread; calling it from
// another thread is safe (guarded by the thread's mutex) but a
// concurrently-firing timer may still complete its current callback.
func (t *Timer) Unschedule() {
	if t.thread == nil {
		return
	}
	t.thread.unscheduleTimer(t)
}

// Scheduled reports whether the timer is currently pending.
func (t *Timer) Scheduled() bool { return t.active }
