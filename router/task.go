package router

// STRIDE1 is the numerator used to compute a task's stride from its
// ticket count, per spec.md §4.5's stride-scheduling algorithm.
const STRIDE1 = 1 << 16

// MaxTickets bounds a task's ticket count; values are clamped into
// [1, MaxTickets].
const MaxTickets = 1 << 20

// RunFunc is a task's run callback. It returns whether it did work, per
// spec.md §4.5.
type RunFunc func() bool

// Task is one schedulable unit of work on a scheduler thread, ordered
// by stride/pass fair queueing, per spec.md §4.5.
type Task struct {
	run     RunFunc
	tickets int
	stride  int64
	pass    int64
	seq     uint64
	thread  *schedThread
	index   int // heap index, maintained by container/heap
	ready   bool

	running           bool
	pendingReschedule bool
}

// NewTask creates a Task with the default ticket count (1 << 10,
// i.e. a middling share) running fn when scheduled.
func NewTask(fn RunFunc) *Task {
	t := &Task{run: fn, tickets: 1 << 10, index: -1}
	t.stride = STRIDE1 / int64(t.tickets)
	return t
}

// SetTickets adjusts the task's relative share of scheduler time.
// 0 unschedules the task; values are clamped into [1, MaxTickets].
func (t *Task) SetTickets(n int) {
	if n <= 0 {
		t.Unschedule()
		return
	}
	if n > MaxTickets {
		n = MaxTickets
	}
	t.tickets = n
	t.stride = STRIDE1 / int64(n)
}

// Tickets returns the task's current ticket count.
func (t *Task) Tickets() int { return t.tickets }

// Scheduled reports whether the task is currently on a thread's ready
// queue (or about to run).
func (t *Task) Scheduled() bool { return t.ready }

// Reschedule places the task back on its thread's ready queue if it
// is not already scheduled, per spec.md §4.5's suspension model: tasks
// suspend by returning from their run callback and are rescheduled
// explicitly.
func (t *Task) Reschedule() {
	if t.thread == nil {
		return
	}
	t.thread.reschedule(t)
}

// Unschedule detaches the task from its ready queue.
func (t *Task) Unschedule() {
	if t.thread == nil {
		return
	}
	t.thread.unschedule(t)
}
