package standard

import (
	"fmt"
	"sync"

	"github.com/clickrouter/router/router"
	"github.com/clickrouter/router/routerconfig"
)

const defaultQueueCapacity = 1000

// Queue is a push-to-pull adapter: its single input is push, its
// single output is pull, per spec.md §8.2's agnostic-propagation
// scenario ("Queue is push-to-pull"). Config: `Queue([CAPACITY])`.
type Queue struct {
	router.BaseElement

	mu       sync.Mutex
	buf      []*router.Packet
	capacity int

	dropped uint64
}

func (q *Queue) ClassName() string  { return "Queue" }
func (q *Queue) PortCount() string  { return "1/1" }
func (q *Queue) Processing() string { return "h/l" }
func (q *Queue) FlowCode() string   { return "x/x" }

func (q *Queue) Configure(args []string, errh *router.ErrorHandler) error {
	q.capacity = defaultQueueCapacity
	if len(args) > 0 {
		n, status := routerconfig.ParseInt64(args[0])
		if status != routerconfig.StatusOK || n < 0 {
			return errh.Errorf("Queue", "bad capacity argument %q", args[0])
		}
		q.capacity = int(n)
	}
	return nil
}

func (q *Queue) Push(rv *router.RouterView, port int, p *router.Packet) {
	q.mu.Lock()
	if len(q.buf) >= q.capacity {
		q.mu.Unlock()
		q.dropped++
		p.Kill()
		return
	}
	q.buf = append(q.buf, p)
	q.mu.Unlock()
}

func (q *Queue) Pull(rv *router.RouterView, port int) *router.Packet {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return nil
	}
	p := q.buf[0]
	q.buf = q.buf[1:]
	return p
}

// Length returns the number of packets currently queued.
func (q *Queue) Length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// RemoveMatching kills and drops every queued packet for which match
// returns true, compacting the remaining buffer in place. It returns
// the number removed.
func (q *Queue) RemoveMatching(match func(*router.Packet) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.buf[:0]
	removed := 0
	for _, p := range q.buf {
		if match(p) {
			p.Kill()
			removed++
			continue
		}
		kept = append(kept, p)
	}
	q.buf = kept
	return removed
}

func (q *Queue) AddHandlers(h *router.HandlerAdder) {
	h.ReadHandler("length", func(e router.Element, _ any) (string, error) {
		return fmt.Sprintf("%d", e.(*Queue).Length()), nil
	}, nil)
	h.ReadHandler("drops", func(e router.Element, _ any) (string, error) {
		return fmt.Sprintf("%d", e.(*Queue).dropped), nil
	}, nil)
}

func (q *Queue) Cleanup(stage router.LifecycleStage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range q.buf {
		p.Kill()
	}
	q.buf = nil
}
