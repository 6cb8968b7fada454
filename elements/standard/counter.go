package standard

import (
	"fmt"
	"sync/atomic"

	"github.com/clickrouter/router/router"
)

// Counter passes packets through unchanged while counting them and
// their total byte length. It implements StateTaker so its count
// survives a hot-swap (spec.md §8's boundary scenario 6).
type Counter struct {
	router.BaseElement

	count atomic.Int64
	bytes atomic.Int64
}

func (c *Counter) ClassName() string  { return "Counter" }
func (c *Counter) PortCount() string  { return "1/1" }
func (c *Counter) Processing() string { return "a/a" }
func (c *Counter) FlowCode() string   { return "x/x" }

func (c *Counter) SimpleAction(rv *router.RouterView, p *router.Packet) *router.Packet {
	c.count.Add(1)
	c.bytes.Add(int64(p.Length()))
	return p
}

// TakeState copies the previous router's count forward, per spec.md
// §4.4 step 8.
func (c *Counter) TakeState(old router.Element, errh *router.ErrorHandler) error {
	prev, ok := old.(*Counter)
	if !ok {
		errh.Warnf("Counter", "take_state: incompatible element type %T", old)
		return nil
	}
	c.count.Store(prev.count.Load())
	c.bytes.Store(prev.bytes.Load())
	return nil
}

func (c *Counter) AddHandlers(h *router.HandlerAdder) {
	h.ReadHandler("count", func(e router.Element, _ any) (string, error) {
		return fmt.Sprintf("%d", e.(*Counter).count.Load()), nil
	}, nil)
	h.ReadHandler("byte_count", func(e router.Element, _ any) (string, error) {
		return fmt.Sprintf("%d", e.(*Counter).bytes.Load()), nil
	}, nil)
	h.WriteHandler("reset_counts", func(_ string, e router.Element, _ any, _ *router.ErrorHandler) error {
		c := e.(*Counter)
		c.count.Store(0)
		c.bytes.Store(0)
		return nil
	}, nil)
}
