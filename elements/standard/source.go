// Package standard implements the generic, domain-independent element
// library: sources, sinks, queues, fan-out, and diagnostics, grounded
// on original_source/elements/standard/*.cc (spec.md §4.8's
// "Supplemented features").
package standard

import (
	"fmt"

	"github.com/clickrouter/router/router"
	"github.com/clickrouter/router/routerconfig"
)

// Source is a push-output element that emits copies of a fixed
// payload, either a fixed number of times or forever, one per Task
// activation. Config: `Source(DATA[, COUNT])`; COUNT defaults to -1
// (infinite). Grounded on Click's InfiniteSource, generalized from the
// distilled spec's bare "Src" boundary-scenario name.
type Source struct {
	router.BaseElement

	payload []byte
	count   int64 // -1 = infinite
	emitted int64

	task *router.Task
	rv   *router.RouterView
}

func (s *Source) ClassName() string  { return "Source" }
func (s *Source) PortCount() string  { return "0/1" }
func (s *Source) Processing() string { return "/h" }
func (s *Source) FlowCode() string   { return "x/y" }

func (s *Source) Configure(args []string, errh *router.ErrorHandler) error {
	s.count = -1
	if len(args) == 0 {
		return errh.Errorf("Source", "requires at least a payload argument")
	}
	data, status := routerconfig.ParseString(args[0])
	if status != routerconfig.StatusOK {
		return errh.Errorf("Source", "bad payload argument %q", args[0])
	}
	s.payload = []byte(data)
	if len(args) > 1 {
		n, status := routerconfig.ParseInt64(args[1])
		if status != routerconfig.StatusOK {
			return errh.Errorf("Source", "bad count argument %q", args[1])
		}
		s.count = n
	}
	return nil
}

func (s *Source) Initialize(rv *router.RouterView, errh *router.ErrorHandler) error {
	s.rv = rv
	s.task = router.NewTask(s.runOnce)
	rv.Scheduler().AddTask(s.task)
	return nil
}

func (s *Source) runOnce() bool {
	if s.count >= 0 && s.emitted >= s.count {
		s.task.Unschedule()
		return false
	}
	buf := make([]byte, len(s.payload))
	copy(buf, s.payload)
	pkt := router.Make(buf, 0, 0)
	s.emitted++
	s.rv.Output(0).Push(pkt)
	if s.count < 0 || s.emitted < s.count {
		s.task.Reschedule()
	}
	return true
}

func (s *Source) Cleanup(stage router.LifecycleStage) {
	if s.task != nil {
		s.task.Unschedule()
	}
}

func (s *Source) AddHandlers(h *router.HandlerAdder) {
	h.ReadHandler("emitted", func(e router.Element, _ any) (string, error) {
		return fmt.Sprintf("%d", e.(*Source).emitted), nil
	}, nil)
}
