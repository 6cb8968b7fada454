package standard

import (
	"fmt"
	"sync/atomic"

	"github.com/clickrouter/router/router"
)

// Sink discards every packet it receives and counts them. Grounded on
// Click's Discard element; "Sink" is the distilled spec's boundary-
// scenario name (spec.md §8.1).
type Sink struct {
	router.BaseElement

	count atomic.Int64
}

func (s *Sink) ClassName() string  { return "Sink" }
func (s *Sink) PortCount() string  { return "1/0" }
func (s *Sink) Processing() string { return "a/" }
func (s *Sink) FlowCode() string   { return "x/y" }

func (s *Sink) SimpleAction(rv *router.RouterView, p *router.Packet) *router.Packet {
	s.count.Add(1)
	p.Kill()
	return nil
}

func (s *Sink) Count() int64 { return s.count.Load() }

func (s *Sink) AddHandlers(h *router.HandlerAdder) {
	h.ReadHandler("count", func(e router.Element, _ any) (string, error) {
		return fmt.Sprintf("%d", e.(*Sink).Count()), nil
	}, nil)
	h.WriteHandler("reset_counts", func(_ string, e router.Element, _ any, _ *router.ErrorHandler) error {
		e.(*Sink).count.Store(0)
		return nil
	}, nil)
}
