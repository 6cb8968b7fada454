package standard

import "github.com/clickrouter/router/router"

// Null passes every packet through unchanged. It is agnostic on both
// sides, so it collapses to whatever kind its neighbors resolve to
// during validation, per spec.md §4.2's flow_code/processing
// propagation and the "Agn" boundary scenario (spec.md §8.2).
type Null struct {
	router.BaseElement
}

func (n *Null) ClassName() string  { return "Null" }
func (n *Null) PortCount() string  { return "1/1" }
func (n *Null) Processing() string { return "a/a" }
func (n *Null) FlowCode() string   { return "x/x" }

func (n *Null) SimpleAction(rv *router.RouterView, p *router.Packet) *router.Packet {
	return p
}
