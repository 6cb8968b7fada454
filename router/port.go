package router

// ElementHandle is an arena index into Router.elements. Elements never
// hold a *Router or pointers to each other directly; they borrow via
// handles and a RouterView, per spec.md §9's design note on back
// references and cycles.
type ElementHandle int

type connEndpoint struct {
	elem ElementHandle
	port int
}

// Connection is an unordered pair (from_output, to_input) of ports,
// per spec.md §3.
type Connection struct {
	From connEndpoint
	To   connEndpoint
}

type portKind int

const (
	kindUnknown portKind = iota
	kindPush
	kindPull
)

func (k portKind) String() string {
	switch k {
	case kindPush:
		return "push"
	case kindPull:
		return "pull"
	default:
		return "agnostic"
	}
}

// portState tracks one port's declared processing code and resolved
// kind, plus (once resolved) the single connected endpoint an active
// port pushes to or pulls from.
type portState struct {
	code        byte // 'h' (push), 'l' (pull), or 'a' (agnostic)
	kind        portKind
	flow        portCode
	connections []int // connection indices touching this port

	// resolved only for active ports (push output / pull input):
	// the single connected counterpart.
	active    bool
	activeEnd connEndpoint
}

// Port is a bound handle to one element's input or output port,
// usable as output(i).Push(p) / input(i).Pull(), per spec.md §4.2.
type Port struct {
	rv       *RouterView
	index    int
	isOutput bool
}

// Push transfers ownership of p to the connected input port's element,
// per spec.md §4.2. p must not be used by the caller afterward.
func (p Port) Push(pkt *Packet) {
	if !p.isOutput {
		panic("router: Push called on an input port")
	}
	p.rv.r.pushFromOutput(p.rv.elem, p.index, pkt)
}

// Pull invokes the connected output port's element and returns what it
// returned (possibly nil).
func (p Port) Pull() *Packet {
	if p.isOutput {
		panic("router: Pull called on an output port")
	}
	return p.rv.r.pullFromInput(p.rv.elem, p.index)
}
