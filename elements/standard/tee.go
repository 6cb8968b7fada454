package standard

import (
	"github.com/clickrouter/router/router"
	"github.com/clickrouter/router/routerconfig"
)

// Tee pushes a clone of each input packet to every output but the
// last, which receives the original packet, per
// original_source/elements/standard/broadcast.cc's push(). Config:
// `Tee([NOUTPUTS])`; NOUTPUTS defaults to 2.
type Tee struct {
	router.BaseElement

	noutputs int
}

func (t *Tee) ClassName() string  { return "Tee" }
func (t *Tee) PortCount() string  { return "1/-" }
func (t *Tee) Processing() string { return "h/h" }
func (t *Tee) FlowCode() string   { return "x/x" }

func (t *Tee) Configure(args []string, errh *router.ErrorHandler) error {
	t.noutputs = 2
	if len(args) > 0 {
		n, status := routerconfig.ParseInt64(args[0])
		if status != routerconfig.StatusOK || n < 0 {
			return errh.Errorf("Tee", "bad output-count argument %q", args[0])
		}
		t.noutputs = int(n)
	}
	return nil
}

func (t *Tee) Push(rv *router.RouterView, port int, p *router.Packet) {
	n := t.noutputs
	for i := 0; i < n-1; i++ {
		rv.Output(i).Push(p.Clone())
	}
	if n > 0 {
		rv.Output(n - 1).Push(p)
	} else {
		p.Kill()
	}
}
