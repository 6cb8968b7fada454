package standard

import (
	"strings"

	"github.com/clickrouter/router/router"
	"github.com/clickrouter/router/routerconfig"
	"go.uber.org/zap"
)

const defaultPrintBytes = 24

// Print logs each packet's length and a hex dump of its first N bytes,
// then passes it through unchanged. Grounded directly on
// original_source/elements/standard/print.cc's simple_action, with
// click_chatter replaced by structured logging via *zap.Logger, per
// SPEC_FULL.md's ambient-stack section.
type Print struct {
	router.BaseElement

	label string
	bytes int
	log   *zap.Logger
}

func (p *Print) ClassName() string  { return "Print" }
func (p *Print) PortCount() string  { return "1/1" }
func (p *Print) Processing() string { return "a/a" }
func (p *Print) FlowCode() string   { return "x/x" }

func (p *Print) Configure(args []string, errh *router.ErrorHandler) error {
	p.bytes = defaultPrintBytes
	if len(args) == 0 {
		return errh.Errorf("Print", "requires a label argument")
	}
	label, status := routerconfig.ParseString(args[0])
	if status != routerconfig.StatusOK {
		return errh.Errorf("Print", "bad label argument %q", args[0])
	}
	p.label = label
	if len(args) > 1 {
		n, status := routerconfig.ParseInt64(args[1])
		if status != routerconfig.StatusOK || n < 0 {
			return errh.Errorf("Print", "bad max-bytes argument %q", args[1])
		}
		p.bytes = int(n)
	}
	return nil
}

func (p *Print) Initialize(rv *router.RouterView, errh *router.ErrorHandler) error {
	p.log = rv.Logger()
	return nil
}

func (p *Print) SimpleAction(rv *router.RouterView, pkt *router.Packet) *router.Packet {
	data := pkt.Data()
	n := p.bytes
	if n > len(data) {
		n = len(data)
	}
	var hex strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 && i%4 == 0 {
			hex.WriteByte(' ')
		}
		const hexdigits = "0123456789abcdef"
		b := data[i]
		hex.WriteByte(hexdigits[b>>4])
		hex.WriteByte(hexdigits[b&0xf])
	}
	p.log.Info("Print", zap.String("label", p.label), zap.Int("length", pkt.Length()), zap.String("data", hex.String()))
	return pkt
}
