// Package grid implements a source-routed ad-hoc routing exemplar
// (DSR: Dynamic Source Routing) on top of the router runtime, grounded
// on original_source/elements/grid/*. It is the spec's worked example
// of a non-trivial element built from the generic element/graph/config
// machinery in router and routerconfig.
package grid

import (
	"encoding/binary"
	"fmt"
	"net"
)

// IPProtoDSR is the IP protocol number DSR options travel under, per
// original_source/elements/grid/dsr.hh.
const IPProtoDSR = 200

// Option type tags, per dsr.hh's DSR_TYPE_* constants.
const (
	OptTypeRREP         = 1
	OptTypeRREQ         = 2
	OptTypeRERR         = 3
	OptTypeSourceRoute  = 96
)

// SalvageLimit bounds how many times a packet may be re-source-routed
// after a forwarding failure, per dsr.hh's DSR_SALVAGE_LIMIT.
const SalvageLimit = 4

// hopWireLen is the on-wire size of one DSRHop entry: a 4-byte IPv4
// address followed by a 1-byte scaled metric.
const hopWireLen = 5

// optionsHeaderLen is the fixed 4-byte header preceding the option
// sequence: next-header, reserved, and a 2-byte total-options-length.
const optionsHeaderLen = 4

// DSRHop is one entry of a source route or request/reply accumulated
// route: a node address plus the scaled link metric leading to it,
// per dsr.hh's DSRHop (in_addr + metric_t byte).
type DSRHop struct {
	IP     net.IP
	Metric byte
}

func (h DSRHop) encode(b []byte) {
	copy(b[0:4], h.IP.To4())
	b[4] = h.Metric
}

func decodeHop(b []byte) DSRHop {
	ip := make(net.IP, 4)
	copy(ip, b[0:4])
	return DSRHop{IP: ip, Metric: b[4]}
}

// OptionsHeader is the 4-byte block preceding a packet's DSR option
// sequence.
type OptionsHeader struct {
	NextHeader         byte
	Reserved           byte
	TotalOptionsLength uint16
}

func (h OptionsHeader) Encode(b []byte) {
	b[0] = h.NextHeader
	b[1] = h.Reserved
	binary.BigEndian.PutUint16(b[2:4], h.TotalOptionsLength)
}

func DecodeOptionsHeader(b []byte) (OptionsHeader, error) {
	if len(b) < optionsHeaderLen {
		return OptionsHeader{}, fmt.Errorf("grid: options header truncated: %d bytes", len(b))
	}
	return OptionsHeader{
		NextHeader:         b[0],
		Reserved:           b[1],
		TotalOptionsLength: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// RREQOption is a route request: "who can reach Target", accumulating
// the metric-weighted hop list of every forwarder it passes through.
type RREQOption struct {
	ID     uint16
	Target net.IP
	Hops   []DSRHop
}

// WireLen is the option's total encoded length including the 2-byte
// type/len prefix.
func (o RREQOption) WireLen() int { return 2 + 2 + 4 + len(o.Hops)*hopWireLen }

func (o RREQOption) Encode(b []byte) {
	b[0] = OptTypeRREQ
	b[1] = byte(o.WireLen() - 2)
	binary.BigEndian.PutUint16(b[2:4], o.ID)
	copy(b[4:8], o.Target.To4())
	off := 8
	for _, h := range o.Hops {
		h.encode(b[off : off+hopWireLen])
		off += hopWireLen
	}
}

func DecodeRREQOption(b []byte) (RREQOption, error) {
	if len(b) < 8 {
		return RREQOption{}, fmt.Errorf("grid: RREQ option truncated: %d bytes", len(b))
	}
	total := int(b[1]) + 2
	if total > len(b) {
		return RREQOption{}, fmt.Errorf("grid: RREQ option claims %d bytes, have %d", total, len(b))
	}
	n := (total - 8) / hopWireLen
	hops := make([]DSRHop, 0, n)
	off := 8
	for i := 0; i < n; i++ {
		hops = append(hops, decodeHop(b[off:off+hopWireLen]))
		off += hopWireLen
	}
	target := make(net.IP, 4)
	copy(target, b[4:8])
	return RREQOption{
		ID:     binary.BigEndian.Uint16(b[2:4]),
		Target: target,
		Hops:   hops,
	}, nil
}

// RREPOption is a route reply carrying the accumulated source route
// back to a request's originator.
type RREPOption struct {
	Flags byte
	Hops  []DSRHop
}

// WireLen accounts for the extra pad byte dsr.hh's click_dsr_rrep
// carries alongside flags, per its length()=dsr_len+3 convention.
func (o RREPOption) WireLen() int { return 2 + 2 + len(o.Hops)*hopWireLen }

func (o RREPOption) Encode(b []byte) {
	b[0] = OptTypeRREP
	b[1] = byte(o.WireLen() - 3)
	b[2] = o.Flags
	b[3] = 0 // pad
	off := 4
	for _, h := range o.Hops {
		h.encode(b[off : off+hopWireLen])
		off += hopWireLen
	}
}

func DecodeRREPOption(b []byte) (RREPOption, error) {
	if len(b) < 4 {
		return RREPOption{}, fmt.Errorf("grid: RREP option truncated: %d bytes", len(b))
	}
	total := int(b[1]) + 3
	if total > len(b) {
		return RREPOption{}, fmt.Errorf("grid: RREP option claims %d bytes, have %d", total, len(b))
	}
	n := (total - 4) / hopWireLen
	hops := make([]DSRHop, 0, n)
	off := 4
	for i := 0; i < n; i++ {
		hops = append(hops, decodeHop(b[off:off+hopWireLen]))
		off += hopWireLen
	}
	return RREPOption{Flags: b[2], Hops: hops}, nil
}

// RERROption reports a broken link between ErrSrc and ErrDst,
// discovered while forwarding on behalf of the sender of the original
// data. UnreachableAddr is the address the original data packet could
// not be delivered to (the destination of the route being torn down),
// per dsr.hh's click_dsr_rerr.
type RERROption struct {
	ErrorType       byte
	Flags           byte
	ErrSrc          net.IP
	ErrDst          net.IP
	UnreachableAddr net.IP
}

func (o RERROption) WireLen() int { return 2 + 2 + 4 + 4 + 4 }

func (o RERROption) Encode(b []byte) {
	b[0] = OptTypeRERR
	b[1] = byte(o.WireLen() - 2)
	b[2] = o.ErrorType
	b[3] = o.Flags
	copy(b[4:8], o.ErrSrc.To4())
	copy(b[8:12], o.ErrDst.To4())
	copy(b[12:16], o.UnreachableAddr.To4())
}

func DecodeRERROption(b []byte) (RERROption, error) {
	if len(b) < 16 {
		return RERROption{}, fmt.Errorf("grid: RERR option truncated: %d bytes", len(b))
	}
	src := make(net.IP, 4)
	copy(src, b[4:8])
	dst := make(net.IP, 4)
	copy(dst, b[8:12])
	unreachable := make(net.IP, 4)
	copy(unreachable, b[12:16])
	return RERROption{ErrorType: b[2], Flags: b[3], ErrSrc: src, ErrDst: dst, UnreachableAddr: unreachable}, nil
}

// SourceRouteOption carries an explicit source route and the number of
// hops still to consume (SegsLeft; the next hop is
// Hops[len(Hops)-SegsLeft]), for data packets travelling a route
// already discovered.
type SourceRouteOption struct {
	Salvage   byte
	SegsLeft  byte
	Hops      []DSRHop
}

func (o SourceRouteOption) WireLen() int { return 2 + 2 + len(o.Hops)*hopWireLen }

func (o SourceRouteOption) Encode(b []byte) {
	b[0] = OptTypeSourceRoute
	b[1] = byte(o.WireLen() - 2)
	b[2] = o.Salvage
	b[3] = o.SegsLeft
	off := 4
	for _, h := range o.Hops {
		h.encode(b[off : off+hopWireLen])
		off += hopWireLen
	}
}

func DecodeSourceRouteOption(b []byte) (SourceRouteOption, error) {
	if len(b) < 4 {
		return SourceRouteOption{}, fmt.Errorf("grid: source-route option truncated: %d bytes", len(b))
	}
	total := int(b[1]) + 2
	if total > len(b) {
		return SourceRouteOption{}, fmt.Errorf("grid: source-route option claims %d bytes, have %d", total, len(b))
	}
	n := (total - 4) / hopWireLen
	hops := make([]DSRHop, 0, n)
	off := 4
	for i := 0; i < n; i++ {
		hops = append(hops, decodeHop(b[off:off+hopWireLen]))
		off += hopWireLen
	}
	return SourceRouteOption{Salvage: b[2], SegsLeft: b[3], Hops: hops}, nil
}

// NextHop returns the hop the packet should be forwarded to next, and
// whether any remain.
func (o SourceRouteOption) NextHop() (DSRHop, bool) {
	if o.SegsLeft == 0 || int(o.SegsLeft) > len(o.Hops) {
		return DSRHop{}, false
	}
	idx := len(o.Hops) - int(o.SegsLeft)
	return o.Hops[idx], true
}

// peekOptionType reads an option's type tag without consuming it.
func peekOptionType(b []byte) (byte, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("grid: option header truncated")
	}
	return b[0], nil
}

// optionWireLen returns how many bytes the option starting at b
// occupies, without fully decoding it, so callers can walk a packed
// option sequence.
func optionWireLen(b []byte) (int, error) {
	typ, err := peekOptionType(b)
	if err != nil {
		return 0, err
	}
	switch typ {
	case OptTypeRREQ:
		o, err := DecodeRREQOption(b)
		if err != nil {
			return 0, err
		}
		return o.WireLen(), nil
	case OptTypeRREP:
		o, err := DecodeRREPOption(b)
		if err != nil {
			return 0, err
		}
		return o.WireLen(), nil
	case OptTypeRERR:
		o, err := DecodeRERROption(b)
		if err != nil {
			return 0, err
		}
		return o.WireLen(), nil
	case OptTypeSourceRoute:
		o, err := DecodeSourceRouteOption(b)
		if err != nil {
			return 0, err
		}
		return o.WireLen(), nil
	default:
		return 0, fmt.Errorf("grid: unknown DSR option type %d", typ)
	}
}
