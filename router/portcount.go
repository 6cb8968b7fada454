package router

import (
	"fmt"
	"strconv"
	"strings"
)

// portRange is one side (input or output) of a parsed PortCount
// specifier: [Lo, Hi] with Hi == -1 meaning unbounded, or Same (the
// "=" form, output count must equal the chosen input count) with
// SameOffset added ("=+k").
type portRange struct {
	lo, hi     int
	same       bool
	sameOffset int
}

func (r portRange) allows(n int) bool {
	if r.hi < 0 {
		return n >= r.lo
	}
	return n >= r.lo && n <= r.hi
}

// clamp returns n adjusted into the allowed range: if n is below lo,
// returns lo; if above a bounded hi, returns hi; otherwise n unchanged.
func (r portRange) clamp(n int) int {
	if n < r.lo {
		return r.lo
	}
	if r.hi >= 0 && n > r.hi {
		return r.hi
	}
	return n
}

type parsedPortCount struct {
	in  portRange
	out portRange
}

// parsePortCount parses the port_count syntax from spec.md §3:
// "in/out" where each side is lo, lo-hi, lo-, -hi, or (output side
// only) the special forms "=" (same as inputs) and "=+k" (inputs + k).
func parsePortCount(spec string) (parsedPortCount, error) {
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 {
		return parsedPortCount{}, fmt.Errorf("port_count %q: expected in/out", spec)
	}
	in, err := parseRange(parts[0], false)
	if err != nil {
		return parsedPortCount{}, fmt.Errorf("port_count %q: input side: %w", spec, err)
	}
	out, err := parseRange(parts[1], true)
	if err != nil {
		return parsedPortCount{}, fmt.Errorf("port_count %q: output side: %w", spec, err)
	}
	return parsedPortCount{in: in, out: out}, nil
}

func parseRange(s string, allowSame bool) (portRange, error) {
	s = strings.TrimSpace(s)
	if allowSame && s == "=" {
		return portRange{same: true}, nil
	}
	if allowSame && strings.HasPrefix(s, "=+") {
		k, err := strconv.Atoi(s[2:])
		if err != nil {
			return portRange{}, fmt.Errorf("bad =+k form %q: %w", s, err)
		}
		return portRange{same: true, sameOffset: k}, nil
	}
	if s == "" {
		return portRange{}, fmt.Errorf("empty port range")
	}
	if strings.HasPrefix(s, "-") {
		hi, err := strconv.Atoi(s[1:])
		if err != nil {
			return portRange{}, fmt.Errorf("bad -hi form %q: %w", s, err)
		}
		return portRange{lo: 0, hi: hi}, nil
	}
	if strings.HasSuffix(s, "-") {
		lo, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return portRange{}, fmt.Errorf("bad lo- form %q: %w", s, err)
		}
		return portRange{lo: lo, hi: -1}, nil
	}
	if idx := strings.Index(s, "-"); idx > 0 {
		lo, err := strconv.Atoi(s[:idx])
		if err != nil {
			return portRange{}, fmt.Errorf("bad lo-hi form %q: %w", s, err)
		}
		hi, err := strconv.Atoi(s[idx+1:])
		if err != nil {
			return portRange{}, fmt.Errorf("bad lo-hi form %q: %w", s, err)
		}
		return portRange{lo: lo, hi: hi}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return portRange{}, fmt.Errorf("bad port count %q: %w", s, err)
	}
	return portRange{lo: n, hi: n}, nil
}

// notifyNPorts implements spec.md §4.2 step 2: the default resolution
// of actual input/output arities from the max port index used, clamped
// into the declared port_count range, with "=" / "=+k" resolved from
// the chosen input count.
func notifyNPorts(spec parsedPortCount, usedIn, usedOut int) (nin, nout int, err error) {
	nin = spec.in.clamp(usedIn)
	if !spec.in.allows(nin) {
		return 0, 0, fmt.Errorf("input port count %d not in allowed range", nin)
	}
	if spec.out.same {
		nout = nin + spec.out.sameOffset
	} else {
		nout = spec.out.clamp(usedOut)
		if !spec.out.allows(nout) {
			return 0, 0, fmt.Errorf("output port count %d not in allowed range", nout)
		}
	}
	return nin, nout, nil
}
