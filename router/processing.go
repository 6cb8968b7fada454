package router

import (
	"fmt"
	"strings"
)

// parseProcessing parses the per-port push/pull/agnostic specifier
// from spec.md §3: "incodes/outcodes", each code one of 'h' (push),
// 'l' (pull), 'a' (agnostic); the trailing character of each side
// extends to any further ports on that side.
func parseProcessing(spec string, nin, nout int) (inCodes, outCodes []byte, err error) {
	if spec == "" {
		spec = "a/a"
	}
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	inCodes, err = expandCodes(parts[0], nin)
	if err != nil {
		return nil, nil, fmt.Errorf("processing %q: input side: %w", spec, err)
	}
	outCodes, err = expandCodes(parts[1], nout)
	if err != nil {
		return nil, nil, fmt.Errorf("processing %q: output side: %w", spec, err)
	}
	return inCodes, outCodes, nil
}

func expandCodes(s string, n int) ([]byte, error) {
	var codes []byte
	for _, r := range s {
		switch r {
		case 'h', 'l', 'a':
			codes = append(codes, byte(r))
		default:
			return nil, fmt.Errorf("bad processing code %q", r)
		}
	}
	if len(codes) == 0 {
		codes = []byte{'a'}
	}
	for len(codes) < n {
		codes = append(codes, codes[len(codes)-1])
	}
	return codes[:n], nil
}

func codeToKind(c byte) portKind {
	switch c {
	case 'h':
		return kindPush
	case 'l':
		return kindPull
	default:
		return kindUnknown
	}
}
