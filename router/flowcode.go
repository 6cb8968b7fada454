package router

import (
	"fmt"
	"strings"
)

// portCode is one input's or output's flow-code: a set of letters
// and/or the port-identity marker '#', per spec.md §3/§4.2.
type portCode struct {
	letters map[rune]bool
	hash    bool
}

func (c portCode) matches(other portCode, sameIndex bool) bool {
	for l := range c.letters {
		if other.letters[l] {
			return true
		}
	}
	return c.hash && other.hash && sameIndex
}

// parseFlowCode parses "inputcodes/outputcodes" into nin and nout
// portCodes, expanding the trailing code to cover any further ports,
// per spec.md §4.2.
func parseFlowCode(spec string, nin, nout int) (ins, outs []portCode, err error) {
	if spec == "" {
		spec = "x/x" // no declared flow code: every input may flow to every output
	}
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("flow_code %q: expected input/output", spec)
	}
	ins, err = parseCodeSide(parts[0], nin)
	if err != nil {
		return nil, nil, fmt.Errorf("flow_code %q: input side: %w", spec, err)
	}
	outs, err = parseCodeSide(parts[1], nout)
	if err != nil {
		return nil, nil, fmt.Errorf("flow_code %q: output side: %w", spec, err)
	}
	return ins, outs, nil
}

func parseCodeSide(s string, n int) ([]portCode, error) {
	var codes []portCode
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '#':
			codes = append(codes, portCode{hash: true})
		case r == '[':
			j := i + 1
			set := map[rune]bool{}
			for j < len(runes) && runes[j] != ']' {
				set[runes[j]] = true
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated [ in flow code %q", s)
			}
			codes = append(codes, portCode{letters: set})
			i = j
		default:
			codes = append(codes, portCode{letters: map[rune]bool{r: true}})
		}
	}
	if len(codes) == 0 {
		return make([]portCode, n), nil
	}
	for len(codes) < n {
		codes = append(codes, codes[len(codes)-1])
	}
	return codes[:n], nil
}

// flowsTo reports whether a packet arriving on input i may flow to
// output j, per spec.md §4.2: codes share a letter, or both contain
// '#' and i == j.
func flowsTo(ins, outs []portCode, i, j int) bool {
	if i < 0 || i >= len(ins) || j < 0 || j >= len(outs) {
		return false
	}
	return ins[i].matches(outs[j], i == j)
}
