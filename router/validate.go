package router

import (
	"fmt"
)

// Validate runs spec.md §4.2's validation phase: arity resolution,
// connectivity checks, and push/pull assignment propagation. On
// success the router transitions to StatePreconfigure and its topology
// is frozen (spec.md §3 invariant: "Once state >= PRECONFIGURE,
// connection topology is frozen").
func (r *Router) Validate(errh *ErrorHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.resolveArities(errh); err != nil {
		return err
	}
	if err := r.buildPortConnections(errh); err != nil {
		return err
	}
	if err := r.resolveProcessing(errh); err != nil {
		return err
	}
	if err := r.checkConnectivity(errh); err != nil {
		return err
	}
	r.resolveActiveEndpoints()
	r.computeConfigureOrder()
	r.state = StatePreconfigure
	return nil
}

// resolveArities implements spec.md §4.2 steps 1-2: each element's
// arity is the max port index actually used plus one, clamped into the
// declared port_count range via notify_nports.
func (r *Router) resolveArities(errh *ErrorHandler) error {
	usedIn := make([]int, len(r.elements))
	usedOut := make([]int, len(r.elements))
	for _, c := range r.connections {
		if n := c.From.port + 1; n > usedOut[c.From.elem] {
			usedOut[c.From.elem] = n
		}
		if n := c.To.port + 1; n > usedIn[c.To.elem] {
			usedIn[c.To.elem] = n
		}
	}
	for i, es := range r.elements {
		spec, err := parsePortCount(es.elem.PortCount())
		if err != nil {
			return errh.Errorf(es.name, "bad port_count: %v", err)
		}
		nin, nout, err := notifyNPorts(spec, usedIn[i], usedOut[i])
		if err != nil {
			return errh.Errorf(es.name, "%v", err)
		}
		es.nin, es.nout = nin, nout
		es.inputs = make([]portState, nin)
		es.outputs = make([]portState, nout)
	}
	return nil
}

// buildPortConnections rejects connections referencing nonexistent
// ports and records, per port, which connection indices touch it.
func (r *Router) buildPortConnections(errh *ErrorHandler) error {
	for ci, c := range r.connections {
		from := r.elements[c.From.elem]
		to := r.elements[c.To.elem]
		if c.From.port < 0 || c.From.port >= from.nout {
			return errh.Errorf(from.name, "output port %d out of range (have %d)", c.From.port, from.nout)
		}
		if c.To.port < 0 || c.To.port >= to.nin {
			return errh.Errorf(to.name, "input port %d out of range (have %d)", c.To.port, to.nin)
		}
		from.outputs[c.From.port].connections = append(from.outputs[c.From.port].connections, ci)
		to.inputs[c.To.port].connections = append(to.inputs[c.To.port].connections, ci)
	}
	return nil
}

// resolveProcessing implements spec.md §4.2 step 4: assign push/pull
// to each port, propagating known values across connections and
// across each element's flow-code reachable-port sets until a fixed
// point, erroring on conflicts.
func (r *Router) resolveProcessing(errh *ErrorHandler) error {
	for _, es := range r.elements {
		inCodes, outCodes, err := parseProcessing(es.elem.Processing(), es.nin, es.nout)
		if err != nil {
			return errh.Errorf(es.name, "%v", err)
		}
		flowSpec := es.flowOverride
		if flowSpec == "" {
			flowSpec = es.elem.FlowCode()
		}
		ins, outs, err := parseFlowCode(flowSpec, es.nin, es.nout)
		if err != nil {
			return errh.Errorf(es.name, "%v", err)
		}
		for i := range es.inputs {
			es.inputs[i].code = inCodes[i]
			es.inputs[i].kind = codeToKind(inCodes[i])
			es.inputs[i].flow = ins[i]
		}
		for j := range es.outputs {
			es.outputs[j].code = outCodes[j]
			es.outputs[j].kind = codeToKind(outCodes[j])
			es.outputs[j].flow = outs[j]
		}
	}

	for pass := 0; pass < len(r.elements)+len(r.connections)+2; pass++ {
		changed := false
		for _, c := range r.connections {
			from := &r.elements[c.From.elem].outputs[c.From.port]
			to := &r.elements[c.To.elem].inputs[c.To.port]
			ch, err := unifyKind(from, to)
			if err != nil {
				return errh.Errorf(r.elements[c.To.elem].name,
					"push/pull conflict on connection %s[%d] -> %s[%d]: %v",
					r.elements[c.From.elem].name, c.From.port, r.elements[c.To.elem].name, c.To.port, err)
			}
			changed = changed || ch
		}
		for _, es := range r.elements {
			for i := range es.inputs {
				for j := range es.outputs {
					if !flowsTo(codesOf(es.inputs), codesOf(es.outputs), i, j) {
						continue
					}
					ch, err := unifyKind(&es.inputs[i], &es.outputs[j])
					if err != nil {
						return errh.Errorf(es.name, "push/pull conflict between input %d and output %d: %v", i, j, err)
					}
					changed = changed || ch
				}
			}
		}
		if !changed {
			break
		}
	}

	// Any port never constrained defaults to push, matching upstream
	// Click's behavior for fully agnostic subgraphs with no forcing
	// neighbor; this is not a spec.md invariant, just a tie-break.
	for _, es := range r.elements {
		for i := range es.inputs {
			if es.inputs[i].kind == kindUnknown {
				es.inputs[i].kind = kindPush
			}
		}
		for j := range es.outputs {
			if es.outputs[j].kind == kindUnknown {
				es.outputs[j].kind = kindPush
			}
		}
	}
	return nil
}

func codesOf(ports []portState) []portCode {
	out := make([]portCode, len(ports))
	for i, p := range ports {
		out[i] = p.flow
	}
	return out
}

func unifyKind(a, b *portState) (changed bool, err error) {
	if a.kind == kindUnknown && b.kind == kindUnknown {
		return false, nil
	}
	if a.kind == kindUnknown {
		a.kind = b.kind
		return true, nil
	}
	if b.kind == kindUnknown {
		b.kind = a.kind
		return true, nil
	}
	if a.kind != b.kind {
		return false, fmt.Errorf("%s vs %s", a.kind, b.kind)
	}
	return false, nil
}

// checkConnectivity implements spec.md §3's router invariants: every
// push output has exactly one connected push input and vice versa, no
// push-to-pull or pull-to-push connections, no active port reused by
// more than one connection, and a warning for any unconnected port of
// nonzero arity.
func (r *Router) checkConnectivity(errh *ErrorHandler) error {
	for _, c := range r.connections {
		from := &r.elements[c.From.elem].outputs[c.From.port]
		to := &r.elements[c.To.elem].inputs[c.To.port]
		if from.kind != to.kind {
			return errh.Errorf(r.elements[c.To.elem].name,
				"cannot connect %s output to %s input", from.kind, to.kind)
		}
	}
	for _, es := range r.elements {
		for i, in := range es.inputs {
			if in.kind == kindPull {
				if len(in.connections) == 0 {
					return errh.Errorf(es.name, "pull input %d has no connected output", i)
				}
				if len(in.connections) > 1 {
					return errh.Errorf(es.name, "pull input %d reused by %d connections", i, len(in.connections))
				}
			} else if len(in.connections) == 0 {
				errh.Warnf(es.name, "push input %d is never connected", i)
			}
		}
		for j, out := range es.outputs {
			if out.kind == kindPush {
				if len(out.connections) == 0 {
					return errh.Errorf(es.name, "push output %d has no connected input", j)
				}
				if len(out.connections) > 1 {
					return errh.Errorf(es.name, "push output %d reused by %d connections", j, len(out.connections))
				}
			} else if len(out.connections) == 0 {
				errh.Warnf(es.name, "pull output %d is never connected", j)
			}
		}
	}
	return nil
}

// resolveActiveEndpoints caches, for every active port (push output,
// pull input), the single connected counterpart so runtime push/pull
// dispatch is an O(1) lookup rather than a connection-list scan.
func (r *Router) resolveActiveEndpoints() {
	for _, c := range r.connections {
		from := &r.elements[c.From.elem].outputs[c.From.port]
		to := &r.elements[c.To.elem].inputs[c.To.port]
		if from.kind == kindPush {
			from.active = true
			from.activeEnd = c.To
		}
		if to.kind == kindPull {
			to.active = true
			to.activeEnd = c.From
		}
	}
}
