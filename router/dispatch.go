package router

import "go.uber.org/zap"

// pushFromOutput delivers pkt to whatever is connected to
// (elem,port)'s single push counterpart, per spec.md §4.2's Port
// contract: ownership of pkt transfers to the target element's push.
func (r *Router) pushFromOutput(elem ElementHandle, port int, pkt *Packet) {
	es := r.elements[elem]
	if port < 0 || port >= len(es.outputs) || !es.outputs[port].active {
		r.dropPacket(es, pkt, "push on unconnected/non-push output")
		return
	}
	target := es.outputs[port].activeEnd
	r.deliverPush(target.elem, target.port, pkt)
}

func (r *Router) deliverPush(elem ElementHandle, port int, pkt *Packet) {
	es := r.elements[elem]
	rv := &RouterView{r: r, elem: elem}
	if pusher, ok := es.elem.(Pusher); ok {
		pusher.Push(rv, port, pkt)
		return
	}
	if actioner, ok := es.elem.(SimpleActioner); ok {
		if out := actioner.SimpleAction(rv, pkt); out != nil {
			rv.Output(port).Push(out)
		}
		return
	}
	r.dropPacket(es, pkt, "element has neither Push nor SimpleAction")
}

// pullFromInput invokes the connected output port's element's pull and
// returns what it returned (possibly nil).
func (r *Router) pullFromInput(elem ElementHandle, port int) *Packet {
	es := r.elements[elem]
	if port < 0 || port >= len(es.inputs) || !es.inputs[port].active {
		return nil
	}
	source := es.inputs[port].activeEnd
	return r.invokePull(source.elem, source.port)
}

func (r *Router) invokePull(elem ElementHandle, port int) *Packet {
	es := r.elements[elem]
	rv := &RouterView{r: r, elem: elem}
	if puller, ok := es.elem.(Puller); ok {
		return puller.Pull(rv, port)
	}
	if actioner, ok := es.elem.(SimpleActioner); ok {
		p := rv.Input(port).Pull()
		if p == nil {
			return nil
		}
		return actioner.SimpleAction(rv, p)
	}
	return nil
}

func (r *Router) dropPacket(es *elementState, pkt *Packet, reason string) {
	if pkt != nil {
		pkt.Kill()
	}
	r.metrics.PacketsDropped.WithLabelValues(es.name, reason).Inc()
	r.log.Warn("packet dropped", zap.String("element", es.name), zap.String("reason", reason))
}
