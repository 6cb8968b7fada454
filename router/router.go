package router

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RouterState is the Router's coarse lifecycle state, per spec.md §3.
type RouterState int

const (
	StateNewRouter RouterState = iota
	StatePreconfigure
	StatePreinitialize
	StateLiveRouter
	StateDeadRouter
)

func (s RouterState) String() string {
	switch s {
	case StateNewRouter:
		return "new"
	case StatePreconfigure:
		return "preconfigure"
	case StatePreinitialize:
		return "preinitialize"
	case StateLiveRouter:
		return "live"
	case StateDeadRouter:
		return "dead"
	default:
		return "unknown"
	}
}

// Requirement is a (package, version) pair recorded by require(), per
// spec.md §4.7.
type Requirement struct {
	Package string
	Version string
}

type elementState struct {
	name     string
	elem     Element
	landmark string
	args     []string

	nin, nout int
	inputs    []portState
	outputs   []portState

	stage LifecycleStage

	flowOverride string
}

// Router owns an element set: the element graph, its connections, and
// the bookkeeping needed to configure, validate, initialize, schedule,
// and hot-swap it, per spec.md §3/§4.4.
type Router struct {
	ID uuid.UUID

	mu          sync.Mutex
	elements    []*elementState
	nameIndex   map[string]ElementHandle
	connections []Connection

	configureOrder []ElementHandle
	state          RouterState

	runcount atomic.Int64

	handlers    *handlerTable
	attachMu    sync.RWMutex
	attachments map[string]any

	requirements  []Requirement
	compactConfig bool

	log       *zap.Logger
	scheduler *Scheduler
	metrics   *Metrics

	// rawConfig is the original textual configuration, dropped if the
	// compact_config requirement was present, per spec.md §4.7.
	rawConfig string
}

// stopRuncount (Click's STOP_RUNCOUNT) is the negative floor used by AdjustRuncount's
// saturating add, per spec.md §4.4.
const stopRuncount = -(int64(1) << 30)
const maxRuncount = int64(0x7FFFFFFF)

// NewRouter creates an empty Router in state NEW.
func NewRouter(log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		ID:          uuid.New(),
		nameIndex:   make(map[string]ElementHandle),
		attachments: make(map[string]any),
		handlers:    newHandlerTable(),
		log:         log,
		metrics:     NewMetrics(),
	}
	r.runcount.Store(1)
	return r
}

// Logger returns the router's structured logger.
func (r *Router) Logger() *zap.Logger { return r.log }

// Metrics returns the router's Prometheus collector bundle.
func (r *Router) Metrics() *Metrics { return r.metrics }

// State returns the router's current lifecycle state.
func (r *Router) State() RouterState { return r.state }

// AddElement attaches a new Element instance to the router under the
// given name (must be unique) at the given landmark (source position
// for diagnostics). Only valid while State() == StateNewRouter.
func (r *Router) AddElement(name string, e Element, landmark string, args []string) (ElementHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateNewRouter {
		return 0, fmt.Errorf("router: cannot add elements after topology is frozen")
	}
	if _, exists := r.nameIndex[name]; exists {
		return 0, fmt.Errorf("router: duplicate element name %q", name)
	}
	h := ElementHandle(len(r.elements))
	r.elements = append(r.elements, &elementState{
		name:     name,
		elem:     e,
		landmark: landmark,
		args:     args,
	})
	r.nameIndex[name] = h
	return h, nil
}

// Connect records a connection from (fromElem, fromPort) to (toElem,
// toPort). Only valid while State() == StateNewRouter; topology is
// frozen once validation begins (spec.md §3 invariant).
func (r *Router) Connect(fromElem ElementHandle, fromPort int, toElem ElementHandle, toPort int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateNewRouter {
		return fmt.Errorf("router: cannot connect after topology is frozen")
	}
	if int(fromElem) >= len(r.elements) || int(toElem) >= len(r.elements) {
		return fmt.Errorf("router: connect: element handle out of range")
	}
	r.connections = append(r.connections, Connection{
		From: connEndpoint{elem: fromElem, port: fromPort},
		To:   connEndpoint{elem: toElem, port: toPort},
	})
	return nil
}

// AddRequirement records a require() package/version pair, per
// spec.md §4.7. A requirement named "compact_config" instructs the
// router to drop its stored textual configuration once the graph is
// built.
func (r *Router) AddRequirement(pkg, version string) {
	if pkg == "compact_config" {
		r.compactConfig = true
		return
	}
	r.requirements = append(r.requirements, Requirement{Package: pkg, Version: version})
}

// SetFlowCodeOverride overrides the static flow code of the named
// element, per spec.md §3's flow_code_override.
func (r *Router) SetFlowCodeOverride(h ElementHandle, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(h) < len(r.elements) {
		r.elements[h].flowOverride = code
	}
}

// SetRawConfig stores the textual configuration that produced this
// router, for diagnostics and for the admin API's read-back handler.
// It is cleared if compact_config was required.
func (r *Router) SetRawConfig(text string) { r.rawConfig = text }

// RawConfig returns the stored textual configuration, or "" if it was
// dropped by compact_config.
func (r *Router) RawConfig() string {
	if r.compactConfig {
		return ""
	}
	return r.rawConfig
}

// ElementByName looks up an element handle by name.
func (r *Router) ElementByName(name string) (ElementHandle, bool) {
	h, ok := r.nameIndex[name]
	return h, ok
}

// ElementName returns the name of the element at h.
func (r *Router) ElementName(h ElementHandle) string {
	if int(h) >= len(r.elements) {
		return ""
	}
	return r.elements[h].name
}

// NumElements returns the number of elements attached to the router.
func (r *Router) NumElements() int { return len(r.elements) }

// Element returns the Element implementation at handle h.
func (r *Router) Element(h ElementHandle) Element {
	if int(h) >= len(r.elements) {
		return nil
	}
	return r.elements[h].elem
}

// Attachment returns a named cross-element singleton slot.
func (r *Router) Attachment(name string) any {
	r.attachMu.RLock()
	defer r.attachMu.RUnlock()
	return r.attachments[name]
}

// SetAttachment sets a named cross-element singleton slot.
func (r *Router) SetAttachment(name string, v any) {
	r.attachMu.Lock()
	defer r.attachMu.Unlock()
	r.attachments[name] = v
}

// Scheduler returns the router's scheduler, created lazily.
func (r *Router) Scheduler() *Scheduler {
	if r.scheduler == nil {
		r.scheduler = NewScheduler(1)
	}
	return r.scheduler
}

// SetScheduler installs a pre-built scheduler (e.g. with more than one
// thread), before Run is called.
func (r *Router) SetScheduler(s *Scheduler) { r.scheduler = s }

// computeConfigureOrder stable-sorts element handles by ConfigurePhase,
// per spec.md §4.4 step 3.
func (r *Router) computeConfigureOrder() {
	order := make([]ElementHandle, len(r.elements))
	for i := range order {
		order[i] = ElementHandle(i)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return r.elements[order[i]].elem.ConfigurePhase() < r.elements[order[j]].elem.ConfigurePhase()
	})
	r.configureOrder = order
}

// Runcount returns the current runcount.
func (r *Router) Runcount() int64 { return r.runcount.Load() }

// SetRuncount replaces the runcount; n <= 0 requests a stop, per
// spec.md §4.4.
func (r *Router) SetRuncount(n int64) {
	r.runcount.Store(n)
}

// AdjustRuncount atomically adds delta to the runcount with
// saturation (ceiling 0x7FFFFFFF, floor stopRuncount), per spec.md
// §4.4. If the result is <= 0, a stop is requested.
func (r *Router) AdjustRuncount(delta int64) int64 {
	for {
		old := r.runcount.Load()
		next := old + delta
		if next > maxRuncount {
			next = maxRuncount
		}
		if next < stopRuncount {
			next = stopRuncount
		}
		if r.runcount.CompareAndSwap(old, next) {
			return next
		}
	}
}

// StopRequested reports whether the runcount has fallen to or below
// zero.
func (r *Router) StopRequested() bool { return r.runcount.Load() <= 0 }

// Requirements returns the recorded require() entries.
func (r *Router) Requirements() []Requirement {
	out := make([]Requirement, len(r.requirements))
	copy(out, r.requirements)
	return out
}

// RouterView is the thin, index-based handle elements use instead of
// holding a *Router reference, per spec.md §9's arena design note.
type RouterView struct {
	r    *Router
	elem ElementHandle
}

// Logger returns a logger scoped to this element's name and class.
func (v *RouterView) Logger() *zap.Logger {
	es := v.r.elements[v.elem]
	return v.r.log.With(zap.String("element", es.name), zap.String("class", es.elem.ClassName()))
}

// Output returns the bound Port handle for this element's output i.
func (v *RouterView) Output(i int) Port {
	return Port{rv: v, index: i, isOutput: true}
}

// Input returns the bound Port handle for this element's input i.
func (v *RouterView) Input(i int) Port {
	return Port{rv: v, index: i, isOutput: false}
}

// Attachment returns a named router-wide singleton.
func (v *RouterView) Attachment(name string) any { return v.r.Attachment(name) }

// SetAttachment sets a named router-wide singleton.
func (v *RouterView) SetAttachment(name string, val any) { v.r.SetAttachment(name, val) }

// FindElement looks up another element by name, returning its
// Element implementation directly (the Go analog of Click's cast-based
// element-to-element lookups, e.g. the DSR element reaching its
// configured Queue to yank packets).
func (v *RouterView) FindElement(name string) (Element, bool) {
	h, ok := v.r.ElementByName(name)
	if !ok {
		return nil, false
	}
	return v.r.Element(h), true
}

// AdjustRuncount adjusts the router-wide runcount.
func (v *RouterView) AdjustRuncount(delta int64) int64 { return v.r.AdjustRuncount(delta) }

// Scheduler returns the router's scheduler.
func (v *RouterView) Scheduler() *Scheduler { return v.r.Scheduler() }

// Metrics returns the router's metrics bundle.
func (v *RouterView) Metrics() *Metrics { return v.r.metrics }

// ElementName returns the name of the element at handle h.
func (v *RouterView) ElementName(h ElementHandle) string { return v.r.ElementName(h) }

// Self returns this view's own element handle and name.
func (v *RouterView) Self() (ElementHandle, string) {
	return v.elem, v.r.elements[v.elem].name
}
