package router

// LifecycleStage records the highest point an Element's lifecycle
// reached, passed to Cleanup so the element knows which resources it
// actually owns, per spec.md §4.2's lifecycle state machine.
type LifecycleStage int

const (
	StageNew LifecycleStage = iota
	StageAttached
	StageConfigured
	StageConfigureFailed
	StageInitialized
	StageInitializeFailed
	StageLive
)

func (s LifecycleStage) String() string {
	switch s {
	case StageNew:
		return "new"
	case StageAttached:
		return "attached"
	case StageConfigured:
		return "configured"
	case StageConfigureFailed:
		return "configure-failed"
	case StageInitialized:
		return "initialized"
	case StageInitializeFailed:
		return "initialize-failed"
	case StageLive:
		return "live"
	default:
		return "unknown"
	}
}

// Element is the minimum interface every element implements, per
// spec.md §6 "Element-facing API". It deliberately mirrors the
// narrowness of caddyserver-caddy's Module interface (modules.go:52-58):
// a single mandatory identity method, with everything else recovered
// either from identity strings or via an optional-interface type
// assertion (Pusher, Puller, SimpleActioner, TaskRunner, ...) rather
// than a single god-interface every element must fully implement.
type Element interface {
	// ClassName returns the element's class name, used for diagnostics
	// and for matching instances across a hot-swap.
	ClassName() string

	// PortCount returns the "in/out" port-count specifier, per
	// spec.md §3 ("lo", "lo-hi", "lo-", "-hi", "=", "=+k").
	PortCount() string

	// Processing returns the per-port push('h')/pull('l')/agnostic('a')
	// processing specifier, trailing-character-extends, per spec.md §3.
	Processing() string

	// FlowCode returns the port-to-port reachability specifier
	// ("inputcodes/outputcodes"), per spec.md §4.2.
	FlowCode() string

	// Flags returns the element's short flag string.
	Flags() string

	// ConfigurePhase returns the integer used to order configure/
	// initialize calls across elements (spec.md §4.4).
	ConfigurePhase() int

	// Configure parses args (already split into configuration tokens)
	// and applies them to the element's fields. It must not assume any
	// other element has been configured yet.
	Configure(args []string, errh *ErrorHandler) error

	// AddHandlers installs this element's handlers via the given
	// adder. Called after all elements are configured, before any are
	// initialized.
	AddHandlers(h *HandlerAdder)

	// Initialize is called once per element, in configure order, after
	// AddHandlers. rv gives access to router-scoped services (logger,
	// scheduler, attachments) without the element holding a raw
	// *Router reference, per spec.md §9's arena/back-reference design
	// note.
	Initialize(rv *RouterView, errh *ErrorHandler) error

	// Cleanup releases any resources the element acquired, given the
	// highest lifecycle stage actually reached.
	Cleanup(stage LifecycleStage)
}

// Pusher is implemented by elements that handle push(port, packet)
// themselves rather than relying on the default SimpleAction-based
// push, per spec.md §4.2.
type Pusher interface {
	Push(rv *RouterView, port int, p *Packet)
}

// Puller is implemented by elements that handle pull(port) themselves.
type Puller interface {
	Pull(rv *RouterView, port int) *Packet
}

// SimpleActioner is implemented by elements that only transform single
// packets. The runtime supplies a default Push/Pull built on top of it,
// per spec.md §4.2's simple_action contract: SimpleAction must account
// for its argument by returning it (possibly modified), returning nil
// after killing it, or redirecting it out a side port itself.
type SimpleActioner interface {
	SimpleAction(rv *RouterView, p *Packet) *Packet
}

// TaskRunner is implemented by elements that register a scheduler
// Task. RunTask returns whether it did work, per spec.md §4.5.
type TaskRunner interface {
	RunTask(t *Task) bool
}

// TimerRunner is implemented by elements that schedule Timers.
type TimerRunner interface {
	RunTimer(t *Timer)
}

// StateTaker is implemented by elements that participate in hot-swap
// state transfer (spec.md §4.4 step 8).
type StateTaker interface {
	TakeState(old Element, errh *ErrorHandler) error
}

// LiveReconfigurer is implemented by elements that support
// live_reconfigure (spec.md §6).
type LiveReconfigurer interface {
	CanLiveReconfigure() bool
	LiveReconfigure(args []string, errh *ErrorHandler) error
}

// LLRPCHandler is implemented by elements exposing a low-level RPC
// escape hatch (llrpc, spec.md §6).
type LLRPCHandler interface {
	LLRPC(command int, data []byte) (int, []byte)
}

// Caster is an optional secondary-interface escape hatch, the Go
// analog of Click's cast(name): an element may expose additional,
// named capability interfaces beyond the narrow Element set (e.g. a
// Notifier, or grid.LinkCache), discovered by callers via a type
// switch on the value Cast returns.
type Caster interface {
	Cast(name string) any
}

// BaseElement supplies reasonable zero-value defaults for the optional
// parts of Element, so concrete elements need only embed it and
// override what they use — the same "most fields are defaulted"
// texture as caddyserver-caddy's modules that only implement
// Provisioner OR Validator, never both.
type BaseElement struct{}

func (BaseElement) Flags() string               { return "" }
func (BaseElement) ConfigurePhase() int         { return 100 }
func (BaseElement) Configure([]string, *ErrorHandler) error { return nil }
func (BaseElement) AddHandlers(*HandlerAdder)   {}
func (BaseElement) Initialize(*RouterView, *ErrorHandler) error { return nil }
func (BaseElement) Cleanup(LifecycleStage)      {}
