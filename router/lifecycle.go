package router

import (
	"fmt"

	"go.uber.org/zap"
)

// ConfigureAll calls every element's Configure(args, errh) in
// configure order. All elements are configured even if some fail, so
// errors accumulate (spec.md §4.4 step 4); the router only aborts
// after every element has had a chance.
func (r *Router) ConfigureAll(errh *ErrorHandler) error {
	if r.state != StatePreconfigure {
		return fmt.Errorf("router: ConfigureAll requires state preconfigure, have %s", r.state)
	}
	nerrBefore := errh.NErrors()
	for _, h := range r.configureOrder {
		es := r.elements[h]
		ctx := fmt.Sprintf("%s (%s)", es.name, es.landmark)
		if err := es.elem.Configure(es.args, errh); err != nil {
			errh.Warnf(ctx, "configure failed: %v", err)
			es.stage = StageConfigureFailed
			continue
		}
		es.stage = StageConfigured
	}
	if errh.NErrors() > nerrBefore {
		r.cleanupFrom(StageConfigureFailed)
		r.state = StateDeadRouter
		return fmt.Errorf("router: %d element(s) failed to configure", errh.NErrors()-nerrBefore)
	}
	r.state = StatePreinitialize
	return nil
}

// InstallHandlers installs standard handlers plus each element's own
// handlers (AddHandlers), per spec.md §4.4 step 6.
func (r *Router) InstallHandlers() {
	for _, h := range r.configureOrder {
		r.installStandardHandlers(h)
		r.elements[h].elem.AddHandlers(&HandlerAdder{r: r, elem: h})
	}
}

// InitializeAll calls every element's Initialize(rv, errh) in
// configure order, stopping at the first failure, per spec.md §4.4
// step 7.
func (r *Router) InitializeAll(errh *ErrorHandler) error {
	for _, h := range r.configureOrder {
		es := r.elements[h]
		rv := &RouterView{r: r, elem: h}
		ctx := fmt.Sprintf("%s (%s)", es.name, es.landmark)
		if err := es.elem.Initialize(rv, errh); err != nil {
			errh.Warnf(ctx, "initialize failed: %v", err)
			es.stage = StageInitializeFailed
			r.cleanupFrom(StageInitializeFailed)
			r.state = StateDeadRouter
			return fmt.Errorf("router: element %q failed to initialize: %w", es.name, err)
		}
		es.stage = StageInitialized
	}
	return nil
}

// HotSwapFrom transfers selected per-element state from an old, live
// router into this one, per spec.md §4.4 step 8. For each element that
// implements StateTaker, a compatible old element is located (default
// match: same fully-qualified name) and TakeState is called. Errors
// here are reported but do not stop the swap.
func (r *Router) HotSwapFrom(old *Router, errh *ErrorHandler) {
	if old == nil {
		return
	}
	for _, h := range r.configureOrder {
		es := r.elements[h]
		taker, ok := es.elem.(StateTaker)
		if !ok {
			continue
		}
		oldHandle, ok := old.ElementByName(es.name)
		if !ok {
			continue
		}
		oldElem := old.Element(oldHandle)
		if err := taker.TakeState(oldElem, errh); err != nil {
			errh.Warnf(es.name, "take_state failed: %v", err)
		}
		es.stage = StageLive
	}
}

// GoLive flips the router's state to LIVE. Call after ConfigureAll,
// InstallHandlers, InitializeAll, and (optionally) HotSwapFrom have all
// succeeded, per spec.md §4.4 step 9.
func (r *Router) GoLive() {
	for _, h := range r.configureOrder {
		r.elements[h].stage = StageLive
	}
	r.state = StateLiveRouter
	r.metrics.Runcount.Set(float64(r.Runcount()))
}

// Cleanup runs Cleanup(stage) on every element in reverse configure
// order, per spec.md §4.4.
func (r *Router) Cleanup() {
	r.cleanupFrom(StageLive)
	r.state = StateDeadRouter
}

// cleanupFrom invokes Cleanup on every configured element in reverse
// configure order, passing each its own highest-reached stage (capped
// at atMost so a partially initialized router doesn't claim a later
// stage than it reached).
func (r *Router) cleanupFrom(atMost LifecycleStage) {
	for i := len(r.configureOrder) - 1; i >= 0; i-- {
		es := r.elements[r.configureOrder[i]]
		stage := es.stage
		if stage == StageNew {
			continue
		}
		if atMost < stage {
			stage = atMost
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.log.Error("panic during element cleanup", zap.String("element", es.name), zap.Any("recover", rec))
				}
			}()
			es.elem.Cleanup(stage)
		}()
	}
}
