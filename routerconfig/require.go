package routerconfig

import (
	"fmt"

	"github.com/clickrouter/router/router"
)

// ElementFactory constructs a fresh, unconfigured Element instance for
// a class name.
type ElementFactory func() router.Element

// Registry maps element class names to factories, resolved while
// compiling a configuration's declarations into router.AddElement
// calls.
type Registry struct {
	factories map[string]ElementFactory
}

// NewRegistry creates an empty element class Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ElementFactory)}
}

// Register associates className with factory. A later call for the
// same name overwrites the earlier one.
func (reg *Registry) Register(className string, factory ElementFactory) {
	reg.factories[className] = factory
}

func (reg *Registry) lookup(className string) (ElementFactory, bool) {
	f, ok := reg.factories[className]
	return f, ok
}

// Compile parses src as a router configuration, expands every
// elementclass instantiation, resolves each declaration's class
// against reg, and builds the resulting graph on r via AddElement and
// Connect, per spec.md §4.6/§4.7. Errors for individual declarations
// or connections are reported to errh and do not abort compilation of
// the rest of the graph; Compile returns a non-nil error only if errh
// recorded at least one error.
func Compile(r *router.Router, src []byte, filename string, reg *Registry, errh *router.ErrorHandler) error {
	stmts, err := Parse(src, filename)
	if err != nil {
		errh.Errorf(filename, "%v", err)
		return fmt.Errorf("routerconfig: parse failed: %w", err)
	}

	anon := 0
	scope, err := compileScope(stmts, "", map[string]*ClassDef{}, &anon)
	if err != nil {
		errh.Errorf(filename, "%v", err)
		return err
	}

	handles := make(map[string]router.ElementHandle, len(scope.decls))
	for _, d := range scope.decls {
		factory, ok := reg.lookup(d.Class)
		if !ok {
			errh.Errorf(d.Landmark, "no such element class %q", d.Class)
			continue
		}
		elem := factory()
		args := SplitArgs(d.Config)
		h, err := r.AddElement(d.Name, elem, d.Landmark, args)
		if err != nil {
			errh.Errorf(d.Landmark, "%v", err)
			continue
		}
		handles[d.Name] = h
	}

	for _, e := range scope.edges {
		fromH, ok := handles[e.FromName]
		if !ok {
			errh.Errorf(e.Landmark, "undeclared element %q", e.FromName)
			continue
		}
		toH, ok := handles[e.ToName]
		if !ok {
			errh.Errorf(e.Landmark, "undeclared element %q", e.ToName)
			continue
		}
		if err := r.Connect(fromH, e.FromPort, toH, e.ToPort); err != nil {
			errh.Errorf(e.Landmark, "%v", err)
		}
	}

	for _, ident := range scope.requires {
		r.AddRequirement(ident, "")
	}
	if errh.NErrors() > 0 {
		return fmt.Errorf("routerconfig: %d error(s) compiling %s", errh.NErrors(), filename)
	}
	r.SetRawConfig(string(src))
	return nil
}
