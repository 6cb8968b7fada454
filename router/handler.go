package router

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// HandlerFlag holds the small set of boolean capability bits a handler
// may carry, per spec.md §3's Handler definition.
type HandlerFlag uint32

const (
	FlagReadable HandlerFlag = 1 << iota
	FlagWritable
	FlagAcceptsParam
	FlagReadComprehensive
	FlagWriteComprehensive
	FlagCalm
	FlagExpensive
	FlagUncommon
	FlagDeprecated
	FlagButton
	FlagCheckbox
	FlagRaw
)

// HandlerOp distinguishes the two operations a comprehensive handler
// callback may be asked to perform.
type HandlerOp int

const (
	OpRead HandlerOp = iota
	OpWrite
)

// ReadHandlerFunc reads a handler's current value, per spec.md §6.
type ReadHandlerFunc func(elem Element, user any) (string, error)

// WriteHandlerFunc applies a new value to a handler, per spec.md §6.
type WriteHandlerFunc func(value string, elem Element, user any, errh *ErrorHandler) error

// ComprehensiveHandlerFunc handles both read and write in one
// function, per spec.md §6.
type ComprehensiveHandlerFunc func(op HandlerOp, value *string, elem Element, errh *ErrorHandler) error

// globalElement is the sentinel ElementHandle used for handlers
// registered in the router's global handler set (spec.md §4.3's
// FIRST_GLOBAL_HANDLER table), realized here as a reserved map key
// rather than an index above a numeric sentinel, since Go maps make
// the "separate flat table addressable at indices >= a sentinel"
// mechanism unnecessary: we need only a distinguishable key.
const globalElement ElementHandle = -1

type handlerKey struct {
	elem ElementHandle
	name string
}

type handlerRecord struct {
	name          string
	elem          ElementHandle
	flags         HandlerFlag
	read          ReadHandlerFunc
	readUser      any
	write         WriteHandlerFunc
	writeUser     any
	comprehensive ComprehensiveHandlerFunc
	refcount      int32
}

// handlerTable is the router's deduplicated handler pool, per
// spec.md §4.3. Click's original is a hand-rolled array-backed pool
// with free lists and parallel linked lists sorted by name; this
// realizes the same externally-observable policies (combine-on-add,
// star handler, standard handlers) with a
// plain map, which is the idiomatic Go equivalent of a deduplicated
// keyed pool.
type handlerTable struct {
	mu      sync.RWMutex
	records map[handlerKey]*handlerRecord
	byName  map[string][]*handlerRecord // per-name index across all elements, for listing/star lookups
}

func newHandlerTable() *handlerTable {
	return &handlerTable{
		records: make(map[handlerKey]*handlerRecord),
		byName:  make(map[string][]*handlerRecord),
	}
}

func (t *handlerTable) getOrCreate(elem ElementHandle, name string) *handlerRecord {
	k := handlerKey{elem: elem, name: name}
	if rec, ok := t.records[k]; ok {
		return rec
	}
	rec := &handlerRecord{name: name, elem: elem}
	t.records[k] = rec
	t.byName[name] = append(t.byName[name], rec)
	rec.refcount++
	return rec
}

// addRead installs (or combines into an existing) read handler, per
// the combine-on-add policy: a read and a write sharing a name on one
// element coexist; adding one never clobbers the other.
func (t *handlerTable) addRead(elem ElementHandle, name string, fn ReadHandlerFunc, user any, flags HandlerFlag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.getOrCreate(elem, name)
	rec.read = fn
	rec.readUser = user
	rec.flags |= flags | FlagReadable
}

func (t *handlerTable) addWrite(elem ElementHandle, name string, fn WriteHandlerFunc, user any, flags HandlerFlag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.getOrCreate(elem, name)
	rec.write = fn
	rec.writeUser = user
	rec.flags |= flags | FlagWritable
}

func (t *handlerTable) addComprehensive(elem ElementHandle, name string, fn ComprehensiveHandlerFunc, flags HandlerFlag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.getOrCreate(elem, name)
	rec.comprehensive = fn
	rec.flags |= flags | FlagReadComprehensive | FlagWriteComprehensive
}

func (t *handlerTable) lookup(elem ElementHandle, name string) (*handlerRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[handlerKey{elem: elem, name: name}]
	return rec, ok
}

func (t *handlerTable) lookupGlobal(name string) (*handlerRecord, bool) {
	if len(name) > 0 && name[0] == '.' {
		name = name[1:]
	}
	return t.lookup(globalElement, name)
}

// names lists the handler names registered on elem, sorted.
func (t *handlerTable) names(elem ElementHandle) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for k := range t.records {
		if k.elem == elem {
			out = append(out, k.name)
		}
	}
	sort.Strings(out)
	return out
}

// HandlerAdder is passed to Element.AddHandlers so elements can
// install their own handlers without touching the router directly,
// per spec.md §4.3/§6.
type HandlerAdder struct {
	r    *Router
	elem ElementHandle
}

// ReadHandler installs a read handler named name.
func (a *HandlerAdder) ReadHandler(name string, fn ReadHandlerFunc, user any) {
	a.r.handlers.addRead(a.elem, name, fn, user, 0)
}

// WriteHandler installs a write handler named name.
func (a *HandlerAdder) WriteHandler(name string, fn WriteHandlerFunc, user any) {
	a.r.handlers.addWrite(a.elem, name, fn, user, 0)
}

// ReadWriteHandler installs both a read and a write handler under the
// same name.
func (a *HandlerAdder) ReadWriteHandler(name string, r ReadHandlerFunc, ru any, w WriteHandlerFunc, wu any) {
	a.ReadHandler(name, r, ru)
	a.WriteHandler(name, w, wu)
}

// ComprehensiveHandler installs a handler whose single callback
// handles both read and write.
func (a *HandlerAdder) ComprehensiveHandler(name string, fn ComprehensiveHandlerFunc) {
	a.r.handlers.addComprehensive(a.elem, name, fn, 0)
}

// FlagHandler ORs additional flag bits onto an already-registered
// handler (e.g. marking it "expensive" or "calm" after installing it).
func (a *HandlerAdder) FlagHandler(name string, flags HandlerFlag) {
	if rec, ok := a.r.handlers.lookup(a.elem, name); ok {
		a.r.handlers.mu.Lock()
		rec.flags |= flags
		a.r.handlers.mu.Unlock()
	}
}

// GlobalWriteHandler installs a router-global write handler, addressed
// as ".name" or bare "name" when no element-local handler of that name
// exists, per spec.md §4.6.
func (a *HandlerAdder) GlobalWriteHandler(name string, fn WriteHandlerFunc, user any) {
	a.r.handlers.addWrite(globalElement, name, fn, user, 0)
}

// installStandardHandlers wires the always-present handlers
// (name/class/config/ports/handlers) for one element, per spec.md §4.3.
func (r *Router) installStandardHandlers(h ElementHandle) {
	es := r.elements[h]
	r.handlers.addRead(h, "name", func(e Element, _ any) (string, error) {
		return es.name, nil
	}, nil, 0)
	r.handlers.addRead(h, "class", func(e Element, _ any) (string, error) {
		return e.ClassName(), nil
	}, nil, 0)
	r.handlers.addRead(h, "config", func(e Element, _ any) (string, error) {
		return joinArgs(es.args), nil
	}, nil, 0)
	if reconf, ok := es.elem.(LiveReconfigurer); ok && reconf.CanLiveReconfigure() {
		r.handlers.addWrite(h, "config", func(value string, e Element, _ any, errh *ErrorHandler) error {
			return e.(LiveReconfigurer).LiveReconfigure(splitArgs(value), errh)
		}, nil, 0)
	}
	r.handlers.addRead(h, "ports", func(e Element, _ any) (string, error) {
		return fmt.Sprintf("%d input(s), %d output(s)", len(es.inputs), len(es.outputs)), nil
	}, nil, 0)
	r.handlers.addRead(h, "handlers", func(e Element, _ any) (string, error) {
		names := r.handlers.names(h)
		out := ""
		for i, n := range names {
			if i > 0 {
				out += "\n"
			}
			out += n
		}
		return out, nil
	}, nil, 0)
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// ReadHandlerValue performs a read, implementing the star-handler
// fallback of spec.md §4.3: if no handler named name exists on elem,
// but elem has a writable "*" handler, its write is invoked with name
// as the value to materialize the handler, and the lookup is retried
// once.
func (r *Router) ReadHandlerValue(h ElementHandle, name string, errh *ErrorHandler) (string, error) {
	rec, ok := r.handlers.lookup(h, name)
	if !ok {
		if r.tryStarHandler(h, name, errh) {
			rec, ok = r.handlers.lookup(h, name)
		}
	}
	if !ok {
		if rec, ok = r.handlers.lookupGlobal(name); !ok {
			return "", fmt.Errorf("no handler %q", name)
		}
	}
	es := r.elements[h]
	if rec.comprehensive != nil {
		var v string
		if err := rec.comprehensive(OpRead, &v, es.elem, errh); err != nil {
			return "", err
		}
		return v, nil
	}
	if rec.read == nil {
		return "", fmt.Errorf("handler %q is not readable", name)
	}
	return rec.read(es.elem, rec.readUser)
}

// WriteHandlerValue performs a write, with the same star-handler
// fallback as ReadHandlerValue.
func (r *Router) WriteHandlerValue(h ElementHandle, name, value string, errh *ErrorHandler) error {
	rec, ok := r.handlers.lookup(h, name)
	if !ok {
		if r.tryStarHandler(h, name, errh) {
			rec, ok = r.handlers.lookup(h, name)
		}
	}
	if !ok {
		if rec, ok = r.handlers.lookupGlobal(name); !ok {
			return fmt.Errorf("no handler %q", name)
		}
	}
	es := r.elements[h]
	if rec.comprehensive != nil {
		v := value
		return rec.comprehensive(OpWrite, &v, es.elem, errh)
	}
	if rec.write == nil {
		return fmt.Errorf("handler %q is not writable", name)
	}
	return rec.write(value, es.elem, rec.writeUser, errh)
}

func (r *Router) tryStarHandler(h ElementHandle, name string, errh *ErrorHandler) bool {
	star, ok := r.handlers.lookup(h, "*")
	if !ok || star.write == nil {
		return false
	}
	es := r.elements[h]
	if err := star.write(name, es.elem, star.writeUser, errh); err != nil {
		return false
	}
	return true
}

// etag returns a content hash suitable for the admin API's ETag
// header, mirroring caddyserver-caddy's admin.go etagHasher() use of
// xxhash.
func etag(data []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(data))
}
