package grid

import (
	"net"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LinkCache is the external collaborator DSR asks for known routes and
// link costs, the Go analog of the route-table lookups
// original_source/elements/grid/dsrroutetable.cc performs against its
// own neighbor/route state. Factoring it as an interface lets a
// deployment plug in a real neighbor-discovery subsystem while DSR
// itself only needs route lookups, route insertion and link
// invalidation.
type LinkCache interface {
	// Route returns a known source route to dest, if any.
	Route(dest net.IP) ([]DSRHop, bool)

	// AddRoute records a route discovered via a successful RREQ/RREP
	// exchange.
	AddRoute(dest net.IP, hops []DSRHop)

	// RemoveLink purges any cached route using the link from<->to,
	// called when an RERR reports it broken.
	RemoveLink(from, to net.IP)
}

// memLinkCache is the default in-memory LinkCache: one best-known
// route per destination, no persistence, no neighbor discovery of its
// own (DSR supplies routes it learns via RREQ/RREP).
type memLinkCache struct {
	mu     sync.RWMutex
	routes map[string][]DSRHop

	// group coalesces concurrent Route lookups for the same
	// destination onto one execution, avoiding redundant work under
	// bursty duplicate lookups from the scheduler's packet-processing
	// goroutines.
	group singleflight.Group
}

func NewMemLinkCache() LinkCache {
	return &memLinkCache{routes: make(map[string][]DSRHop)}
}

func (c *memLinkCache) Route(dest net.IP) ([]DSRHop, bool) {
	key := dest.String()
	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		hops, ok := c.routes[key]
		if !ok {
			return nil, nil
		}
		out := make([]DSRHop, len(hops))
		copy(out, hops)
		return out, nil
	})
	if err != nil || v == nil {
		return nil, false
	}
	hops := v.([]DSRHop)
	return hops, true
}

func (c *memLinkCache) AddRoute(dest net.IP, hops []DSRHop) {
	cp := make([]DSRHop, len(hops))
	copy(cp, hops)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[dest.String()] = cp
}

func (c *memLinkCache) RemoveLink(from, to net.IP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for dest, hops := range c.routes {
		for i := 0; i+1 < len(hops); i++ {
			if hops[i].IP.Equal(from) && hops[i+1].IP.Equal(to) {
				delete(c.routes, dest)
				break
			}
			if hops[i].IP.Equal(to) && hops[i+1].IP.Equal(from) {
				delete(c.routes, dest)
				break
			}
		}
	}
}
