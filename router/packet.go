package router

import (
	"sync/atomic"
)

const (
	defaultHeadroom = 24
	minTailroom     = 8
	minPacketAlloc  = 56
)

// sharedBuffer is the refcounted backing store a Packet points into.
// Multiple Packets may point at the same sharedBuffer (via Clone);
// mutation requires Uniqueify first.
type sharedBuffer struct {
	buf  []byte
	refs atomic.Int32
}

// Packet is a reference-counted byte buffer with headroom/tailroom,
// a network-header mark, and a fixed annotation area, per spec.md §3/§4.1.
//
// Invariant: 0 <= head <= data <= tail <= end <= len(shared.buf).
type Packet struct {
	shared        *sharedBuffer
	head          int
	data          int
	tail          int
	end           int
	networkHeader int // offset into shared.buf, or -1 if unset
	annotations   Annotations
}

// Make allocates a new Packet copying the given payload, with the given
// headroom and tailroom. A tailroom of -1 selects the default
// (max(56-len(data), 8)), per spec.md §4.1.
func Make(data []byte, headroom, tailroom int) *Packet {
	if headroom < 0 {
		headroom = defaultHeadroom
	}
	if tailroom < 0 {
		tailroom = minPacketAlloc - len(data)
		if tailroom < minTailroom {
			tailroom = minTailroom
		}
	}
	size := headroom + len(data) + tailroom
	buf := make([]byte, size)
	copy(buf[headroom:], data)
	p := &Packet{
		shared:        &sharedBuffer{buf: buf},
		head:          0,
		data:          headroom,
		tail:          headroom + len(data),
		end:           size,
		networkHeader: -1,
	}
	p.shared.refs.Store(1)
	return p
}

// Clone returns a new Packet sharing this one's backing buffer. The
// clone is a passive sharer: mutating it requires Uniqueify first.
func (p *Packet) Clone() *Packet {
	if p == nil {
		return nil
	}
	p.shared.refs.Add(1)
	clone := *p
	return &clone
}

// Shared reports whether this Packet's buffer may be observed by
// another Packet (refcount > 1).
func (p *Packet) Shared() bool {
	return p.shared.refs.Load() > 1
}

// Uniqueify returns a Packet guaranteed to own its buffer exclusively.
// If the buffer is shared, the referenced bytes (head..end) are deep
// copied into a fresh buffer first and the original reference is
// released.
func (p *Packet) Uniqueify() *Packet {
	if !p.Shared() {
		return p
	}
	newBuf := make([]byte, p.end-p.head)
	copy(newBuf, p.shared.buf[p.head:p.end])
	oldHead := p.head
	q := &Packet{
		shared:        &sharedBuffer{buf: newBuf},
		head:          0,
		data:          p.data - oldHead,
		tail:          p.tail - oldHead,
		end:           p.end - oldHead,
		networkHeader: p.networkHeader,
		annotations:   p.annotations,
	}
	if q.networkHeader >= 0 {
		q.networkHeader -= oldHead
	}
	q.shared.refs.Store(1)
	p.Kill()
	return q
}

// Kill decrements the refcount; at zero the backing storage is
// released. Kill is idempotent with respect to external pointers: the
// caller must not use p again after calling Kill.
func (p *Packet) Kill() {
	if p == nil || p.shared == nil {
		return
	}
	if p.shared.refs.Add(-1) <= 0 {
		p.shared.buf = nil
	}
	p.shared = nil
}

// Length returns the logical payload length (tail - data).
func (p *Packet) Length() int {
	return p.tail - p.data
}

// Headroom returns the free bytes available before data.
func (p *Packet) Headroom() int {
	return p.data - p.head
}

// Tailroom returns the free bytes available after tail.
func (p *Packet) Tailroom() int {
	return p.end - p.tail
}

// Data returns the packet's logical payload bytes. The slice aliases
// the backing buffer and must not be retained past a Kill/Uniqueify.
func (p *Packet) Data() []byte {
	return p.shared.buf[p.data:p.tail]
}

// Buffer returns the full underlying allocation, head to end.
func (p *Packet) Buffer() []byte {
	return p.shared.buf[p.head:p.end]
}

// NetworkHeader returns the network-header bytes, or nil if unset.
func (p *Packet) NetworkHeader() []byte {
	if p.networkHeader < 0 {
		return nil
	}
	return p.shared.buf[p.networkHeader:p.tail]
}

// SetNetworkHeader marks the network-header start at the given offset
// from the start of the current data pointer.
func (p *Packet) SetNetworkHeader(offsetFromData int) {
	p.networkHeader = p.data + offsetFromData
}

// Annotations returns a pointer to the packet's annotation area for
// typed access. It is not copy-on-write: callers mutating annotations
// on a shared packet must Uniqueify first if isolation from sharers is
// required (annotations are plain fields, not covered by the buffer's
// refcount).
func (p *Packet) Annotations() *Annotations {
	return &p.annotations
}

// CopyAnnotations bulk-copies the annotation area from other into p.
func (p *Packet) CopyAnnotations(other *Packet) {
	p.annotations = other.annotations
}

// Push grows the packet's logical data region backward by n bytes,
// making the pushed region available for the caller to write a header
// into. If headroom is insufficient, a new, larger buffer is allocated
// and the old contents copied (expensive_push in spec.md §4.1).
func (p *Packet) Push(n int) *Packet {
	if n <= 0 {
		return p
	}
	if p.Headroom() >= n && !p.Shared() {
		p.data -= n
		return p
	}
	return p.expensivePush(n)
}

func (p *Packet) expensivePush(n int) *Packet {
	newHead := defaultHeadroom + n
	length := p.Length()
	tailroom := p.Tailroom()
	size := newHead + n + length + tailroom
	buf := make([]byte, size)
	copy(buf[newHead+n:], p.Data())
	np := &Packet{
		shared:        &sharedBuffer{buf: buf},
		head:          0,
		data:          newHead,
		tail:          newHead + n + length,
		end:           size,
		networkHeader: -1,
		annotations:   p.annotations,
	}
	if p.networkHeader >= 0 {
		np.networkHeader = np.data + n + (p.networkHeader - p.data)
	}
	np.shared.refs.Store(1)
	p.Kill()
	return np
}

// Pull advances the data pointer forward by n bytes, discarding them
// from the logical payload. n is clamped to Length (a warning condition
// per spec.md §4.1, surfaced to callers via the returned bool).
func (p *Packet) Pull(n int) (*Packet, bool) {
	truncated := false
	if n > p.Length() {
		n = p.Length()
		truncated = true
	}
	p.data += n
	return p, truncated
}

// Put grows the packet's logical data region forward by n bytes,
// returning a writable packet. Allocates a new buffer if tailroom is
// insufficient.
func (p *Packet) Put(n int) *Packet {
	if n <= 0 {
		return p
	}
	if p.Tailroom() >= n && !p.Shared() {
		p.tail += n
		return p
	}
	return p.expensivePut(n)
}

func (p *Packet) expensivePut(n int) *Packet {
	length := p.Length()
	headroom := p.Headroom()
	size := headroom + length + n + defaultHeadroom
	buf := make([]byte, size)
	copy(buf[headroom:], p.Data())
	np := &Packet{
		shared:        &sharedBuffer{buf: buf},
		head:          0,
		data:          headroom,
		tail:          headroom + length + n,
		end:           size,
		networkHeader: -1,
		annotations:   p.annotations,
	}
	if p.networkHeader >= 0 {
		np.networkHeader = np.data + (p.networkHeader - p.data)
	}
	np.shared.refs.Store(1)
	p.Kill()
	return np
}

// Take shrinks the logical data region from the tail by n bytes. n is
// clamped to Length.
func (p *Packet) Take(n int) (*Packet, bool) {
	truncated := false
	if n > p.Length() {
		n = p.Length()
		truncated = true
	}
	p.tail -= n
	return p, truncated
}
