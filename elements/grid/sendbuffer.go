package grid

import (
	"net"
	"sync"
	"time"

	"github.com/clickrouter/router/router"
)

const (
	sendBufferCapacity = 5
	sendBufferLifetime = 5000 * time.Millisecond
)

type buffered struct {
	pkt     *router.Packet
	queued  time.Time
}

// destBuffer is one destination's bounded FIFO of packets waiting on a
// route discovery.
type destBuffer struct {
	items []buffered
}

// SendBuffer holds packets awaiting a route to their destination while
// a route request is outstanding, keyed by destination IP, per
// original_source/elements/grid/dsrroutetable.hh's SendBuffer/SBMap.
//
// Full-buffer policy: drop-new. When a destination's buffer is already
// at sendBufferCapacity, an incoming packet for that destination is
// dropped rather than displacing the oldest queued one (Open Question
// decision in DESIGN.md: this matches the executed branch of the
// original's enqueue path, not its commented-out alternative).
type SendBuffer struct {
	mu   sync.Mutex
	dest map[string]*destBuffer
}

func NewSendBuffer() *SendBuffer {
	return &SendBuffer{dest: make(map[string]*destBuffer)}
}

// Enqueue adds pkt to dest's buffer. It reports false (and the caller
// must kill pkt) if the buffer was full.
func (s *SendBuffer) Enqueue(dest net.IP, pkt *router.Packet, now time.Time) bool {
	key := dest.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.dest[key]
	if b == nil {
		b = &destBuffer{}
		s.dest[key] = b
	}
	if len(b.items) >= sendBufferCapacity {
		return false
	}
	b.items = append(b.items, buffered{pkt: pkt, queued: now})
	return true
}

// Drain removes and returns every live packet queued for dest, oldest
// first, clearing its buffer. Expired packets are killed and excluded.
func (s *SendBuffer) Drain(dest net.IP, now time.Time) []*router.Packet {
	key := dest.String()
	s.mu.Lock()
	b := s.dest[key]
	if b == nil {
		s.mu.Unlock()
		return nil
	}
	items := b.items
	delete(s.dest, key)
	s.mu.Unlock()

	out := make([]*router.Packet, 0, len(items))
	for _, it := range items {
		if now.Sub(it.queued) > sendBufferLifetime {
			it.pkt.Kill()
			continue
		}
		out = append(out, it.pkt)
	}
	return out
}

// Expire walks every destination's buffer and kills packets older
// than sendBufferLifetime, called from the send-buffer tick timer.
func (s *SendBuffer) Expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.dest {
		live := b.items[:0]
		for _, it := range b.items {
			if now.Sub(it.queued) > sendBufferLifetime {
				it.pkt.Kill()
				continue
			}
			live = append(live, it)
		}
		if len(live) == 0 {
			delete(s.dest, key)
		} else {
			b.items = live
		}
	}
}
