package grid

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clickrouter/router/router"
)

func TestSendBufferEnqueueDrain(t *testing.T) {
	sb := NewSendBuffer()
	dest := net.ParseIP("10.0.0.9")
	now := time.Now()

	p1 := router.Make([]byte("a"), 0, 0)
	p2 := router.Make([]byte("b"), 0, 0)
	require.True(t, sb.Enqueue(dest, p1, now))
	require.True(t, sb.Enqueue(dest, p2, now))

	got := sb.Drain(dest, now)
	require.Len(t, got, 2)

	// buffer is cleared after drain
	require.Empty(t, sb.Drain(dest, now))
}

func TestSendBufferDropsWhenFull(t *testing.T) {
	sb := NewSendBuffer()
	dest := net.ParseIP("10.0.0.9")
	now := time.Now()

	for i := 0; i < sendBufferCapacity; i++ {
		require.True(t, sb.Enqueue(dest, router.Make([]byte("x"), 0, 0), now))
	}
	overflow := router.Make([]byte("overflow"), 0, 0)
	require.False(t, sb.Enqueue(dest, overflow, now))
	overflow.Kill()

	got := sb.Drain(dest, now)
	require.Len(t, got, sendBufferCapacity)
}

func TestSendBufferDrainExpiresOld(t *testing.T) {
	sb := NewSendBuffer()
	dest := net.ParseIP("10.0.0.9")
	queuedAt := time.Now()

	p := router.Make([]byte("a"), 0, 0)
	require.True(t, sb.Enqueue(dest, p, queuedAt))

	later := queuedAt.Add(sendBufferLifetime + time.Second)
	got := sb.Drain(dest, later)
	require.Empty(t, got)
}

func TestSendBufferExpireSweep(t *testing.T) {
	sb := NewSendBuffer()
	dest := net.ParseIP("10.0.0.9")
	queuedAt := time.Now()

	p := router.Make([]byte("a"), 0, 0)
	require.True(t, sb.Enqueue(dest, p, queuedAt))

	sb.Expire(queuedAt.Add(sendBufferLifetime + time.Second))
	require.Empty(t, sb.Drain(dest, queuedAt))
}
