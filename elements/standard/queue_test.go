package standard

import (
	"testing"

	"github.com/clickrouter/router/router"
)

func TestQueuePushPullFIFO(t *testing.T) {
	q := &Queue{}
	if err := q.Configure(nil, router.NewErrorHandler(nil)); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	q.Push(nil, 0, router.Make([]byte("a"), 0, 0))
	q.Push(nil, 0, router.Make([]byte("b"), 0, 0))

	if q.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", q.Length())
	}
	first := q.Pull(nil, 0)
	if string(first.Data()) != "a" {
		t.Fatalf("first pull = %q, want %q", first.Data(), "a")
	}
	second := q.Pull(nil, 0)
	if string(second.Data()) != "b" {
		t.Fatalf("second pull = %q, want %q", second.Data(), "b")
	}
	if got := q.Pull(nil, 0); got != nil {
		t.Fatalf("Pull() on empty queue = %v, want nil", got)
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := &Queue{}
	if err := q.Configure([]string{"1"}, router.NewErrorHandler(nil)); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	q.Push(nil, 0, router.Make([]byte("a"), 0, 0))
	q.Push(nil, 0, router.Make([]byte("b"), 0, 0))

	if q.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", q.Length())
	}
	if q.dropped != 1 {
		t.Fatalf("dropped = %d, want 1", q.dropped)
	}
}

func TestQueueConfigureBadCapacity(t *testing.T) {
	q := &Queue{}
	errh := router.NewErrorHandler(nil)
	if err := q.Configure([]string{"notanumber"}, errh); err == nil {
		t.Fatal("expected an error for a non-numeric capacity")
	}
}

func TestQueueCleanupKillsQueuedPackets(t *testing.T) {
	q := &Queue{}
	q.Configure(nil, router.NewErrorHandler(nil))
	q.Push(nil, 0, router.Make([]byte("a"), 0, 0))
	q.Cleanup(router.LifecycleStage(0))
	if q.Length() != 0 {
		t.Fatalf("Length() after Cleanup = %d, want 0", q.Length())
	}
}
