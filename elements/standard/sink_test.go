package standard

import (
	"testing"

	"github.com/clickrouter/router/router"
)

func TestSinkCountsAndKillsPackets(t *testing.T) {
	s := &Sink{}
	p := router.Make([]byte("payload"), 0, 0)
	got := s.SimpleAction(nil, p)
	if got != nil {
		t.Fatalf("SimpleAction() = %v, want nil", got)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
}

func TestSinkResetCountsHandler(t *testing.T) {
	s := &Sink{}
	s.SimpleAction(nil, router.Make([]byte("a"), 0, 0))
	s.SimpleAction(nil, router.Make([]byte("b"), 0, 0))
	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}
	r := router.NewRouter(nil)
	src, err := r.AddElement("src", &Source{}, "test:1", []string{"hello"})
	if err != nil {
		t.Fatalf("AddElement(src) error = %v", err)
	}
	sink, err := r.AddElement("sink", s, "test:2", nil)
	if err != nil {
		t.Fatalf("AddElement(sink) error = %v", err)
	}
	if err := r.Connect(src, 0, sink, 0); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	errh := router.NewErrorHandler(nil)
	if err := r.Validate(errh); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := r.ConfigureAll(errh); err != nil {
		t.Fatalf("ConfigureAll() error = %v", err)
	}
	r.InstallHandlers()
	if err := r.WriteHandlerValue(sink, "reset_counts", "", errh); err != nil {
		t.Fatalf("WriteHandlerValue(reset_counts) error = %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("Count() after reset = %d, want 0", s.Count())
	}
}
