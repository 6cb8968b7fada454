package standard

import (
	"testing"

	"github.com/clickrouter/router/router"
)

func TestNullPassesPacketUnchanged(t *testing.T) {
	n := &Null{}
	p := router.Make([]byte("payload"), 0, 0)
	got := n.SimpleAction(nil, p)
	if got != p {
		t.Fatal("Null.SimpleAction should return the same packet pointer")
	}
}
