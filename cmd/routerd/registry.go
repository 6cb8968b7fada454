package main

import (
	"github.com/clickrouter/router/elements/grid"
	"github.com/clickrouter/router/elements/standard"
	"github.com/clickrouter/router/router"
	"github.com/clickrouter/router/routerconfig"
)

// buildRegistry returns the element-class registry shipped with this
// binary: the generic standard library plus the grid DSR exemplar.
// A deployment embedding its own element classes would extend this
// set rather than replace it.
func buildRegistry() *routerconfig.Registry {
	reg := routerconfig.NewRegistry()
	reg.Register("Source", func() router.Element { return &standard.Source{} })
	reg.Register("Sink", func() router.Element { return &standard.Sink{} })
	reg.Register("Queue", func() router.Element { return &standard.Queue{} })
	reg.Register("Tee", func() router.Element { return &standard.Tee{} })
	reg.Register("Null", func() router.Element { return &standard.Null{} })
	reg.Register("Counter", func() router.Element { return &standard.Counter{} })
	reg.Register("Print", func() router.Element { return &standard.Print{} })
	reg.Register("HopCountMetric", func() router.Element { return &grid.HopCountMetric{} })
	reg.Register("DSR", func() router.Element { return &grid.DSR{} })
	return reg
}
