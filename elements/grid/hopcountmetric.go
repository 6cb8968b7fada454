package grid

import (
	"net"

	"github.com/clickrouter/router/router"
)

// HopCountMetric is the minimum-hop-count route metric: every link
// costs exactly one hop, and routes are ranked by total hop count.
// Grounded directly on
// original_source/elements/grid/hopcountmetric.cc. It is a
// portless, configuration-only element (like Click's own
// HopCountMetric) that other elements reach via RouterView.FindElement
// and a Cast/type-assertion to Metric.
type HopCountMetric struct {
	router.BaseElement
}

func (m *HopCountMetric) ClassName() string  { return "HopCountMetric" }
func (m *HopCountMetric) PortCount() string  { return "0/0" }
func (m *HopCountMetric) Processing() string { return "" }
func (m *HopCountMetric) FlowCode() string   { return "" }

func (m *HopCountMetric) Cast(name string) any {
	if name == "grid.Metric" {
		return Metric(m)
	}
	return nil
}

// MetricValLess compares two hop counts; a bad value is never less
// than anything, per hopcountmetric.cc's metric_val_lt.
func (m *HopCountMetric) MetricValLess(a, b MetricValue) bool {
	if !a.Good || !b.Good {
		return false
	}
	return a.Val < b.Val
}

// LinkMetric always reports a single hop: hop count carries no
// per-link information to measure.
func (m *HopCountMetric) LinkMetric(neighbor net.HardwareAddr, dataSender bool) MetricValue {
	return MetricValue{Val: 1, Good: true}
}

func (m *HopCountMetric) AppendMetric(route, link MetricValue) MetricValue {
	if !route.Good || !link.Good {
		return BadMetric
	}
	return MetricValue{Val: route.Val + link.Val, Good: true}
}

func (m *HopCountMetric) PrependMetric(route, link MetricValue) MetricValue {
	return m.AppendMetric(route, link)
}

// ScaleToChar/UnscaleFromChar: hop counts fit comfortably in a byte;
// values above 254 saturate at 254 rather than wrap, and 0xff is
// reserved for an invalid metric.
func (m *HopCountMetric) ScaleToChar(v MetricValue) byte {
	if !v.Good {
		return 0xff
	}
	if v.Val > 254 {
		return 254
	}
	return byte(v.Val)
}

func (m *HopCountMetric) UnscaleFromChar(c byte) MetricValue {
	if c == 0xff {
		return BadMetric
	}
	return MetricValue{Val: uint32(c), Good: true}
}
