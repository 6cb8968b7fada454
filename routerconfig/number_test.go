package routerconfig

import (
	"testing"
	"time"
)

func TestParseInt64Decimal(t *testing.T) {
	v, status := ParseInt64("42")
	if status != StatusOK || v != 42 {
		t.Fatalf("ParseInt64(42) = %d, %v", v, status)
	}
}

func TestParseInt64Negative(t *testing.T) {
	v, status := ParseInt64("-17")
	if status != StatusOK || v != -17 {
		t.Fatalf("ParseInt64(-17) = %d, %v", v, status)
	}
}

func TestParseInt64Hex(t *testing.T) {
	v, status := ParseInt64("0xFF")
	if status != StatusOK || v != 255 {
		t.Fatalf("ParseInt64(0xFF) = %d, %v", v, status)
	}
}

func TestParseInt64Binary(t *testing.T) {
	v, status := ParseInt64("0b101")
	if status != StatusOK || v != 5 {
		t.Fatalf("ParseInt64(0b101) = %d, %v", v, status)
	}
}

func TestParseInt64Underscores(t *testing.T) {
	v, status := ParseInt64("1_000_000")
	if status != StatusOK || v != 1000000 {
		t.Fatalf("ParseInt64(1_000_000) = %d, %v", v, status)
	}
}

func TestParseInt64Empty(t *testing.T) {
	_, status := ParseInt64("")
	if status != StatusFormat {
		t.Fatalf("status = %v, want StatusFormat", status)
	}
}

func TestParseInt64BadFormat(t *testing.T) {
	_, status := ParseInt64("abc")
	if status != StatusFormat {
		t.Fatalf("status = %v, want StatusFormat", status)
	}
}

func TestParseUint64NegativeIsRange(t *testing.T) {
	_, status := ParseUint64("-1")
	if status != StatusRange {
		t.Fatalf("status = %v, want StatusRange", status)
	}
}

func TestParseRealScaled(t *testing.T) {
	v, status := ParseReal("3.14", 2)
	if status != StatusOK || v != 314 {
		t.Fatalf("ParseReal(3.14, 2) = %d, %v", v, status)
	}
}

func TestParseFixedPoint(t *testing.T) {
	v, status := ParseFixedPoint("1.5", 1)
	if status != StatusOK || v != 3 {
		t.Fatalf("ParseFixedPoint(1.5, 1) = %d, %v", v, status)
	}
}

func TestParseSecondsDefaultUnit(t *testing.T) {
	d, status := ParseSeconds("2.5")
	if status != StatusOK || d != 2500*time.Millisecond {
		t.Fatalf("ParseSeconds(2.5) = %v, %v", d, status)
	}
}

func TestParseSecondsExplicitUnit(t *testing.T) {
	d, status := ParseSeconds("500ms")
	if status != StatusOK || d != 500*time.Millisecond {
		t.Fatalf("ParseSeconds(500ms) = %v, %v", d, status)
	}
}

func TestParseSecondsMinutes(t *testing.T) {
	d, status := ParseSeconds("2min")
	if status != StatusOK || d != 2*time.Minute {
		t.Fatalf("ParseSeconds(2min) = %v, %v", d, status)
	}
}

func TestParseSecondsBadUnit(t *testing.T) {
	_, status := ParseSeconds("5xyz")
	if status != StatusFormat {
		t.Fatalf("status = %v, want StatusFormat", status)
	}
}

func TestParseBandwidthBitsPerSec(t *testing.T) {
	v, status := ParseBandwidth("100bps")
	if status != StatusOK || v != 100 {
		t.Fatalf("ParseBandwidth(100bps) = %v, %v", v, status)
	}
}

func TestParseBandwidthBytesPerSecMultiplier(t *testing.T) {
	v, status := ParseBandwidth("1KBps")
	if status != StatusOK || v != 8000 {
		t.Fatalf("ParseBandwidth(1KBps) = %v, %v", v, status)
	}
}
