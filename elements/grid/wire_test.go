package grid

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsHeaderRoundTrip(t *testing.T) {
	hdr := OptionsHeader{NextHeader: 4, Reserved: 0, TotalOptionsLength: 17}
	buf := make([]byte, optionsHeaderLen)
	hdr.Encode(buf)

	got, err := DecodeOptionsHeader(buf)
	require.NoError(t, err)
	require.Equal(t, hdr, got)
}

func TestDecodeOptionsHeaderTruncated(t *testing.T) {
	_, err := DecodeOptionsHeader([]byte{1, 2})
	require.Error(t, err)
}

func TestRREQOptionRoundTrip(t *testing.T) {
	opt := RREQOption{
		ID:     42,
		Target: net.ParseIP("10.0.0.9").To4(),
		Hops: []DSRHop{
			{IP: net.ParseIP("10.0.0.1").To4(), Metric: 1},
			{IP: net.ParseIP("10.0.0.2").To4(), Metric: 2},
		},
	}
	buf := make([]byte, opt.WireLen())
	opt.Encode(buf)

	got, err := DecodeRREQOption(buf)
	require.NoError(t, err)
	require.Equal(t, opt.ID, got.ID)
	require.True(t, opt.Target.Equal(got.Target))
	require.Len(t, got.Hops, 2)
	require.True(t, opt.Hops[0].IP.Equal(got.Hops[0].IP))
	require.Equal(t, opt.Hops[1].Metric, got.Hops[1].Metric)
}

func TestRREPOptionRoundTrip(t *testing.T) {
	opt := RREPOption{
		Flags: 0x1,
		Hops: []DSRHop{
			{IP: net.ParseIP("10.0.0.1").To4(), Metric: 3},
		},
	}
	buf := make([]byte, opt.WireLen())
	opt.Encode(buf)

	got, err := DecodeRREPOption(buf)
	require.NoError(t, err)
	require.Equal(t, opt.Flags, got.Flags)
	require.Len(t, got.Hops, 1)
}

func TestRERROptionRoundTrip(t *testing.T) {
	opt := RERROption{
		ErrorType:       1,
		Flags:           0,
		ErrSrc:          net.ParseIP("10.0.0.1").To4(),
		ErrDst:          net.ParseIP("10.0.0.2").To4(),
		UnreachableAddr: net.ParseIP("10.0.0.9").To4(),
	}
	buf := make([]byte, opt.WireLen())
	opt.Encode(buf)

	got, err := DecodeRERROption(buf)
	require.NoError(t, err)
	require.Equal(t, opt.ErrorType, got.ErrorType)
	require.True(t, opt.ErrSrc.Equal(got.ErrSrc))
	require.True(t, opt.ErrDst.Equal(got.ErrDst))
	require.True(t, opt.UnreachableAddr.Equal(got.UnreachableAddr))
}

func TestSourceRouteOptionNextHop(t *testing.T) {
	sr := SourceRouteOption{
		SegsLeft: 2,
		Hops: []DSRHop{
			{IP: net.ParseIP("10.0.0.1").To4()},
			{IP: net.ParseIP("10.0.0.2").To4()},
		},
	}
	hop, more := sr.NextHop()
	require.True(t, more)
	require.True(t, hop.IP.Equal(net.ParseIP("10.0.0.1")))

	sr.SegsLeft = 1
	hop, more = sr.NextHop()
	require.True(t, more)
	require.True(t, hop.IP.Equal(net.ParseIP("10.0.0.2")))

	sr.SegsLeft = 0
	_, more = sr.NextHop()
	require.False(t, more)
}

func TestSourceRouteOptionRoundTrip(t *testing.T) {
	opt := SourceRouteOption{
		Salvage:  1,
		SegsLeft: 2,
		Hops: []DSRHop{
			{IP: net.ParseIP("10.0.0.1").To4(), Metric: 1},
			{IP: net.ParseIP("10.0.0.2").To4(), Metric: 2},
		},
	}
	buf := make([]byte, opt.WireLen())
	opt.Encode(buf)

	got, err := DecodeSourceRouteOption(buf)
	require.NoError(t, err)
	require.Equal(t, opt.Salvage, got.Salvage)
	require.Equal(t, opt.SegsLeft, got.SegsLeft)
	require.Len(t, got.Hops, 2)
}

func TestOptionWireLenDispatch(t *testing.T) {
	opt := RREQOption{ID: 1, Target: net.ParseIP("10.0.0.9").To4()}
	buf := make([]byte, opt.WireLen())
	opt.Encode(buf)

	n, err := optionWireLen(buf)
	require.NoError(t, err)
	require.Equal(t, opt.WireLen(), n)
}

func TestOptionWireLenUnknownType(t *testing.T) {
	_, err := optionWireLen([]byte{0xee, 0, 0, 0})
	require.Error(t, err)
}
