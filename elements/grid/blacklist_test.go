package grid

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testMAC(t *testing.T) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	return mac
}

func TestBlacklistNoEntryInitially(t *testing.T) {
	b := NewBlacklist()
	require.Equal(t, NoEntry, b.Status(testMAC(t), time.Now()))
}

func TestBlacklistMarkProbable(t *testing.T) {
	b := NewBlacklist()
	mac := testMAC(t)
	now := time.Now()

	already := b.MarkProbable(mac, now)
	require.False(t, already)
	require.Equal(t, Probable, b.Status(mac, now))
}

func TestBlacklistMarkProbableWhilePending(t *testing.T) {
	b := NewBlacklist()
	mac := testMAC(t)
	now := time.Now()

	require.False(t, b.MarkProbable(mac, now))
	already := b.MarkProbable(mac, now.Add(100*time.Millisecond))
	require.True(t, already)
}

func TestBlacklistConfirmBidirectionalClears(t *testing.T) {
	b := NewBlacklist()
	mac := testMAC(t)
	now := time.Now()

	b.MarkProbable(mac, now)
	b.ConfirmBidirectional(mac)
	require.Equal(t, NoEntry, b.Status(mac, now))
}

func TestBlacklistTickPromotesToQuestionable(t *testing.T) {
	b := NewBlacklist()
	mac := testMAC(t)
	now := time.Now()

	b.MarkProbable(mac, now)
	later := now.Add(uniTestTimeout + time.Millisecond)
	b.Tick(later)
	require.Equal(t, Questionable, b.Status(mac, later))
}

func TestBlacklistEntryExpires(t *testing.T) {
	b := NewBlacklist()
	mac := testMAC(t)
	now := time.Now()

	b.MarkProbable(mac, now)
	muchLater := now.Add(entryTimeout + time.Second)
	require.Equal(t, NoEntry, b.Status(mac, muchLater))
}
