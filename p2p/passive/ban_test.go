package passive

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanSingleIp(t *testing.T) {
	bt := NewBanTable()
	require.NoError(t, bt.Ban("1.2.3.4", BanReasonNodeMisbehaving, testNow+3600, testNow))

	assert.True(t, bt.IsBanned(net.IPv4(1, 2, 3, 4), testNow))
	assert.False(t, bt.IsBanned(net.IPv4(1, 2, 3, 5), testNow))
	assert.Equal(t, 1, bt.Size())
}

func TestBanSubnet(t *testing.T) {
	bt := NewBanTable()
	require.NoError(t, bt.Ban("10.20.0.0/16", BanReasonManuallyAdded, 0, testNow))

	assert.True(t, bt.IsBanned(net.IPv4(10, 20, 1, 1), testNow))
	assert.True(t, bt.IsBanned(net.IPv4(10, 20, 255, 255), testNow))
	assert.False(t, bt.IsBanned(net.IPv4(10, 21, 0, 1), testNow))
}

func TestBanInvalidSubnet(t *testing.T) {
	bt := NewBanTable()
	assert.Error(t, bt.Ban("not-a-subnet", BanReasonUnknown, 0, testNow))
	assert.Equal(t, 0, bt.Size())
}

func TestBanExpiry(t *testing.T) {
	bt := NewBanTable()
	require.NoError(t, bt.Ban("1.2.3.4", BanReasonNodeMisbehaving, testNow+100, testNow))

	ip := net.IPv4(1, 2, 3, 4)
	assert.True(t, bt.IsBanned(ip, testNow+99))
	assert.False(t, bt.IsBanned(ip, testNow+100))

	// expired but not swept yet
	assert.Equal(t, 1, bt.Size())
	bt.Sweep(testNow + 100)
	assert.Equal(t, 0, bt.Size())
}

func TestBanForever(t *testing.T) {
	bt := NewBanTable()
	require.NoError(t, bt.Ban("1.2.3.4", BanReasonManuallyAdded, 0, testNow))

	ip := net.IPv4(1, 2, 3, 4)
	assert.True(t, bt.IsBanned(ip, testNow+1000000000))
	bt.Sweep(testNow + 1000000000)
	assert.Equal(t, 1, bt.Size())
}

func TestUnban(t *testing.T) {
	bt := NewBanTable()
	require.NoError(t, bt.Ban("1.2.3.4", BanReasonNodeMisbehaving, 0, testNow))
	require.NoError(t, bt.Ban("10.20.0.0/16", BanReasonNodeMisbehaving, 0, testNow))

	bt.Unban("1.2.3.4")
	assert.False(t, bt.IsBanned(net.IPv4(1, 2, 3, 4), testNow))
	assert.True(t, bt.IsBanned(net.IPv4(10, 20, 1, 1), testNow))
	assert.Equal(t, 1, bt.Size())
}

func TestBanSnapshotRestore(t *testing.T) {
	bt := NewBanTable()
	require.NoError(t, bt.Ban("1.2.3.4", BanReasonNodeMisbehaving, testNow+3600, testNow))
	require.NoError(t, bt.Ban("2001:db8::1", BanReasonManuallyAdded, 0, testNow))

	bans := bt.Snapshot()
	bans["garbage"] = &BanEntry{Version: banEntryVersion}

	bt2 := NewBanTable()
	bt2.Restore(bans)

	// the unparseable key was dropped
	assert.Equal(t, 2, bt2.Size())
	assert.True(t, bt2.IsBanned(net.IPv4(1, 2, 3, 4), testNow))
	assert.True(t, bt2.IsBanned(net.ParseIP("2001:db8::1"), testNow))
}

func TestBanReasonString(t *testing.T) {
	assert.Equal(t, "unknown", BanReasonUnknown.String())
	assert.Equal(t, "node misbehaving", BanReasonNodeMisbehaving.String())
	assert.Equal(t, "manually added", BanReasonManuallyAdded.String())
}
