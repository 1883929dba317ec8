package p2p

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNetAddress(t *testing.T) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:8080")
	require.Nil(t, err)
	addr := NewNetAddress(tcpAddr)

	assert.Equal(t, "127.0.0.1:8080", addr.String())
	assert.Equal(t, "127.0.0.1:8080", addr.DialString())
}

func TestNewNetAddressString(t *testing.T) {
	testCases := []struct {
		addr     string
		expected string
		correct  bool
	}{
		{"127.0.0.1:8080", "127.0.0.1:8080", true},
		{"tcp://127.0.0.1:8080", "127.0.0.1:8080", true},
		{"udp://127.0.0.1:8080", "127.0.0.1:8080", true},
		{"udp//127.0.0.1:8080", "", false},
		{"127.0.0.1:notaport", "", false},
		{"127.0.0.1", "", false},
		{"", "", false},
		{"8.8.8.8:26656", "8.8.8.8:26656", true},
	}

	for _, tc := range testCases {
		addr, err := NewNetAddressString(tc.addr)
		if tc.correct {
			if assert.Nil(t, err, tc.addr) {
				assert.Equal(t, tc.expected, addr.String())
			}
		} else {
			assert.NotNil(t, err, tc.addr)
		}
	}
}

func TestNewNetAddressStrings(t *testing.T) {
	addrs, errs := NewNetAddressStrings([]string{"127.0.0.1:8080", "127.0.0.2:8080", "bogus"})
	assert.Len(t, errs, 1)
	assert.Equal(t, 2, len(addrs))
}

func TestNewNetAddressIpPort(t *testing.T) {
	addr := NewNetAddressIpPort(net.ParseIP("127.0.0.1"), 8080)
	assert.Equal(t, "127.0.0.1:8080", addr.String())
}

func TestNetAddressEqual(t *testing.T) {
	a1, err := NewNetAddressString("1.2.3.4:8333")
	require.Nil(t, err)

	a2 := NewNetAddressIpPort(net.IPv4(1, 2, 3, 4), 8333)
	a2.Services = SfNetwork
	a2.Timestamp = 12345

	// identity ignores the mutable fields
	assert.True(t, a1.Equal(a2))

	a3 := NewNetAddressIpPort(net.IPv4(1, 2, 3, 4), 8334)
	assert.False(t, a1.Equal(a3))
}

func TestNetAddressCopy(t *testing.T) {
	a1 := NewNetAddressIpPort(net.IPv4(1, 2, 3, 4), 8333)
	a1.Services = SfNetwork

	a2 := a1.Copy()
	a2.Ip[0] = 99
	a2.Services = SfBloom

	assert.Equal(t, net.IPv4(1, 2, 3, 4).To4(), a1.Ip.To4())
	assert.Equal(t, SfNetwork, a1.Services)
}

func TestNetAddressProperties(t *testing.T) {
	testCases := []struct {
		addr     string
		valid    bool
		local    bool
		routable bool
	}{
		{"127.0.0.1:8080", true, true, false},
		{"10.0.0.1:8080", true, false, false},
		{"192.168.1.1:8080", true, false, false},
		{"172.16.0.1:8080", true, false, false},
		{"1.2.3.4:8080", true, false, true},
		{"8.8.8.8:26656", true, false, true},
		{"0.0.0.0:8080", false, true, false},
	}

	for _, tc := range testCases {
		addr, err := NewNetAddressString(tc.addr)
		require.Nil(t, err, tc.addr)

		assert.Equal(t, tc.valid, addr.Valid(), tc.addr)
		assert.Equal(t, tc.local, addr.Local(), tc.addr)
		assert.Equal(t, tc.routable, addr.Routable(), tc.addr)
	}
}

func TestNetAddressReachabilityTo(t *testing.T) {
	addr, err := NewNetAddressString("1.2.3.4:8080")
	require.Nil(t, err)

	other, err := NewNetAddressString("8.8.8.8:26656")
	require.Nil(t, err)

	assert.Equal(t, 4, addr.ReachabilityTo(other))
}
