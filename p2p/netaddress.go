package p2p

import (
	"pvnode/util"

	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ServiceFlags is the bitset of capabilities a peer announces for an
// address.
type ServiceFlags uint64

const (
	SfNone    ServiceFlags = 0
	SfNetwork ServiceFlags = 1 << 0
	SfGetUtxo ServiceFlags = 1 << 1
	SfBloom   ServiceFlags = 1 << 2
)

// NetAddress is a peer network address together with the gossiped
// metadata about it: the time it was believed fresh as of, and the
// services its node claims to provide. Its identity is Ip plus Port.
type NetAddress struct {
	Ip        net.IP
	Port      uint16
	Timestamp int64 // unix seconds; 0 means unknown
	Services  ServiceFlags

	_str string
}

func JoinIpPort(ip net.IP, port uint16) string {
	return net.JoinHostPort(ip.String(), strconv.FormatUint(uint64(port), 10))
}

func (na *NetAddress) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(na.String())), nil
}

func (na *NetAddress) UnmarshalJSON(bz []byte) error {
	if len(bz) < 2 || bz[0] != '"' || bz[len(bz)-1] != '"' {
		return fmt.Errorf("Invalid NetAddress string")
	}

	addr, err := NewNetAddressString(string(bz[1 : len(bz)-1]))
	if err != nil {
		return err
	}

	*na = *addr
	return nil
}

// NewNetAddress returns a new NetAddress from a net.Addr, which must be
// a *net.TCPAddr.
func NewNetAddress(addr net.Addr) *NetAddress {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		panic(fmt.Sprintf("Only TCPAddrs are supported. Got: %v", addr))
	}
	return NewNetAddressIpPort(tcpAddr.IP, uint16(tcpAddr.Port))
}

// NewNetAddressString returns a new NetAddress using the provided
// address in the form of "Ip:Port". Also resolves the host if host is
// not an IP.
func NewNetAddressString(addr string) (*NetAddress, error) {
	addr = removeProtocolIfDefined(addr)

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, ErrNetAddressInvalid{addr, err}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		if len(host) > 0 {
			ips, err := net.LookupIP(host)
			if err != nil {
				return nil, ErrNetAddressLookup{host, err}
			}
			ip = ips[0]
		}
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, ErrNetAddressInvalid{portStr, err}
	}

	return NewNetAddressIpPort(ip, uint16(port)), nil
}

// NewNetAddressStrings returns an array of NetAddress'es built using
// the provided strings.
func NewNetAddressStrings(addrs []string) ([]*NetAddress, []error) {
	netAddrs := make([]*NetAddress, 0)
	errs := make([]error, 0)
	for _, addr := range addrs {
		netAddr, err := NewNetAddressString(addr)
		if err != nil {
			errs = append(errs, err)
		} else {
			netAddrs = append(netAddrs, netAddr)
		}
	}
	return netAddrs, errs
}

// NewNetAddressIpPort returns a new NetAddress using the provided IP
// and port number.
func NewNetAddressIpPort(ip net.IP, port uint16) *NetAddress {
	return &NetAddress{
		Ip:   ip,
		Port: port,
	}
}

// NewNetAddressTimestamp returns a NetAddress stamped with the given
// time and services.
func NewNetAddressTimestamp(ip net.IP, port uint16, stamp time.Time, services ServiceFlags) *NetAddress {
	na := NewNetAddressIpPort(ip, port)
	na.Timestamp = stamp.Unix()
	na.Services = services
	return na
}

// Copy returns a NetAddress that shares nothing with na.
func (na *NetAddress) Copy() *NetAddress {
	return &NetAddress{
		Ip:        net.IP(util.CloneBytes(na.Ip)),
		Port:      na.Port,
		Timestamp: na.Timestamp,
		Services:  na.Services,
	}
}

// Equal reports whether na and other are the same address, including
// the Port. Timestamp and Services do not take part in the identity.
func (na *NetAddress) Equal(other *NetAddress) bool {
	return na.String() == other.String()
}

// String representation: <Ip>:<Port>
func (na *NetAddress) String() string {
	if na._str == "" {
		na._str = na.DialString()
	}
	return na._str
}

func (na *NetAddress) DialString() string {
	return net.JoinHostPort(
		na.Ip.String(),
		strconv.FormatUint(uint64(na.Port), 10),
	)
}

// Dial calls net.Dial on the address.
func (na *NetAddress) Dial() (net.Conn, error) {
	conn, err := net.Dial("tcp", na.DialString())
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// DialTimeout calls net.DialTimeout on the address.
func (na *NetAddress) DialTimeout(timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", na.DialString(), timeout)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Routable returns true if the address is routable.
func (na *NetAddress) Routable() bool {
	// TODO(oga) bitcoind doesn't include RFC3849 here, but should we?
	return na.Valid() && !(na.RFC1918() || na.RFC3927() || na.RFC4862() ||
		na.RFC4193() || na.RFC4843() || na.Local())
}

// For IPv4 these are either a 0 or all bits set address. For IPv6 a zero
// address or one that matches the RFC3849 documentation address format.
func (na *NetAddress) Valid() bool {
	return na.Ip != nil && !(na.Ip.IsUnspecified() || na.RFC3849() ||
		na.Ip.Equal(net.IPv4bcast))
}

// Local returns true if it is a local address.
func (na *NetAddress) Local() bool {
	return na.Ip.IsLoopback() || zero4.Contains(na.Ip)
}

// ReachabilityTo checks whenever o can be reached from na.
func (na *NetAddress) ReachabilityTo(o *NetAddress) int {
	const (
		Unreachable = 0
		Default     = iota
		Teredo
		Ipv6_weak
		Ipv4
		Ipv6_strong
	)
	if !na.Routable() {
		return Unreachable
	} else if na.RFC4380() {
		if !o.Routable() {
			return Default
		} else if o.RFC4380() {
			return Teredo
		} else if o.Ip.To4() != nil {
			return Ipv4
		} else { // ipv6
			return Ipv6_weak
		}
	} else if na.Ip.To4() != nil {
		if o.Routable() && o.Ip.To4() != nil {
			return Ipv4
		}
		return Default
	} else /* ipv6 */ {
		var tunnelled bool
		// Is our v6 is tunnelled?
		if o.RFC3964() || o.RFC6052() || o.RFC6145() {
			tunnelled = true
		}
		if !o.Routable() {
			return Default
		} else if o.RFC4380() {
			return Teredo
		} else if o.Ip.To4() != nil {
			return Ipv4
		} else if tunnelled {
			// only prioritise ipv6 if we aren't tunnelling it.
			return Ipv6_weak
		}
		return Ipv6_strong
	}
}

// RFC1918: IPv4 Private networks (10.0.0.0/8, 192.168.0.0/16, 172.16.0.0/12)
// RFC3849: IPv6 Documentation address  (2001:0DB8::/32)
// RFC3927: IPv4 Autoconfig (169.254.0.0/16)
// RFC3964: IPv6 6to4 (2002::/16)
// RFC4193: IPv6 unique local (FC00::/7)
// RFC4380: IPv6 Teredo tunneling (2001::/32)
// RFC4843: IPv6 ORCHID: (2001:10::/28)
// RFC4862: IPv6 Autoconfig (FE80::/64)
// RFC6052: IPv6 well known prefix (64:FF9B::/96)
// RFC6145: IPv6 IPv4 translated address ::FFFF:0:0:0/96
var rfc1918_10 = net.IPNet{IP: net.ParseIP("10.0.0.0"), Mask: net.CIDRMask(8, 32)}
var rfc1918_192 = net.IPNet{IP: net.ParseIP("192.168.0.0"), Mask: net.CIDRMask(16, 32)}
var rfc1918_172 = net.IPNet{IP: net.ParseIP("172.16.0.0"), Mask: net.CIDRMask(12, 32)}
var rfc3849 = net.IPNet{IP: net.ParseIP("2001:0DB8::"), Mask: net.CIDRMask(32, 128)}
var rfc3927 = net.IPNet{IP: net.ParseIP("169.254.0.0"), Mask: net.CIDRMask(16, 32)}
var rfc3964 = net.IPNet{IP: net.ParseIP("2002::"), Mask: net.CIDRMask(16, 128)}
var rfc4193 = net.IPNet{IP: net.ParseIP("FC00::"), Mask: net.CIDRMask(7, 128)}
var rfc4380 = net.IPNet{IP: net.ParseIP("2001::"), Mask: net.CIDRMask(32, 128)}
var rfc4843 = net.IPNet{IP: net.ParseIP("2001:10::"), Mask: net.CIDRMask(28, 128)}
var rfc4862 = net.IPNet{IP: net.ParseIP("FE80::"), Mask: net.CIDRMask(64, 128)}
var rfc6052 = net.IPNet{IP: net.ParseIP("64:FF9B::"), Mask: net.CIDRMask(96, 128)}
var rfc6145 = net.IPNet{IP: net.ParseIP("::FFFF:0:0:0"), Mask: net.CIDRMask(96, 128)}
var zero4 = net.IPNet{IP: net.ParseIP("0.0.0.0"), Mask: net.CIDRMask(8, 32)}

func (na *NetAddress) RFC1918() bool {
	return rfc1918_10.Contains(na.Ip) ||
		rfc1918_192.Contains(na.Ip) ||
		rfc1918_172.Contains(na.Ip)
}

func (na *NetAddress) RFC3849() bool { return rfc3849.Contains(na.Ip) }
func (na *NetAddress) RFC3927() bool { return rfc3927.Contains(na.Ip) }
func (na *NetAddress) RFC3964() bool { return rfc3964.Contains(na.Ip) }
func (na *NetAddress) RFC4193() bool { return rfc4193.Contains(na.Ip) }
func (na *NetAddress) RFC4380() bool { return rfc4380.Contains(na.Ip) }
func (na *NetAddress) RFC4843() bool { return rfc4843.Contains(na.Ip) }
func (na *NetAddress) RFC4862() bool { return rfc4862.Contains(na.Ip) }
func (na *NetAddress) RFC6052() bool { return rfc6052.Contains(na.Ip) }
func (na *NetAddress) RFC6145() bool { return rfc6145.Contains(na.Ip) }

func removeProtocolIfDefined(addr string) string {
	if strings.Contains(addr, "://") {
		return strings.Split(addr, "://")[1]
	}
	return addr
}
