package passive

import (
	"net"
	"sync"
)

type BanReason byte

const (
	BanReasonUnknown         BanReason = 0
	BanReasonNodeMisbehaving BanReason = 1
	BanReasonManuallyAdded   BanReason = 2
)

func (r BanReason) String() string {
	switch r {
	case BanReasonNodeMisbehaving:
		return "node misbehaving"
	case BanReasonManuallyAdded:
		return "manually added"
	default:
		return "unknown"
	}
}

const banEntryVersion = int32(1)

// BanEntry is one banned subnet's record. The field order is part of
// the wire contract.
type BanEntry struct {
	Version    int32
	CreateTime int64
	BanUntil   int64
	Reason     BanReason
}

// IsExpired reports whether the ban has run out at now.
func (be *BanEntry) IsExpired(now int64) bool {
	return be.BanUntil != 0 && be.BanUntil <= now
}

// BanTable maps subnets (CIDR strings) to ban entries. It is unrelated
// to the address table; the two only share the persistence idiom.
type BanTable struct {
	mtx     sync.Mutex
	entries map[string]*BanEntry
	nets    map[string]*net.IPNet
}

func NewBanTable() *BanTable {
	return &BanTable{
		entries: make(map[string]*BanEntry),
		nets:    make(map[string]*net.IPNet),
	}
}

// normalizeSubnet accepts a CIDR string or a bare IP (treated as a
// single-host subnet) and returns the canonical key plus the parsed net.
func normalizeSubnet(subnet string) (string, *net.IPNet, error) {
	if ip := net.ParseIP(subnet); ip != nil {
		bits := 8 * net.IPv6len
		if ip.To4() != nil {
			bits = 8 * net.IPv4len
		}
		ipnet := &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}
		return ipnet.String(), ipnet, nil
	}

	_, ipnet, err := net.ParseCIDR(subnet)
	if err != nil {
		return "", nil, err
	}
	return ipnet.String(), ipnet, nil
}

// Ban records a ban of subnet until banUntil (0 = forever).
func (bt *BanTable) Ban(subnet string, reason BanReason, banUntil, now int64) error {
	key, ipnet, err := normalizeSubnet(subnet)
	if err != nil {
		return err
	}

	bt.mtx.Lock()
	defer bt.mtx.Unlock()

	bt.entries[key] = &BanEntry{
		Version:    banEntryVersion,
		CreateTime: now,
		BanUntil:   banUntil,
		Reason:     reason,
	}
	bt.nets[key] = ipnet
	return nil
}

func (bt *BanTable) Unban(subnet string) {
	key, _, err := normalizeSubnet(subnet)
	if err != nil {
		return
	}

	bt.mtx.Lock()
	defer bt.mtx.Unlock()
	delete(bt.entries, key)
	delete(bt.nets, key)
}

// IsBanned reports whether ip falls in any banned subnet that has not
// expired at now.
func (bt *BanTable) IsBanned(ip net.IP, now int64) bool {
	bt.mtx.Lock()
	defer bt.mtx.Unlock()

	for key, ipnet := range bt.nets {
		if !ipnet.Contains(ip) {
			continue
		}
		if !bt.entries[key].IsExpired(now) {
			return true
		}
	}
	return false
}

// Sweep drops every expired entry.
func (bt *BanTable) Sweep(now int64) {
	bt.mtx.Lock()
	defer bt.mtx.Unlock()

	for key, be := range bt.entries {
		if be.IsExpired(now) {
			delete(bt.entries, key)
			delete(bt.nets, key)
		}
	}
}

func (bt *BanTable) Size() int {
	bt.mtx.Lock()
	defer bt.mtx.Unlock()
	return len(bt.entries)
}

// Snapshot returns a copy of the entries, safe to serialize outside the
// table's lock.
func (bt *BanTable) Snapshot() map[string]*BanEntry {
	bt.mtx.Lock()
	defer bt.mtx.Unlock()

	bans := make(map[string]*BanEntry, len(bt.entries))
	for key, be := range bt.entries {
		clone := *be
		bans[key] = &clone
	}
	return bans
}

// Restore replaces the table's contents. Entries whose key does not
// parse as a subnet are dropped.
func (bt *BanTable) Restore(bans map[string]*BanEntry) {
	bt.mtx.Lock()
	defer bt.mtx.Unlock()

	bt.entries = make(map[string]*BanEntry, len(bans))
	bt.nets = make(map[string]*net.IPNet, len(bans))
	for subnet, be := range bans {
		key, ipnet, err := normalizeSubnet(subnet)
		if err != nil {
			continue
		}
		bt.entries[key] = be
		bt.nets[key] = ipnet
	}
}
